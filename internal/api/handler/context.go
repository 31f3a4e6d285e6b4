package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cervak/pricesurvey-api/internal/api/middleware"
	"github.com/cervak/pricesurvey-api/internal/core/domain"
)

// ctxActor extracts the authenticated actor injected by the Auth guard and
// performs a fast-fail check before any service call: presence proves the
// guard ran on this route.
func ctxActor(c echo.Context) (domain.AuthenticatedActor, error) {
	actor, ok := c.Get(middleware.ActorContextKey).(domain.AuthenticatedActor)
	if !ok || actor.ID == "" {
		return domain.AuthenticatedActor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}
