package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cervak/pricesurvey-api/internal/api/policy"
	"github.com/cervak/pricesurvey-api/internal/core/domain"
)

// RBAC enforces the declarative authorization table for one operation.
// It runs after Auth: the actor is known and valid, so a policy mismatch
// is Forbidden, not Unauthorized.
func RBAC(op string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := c.Get(ActorContextKey).(domain.AuthenticatedActor)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if !policy.Allows(op, actor) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
