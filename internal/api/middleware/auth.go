package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cervak/pricesurvey-api/internal/api/metrics"
	"github.com/cervak/pricesurvey-api/internal/core/domain"
	"github.com/cervak/pricesurvey-api/internal/core/ports"
)

// ActorContextKey is the echo context key under which the guard stores the
// authenticated actor.
const ActorContextKey = "actor"

// Auth is the authentication guard. Per request it extracts the bearer
// token, verifies signature and expiry, then re-fetches the actor and
// rejects when it is missing, soft-deleted, or disabled. Both checks must
// pass: a valid signature cannot reflect a disablement that happened after
// issuance. Nothing is cached across requests.
func Auth(issuer ports.TokenIssuer, repos ports.ActorRepositories) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.GuardRejectionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.GuardRejectionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := issuer.VerifyAccess(parts[1])
			if err != nil {
				metrics.GuardRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			repo, err := repos.ByType(claims.Type)
			if err != nil {
				metrics.GuardRejectionsTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			// A vanished subject is indistinguishable from a revoked one
			// to the caller: 401, never 404. A store failure is neither;
			// it propagates as an internal error.
			actor, err := repo.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrActorNotFound) {
					metrics.GuardRejectionsTotal.WithLabelValues("actor_not_live").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}
			if !actor.IsLive() {
				metrics.GuardRejectionsTotal.WithLabelValues("actor_not_live").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(ActorContextKey, domain.AuthenticatedActor{
				ID:       actor.ID,
				FullName: actor.FullName,
				Email:    actor.Email,
				Username: actor.Username,
				Type:     actor.Type,
				Modules:  actor.Modules,
			})

			return next(c)
		}
	}
}
