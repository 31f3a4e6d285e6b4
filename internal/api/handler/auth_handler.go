package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cervak/pricesurvey-api/internal/api/metrics"
	"github.com/cervak/pricesurvey-api/internal/core/domain"
	"github.com/cervak/pricesurvey-api/internal/core/ports"
)

// LoginThrottle limits login attempts per email+IP. A nil throttle disables
// the check; errors from the backing store fail open so authentication
// never depends on the cache being up.
type LoginThrottle interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type AuthHandler struct {
	authService ports.AuthService
	throttle    LoginThrottle
}

func NewAuthHandler(authService ports.AuthService, throttle LoginThrottle) *AuthHandler {
	return &AuthHandler{authService: authService, throttle: throttle}
}

type loginRequest struct {
	Email     string           `json:"email" validate:"required,email"`
	Password  string           `json:"password" validate:"required"`
	ActorType domain.ActorType `json:"actorType" validate:"required,oneof=ADMIN USER OPERATIVE"`
}

type registerUserRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Language string `json:"language,omitempty"`
}

type registerAdminRequest struct {
	FullName string                              `json:"fullName" validate:"required"`
	Email    string                              `json:"email" validate:"required,email"`
	Username string                              `json:"username" validate:"required,min=3"`
	Password string                              `json:"password" validate:"required,min=8"`
	Modules  map[string]domain.ModulePermissions `json:"modules,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type authResponse struct {
	Actor        domain.ActorSummary `json:"actor"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
}

// Login authenticates an actor and returns a token pair.
//
// @Summary      Login for administrators, users, and operative users
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	throttleKey := req.Email + "|" + c.RealIP()
	if h.throttle != nil {
		if allowed, err := h.throttle.Allow(ctx, throttleKey); err == nil && !allowed {
			metrics.LoginThrottledTotal.Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		}
	}

	result, err := h.authService.Login(ctx, ports.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		ActorType: req.ActorType,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(string(req.ActorType), "failure").Inc()
		return err
	}

	if h.throttle != nil {
		_ = h.throttle.Reset(ctx, throttleKey)
	}
	metrics.LoginsTotal.WithLabelValues(string(req.ActorType), "success").Inc()
	metrics.TokenPairsIssuedTotal.WithLabelValues("password").Inc()

	return c.JSON(http.StatusOK, authResponse{
		Actor:        result.Actor,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Register creates a self-registered user and opens its first session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerUserRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.RegisterUser(c.Request().Context(), ports.RegisterUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Language: req.Language,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(domain.ActorTypeUser)).Inc()
	metrics.TokenPairsIssuedTotal.WithLabelValues("password").Inc()

	return c.JSON(http.StatusCreated, authResponse{
		Actor:        result.Actor,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// RegisterAdmin creates an administrator. Reachable only through the
// Auth+RBAC chain; there is no public path.
//
// @Summary      Register a new administrator (requires ADMIN)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerAdminRequest  true  "Administrator details"
// @Success      201   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register/admin [post]
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	var req registerAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.RegisterAdmin(c.Request().Context(), ports.RegisterAdminInput{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Modules:  req.Modules,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(domain.ActorTypeAdmin)).Inc()

	return c.JSON(http.StatusCreated, authResponse{
		Actor:        result.Actor,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Refresh exchanges a still-valid refresh token for a new pair. The
// presented token is single-use: rotation overwrites the stored digest.
//
// @Summary      Rotate a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	metrics.TokenPairsIssuedTotal.WithLabelValues("refresh").Inc()

	return c.JSON(http.StatusOK, authResponse{
		Actor:        result.Actor,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Logout clears the caller's stored refresh session.
//
// @Summary      Logout the authenticated actor
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401   {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), actor.Type, actor.ID); err != nil {
		return err
	}

	metrics.RevocationsTotal.WithLabelValues("logout").Inc()
	return c.NoContent(http.StatusNoContent)
}
