package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cervak/pricesurvey-api/internal/api/metrics"
	"github.com/cervak/pricesurvey-api/internal/core/domain"
	"github.com/cervak/pricesurvey-api/internal/core/ports"
)

// OperativeUserHandler exposes the admin-console surface over operative
// users: provisioning, listing, status toggling, and soft deletion.
type OperativeUserHandler struct {
	authService  ports.AuthService
	actorService ports.ActorService
}

func NewOperativeUserHandler(authService ports.AuthService, actorService ports.ActorService) *OperativeUserHandler {
	return &OperativeUserHandler{authService: authService, actorService: actorService}
}

type createOperativeRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateOperativeRequest struct {
	FullName *string `json:"fullName,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

type toggleStatusRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Create provisions an operative user with an initial password, recording
// the acting administrator as its creator.
//
// @Summary      Create an operative user (requires ADMIN)
// @Tags         operative-users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOperativeRequest  true  "Operative user details"
// @Success      201   {object}  domain.ActorSummary
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /operative-users [post]
func (h *OperativeUserHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createOperativeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.authService.CreateOperativeUser(c.Request().Context(), ports.CreateOperativeInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		CreatedByID: actor.ID,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(domain.ActorTypeOperative)).Inc()
	return c.JSON(http.StatusCreated, created)
}

// List returns all operative users that are not soft-deleted.
//
// @Summary      List operative users (requires ADMIN)
// @Tags         operative-users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Actor
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /operative-users [get]
func (h *OperativeUserHandler) List(c echo.Context) error {
	actors, err := h.actorService.List(c.Request().Context(), domain.ActorTypeOperative)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actors)
}

// Get returns a single operative user.
//
// @Summary      Get an operative user (requires ADMIN)
// @Tags         operative-users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Operative user id"
// @Success      200  {object}  domain.Actor
// @Failure      404  {object}  map[string]string
// @Router       /operative-users/{id} [get]
func (h *OperativeUserHandler) Get(c echo.Context) error {
	actor, err := h.actorService.Get(c.Request().Context(), domain.ActorTypeOperative, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actor)
}

// Update applies a partial profile update to an operative user. An email
// change must not collide with another operative user.
//
// @Summary      Update an operative user (requires ADMIN)
// @Tags         operative-users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Operative user id"
// @Param        body  body      updateOperativeRequest  true  "Fields to update"
// @Success      200   {object}  domain.Actor
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /operative-users/{id} [put]
func (h *OperativeUserHandler) Update(c echo.Context) error {
	var req updateOperativeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := h.actorService.Update(c.Request().Context(), domain.ActorTypeOperative, c.Param("id"), ports.ActorUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actor)
}

// ToggleStatus enables or disables an operative user. Disabling clears the
// stored refresh session in the same write: the user cannot rotate again,
// and the guard rejects it on the next request.
//
// @Summary      Enable or disable an operative user (requires ADMIN)
// @Tags         operative-users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Operative user id"
// @Param        body  body      toggleStatusRequest  true  "Target status"
// @Success      200   {object}  domain.Actor
// @Failure      404   {object}  map[string]string
// @Router       /operative-users/{id}/status [patch]
func (h *OperativeUserHandler) ToggleStatus(c echo.Context) error {
	var req toggleStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	actor, err := h.actorService.SetEnabled(c.Request().Context(), domain.ActorTypeOperative, c.Param("id"), *req.Enabled)
	if err != nil {
		return err
	}

	if !*req.Enabled {
		metrics.RevocationsTotal.WithLabelValues("disable").Inc()
	}
	return c.JSON(http.StatusOK, actor)
}

// Delete soft-deletes an operative user. The row remains for audit; the
// identity is authentication-dead immediately.
//
// @Summary      Delete an operative user (requires ADMIN)
// @Tags         operative-users
// @Security     BearerAuth
// @Param        id   path  string  true  "Operative user id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /operative-users/{id} [delete]
func (h *OperativeUserHandler) Delete(c echo.Context) error {
	if err := h.actorService.SoftDelete(c.Request().Context(), domain.ActorTypeOperative, c.Param("id")); err != nil {
		return err
	}
	metrics.RevocationsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
