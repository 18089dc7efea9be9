package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/middleware"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/scrubline/scrubline-backend-go/services"
)

func (h *Handler) GetUserProfile(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	user, err := h.svc.Auth.Profile(ctx, middleware.CallerFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateUserProfile(c echo.Context) error {
	var in services.ProfileUpdate
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	user, err := h.svc.Auth.UpdateProfile(ctx, middleware.CallerFrom(c).UserID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	users, err := h.svc.Auth.ListUsers(ctx, repository.UserFilter{
		Role:   c.QueryParam("role"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": users, "total": len(users)})
}

func (h *Handler) SetUserStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	user, err := h.svc.Auth.SetStatus(ctx, middleware.CallerFrom(c), c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.svc.Auth.DeleteUser(ctx, middleware.CallerFrom(c), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
