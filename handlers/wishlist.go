package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/middleware"
	"github.com/scrubline/scrubline-backend-go/services"
)

// wishlistEmail resolves whose wishlist a request addresses. Signed-in
// customers default to, and are limited to, their own email.
func wishlistEmail(c echo.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	caller := middleware.CallerFrom(c)
	if !caller.Authenticated() || caller.IsAdmin() {
		return requested, nil
	}
	if requested == "" {
		return caller.Email, nil
	}
	if !strings.EqualFold(requested, caller.Email) {
		return "", apperrors.Forbidden("you can only use your own wishlist")
	}
	return requested, nil
}

func (h *Handler) GetWishlist(c echo.Context) error {
	email, err := wishlistEmail(c, c.QueryParam("email"))
	if err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	page, err := h.svc.Wishlist.Get(ctx, email, queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) ToggleWishlist(c echo.Context) error {
	var in services.WishlistToggleInput
	if err := bind(c, &in); err != nil {
		return err
	}
	email, err := wishlistEmail(c, in.Email)
	if err != nil {
		return err
	}
	in.Email = email

	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.svc.Wishlist.Toggle(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
