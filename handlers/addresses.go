package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/middleware"
	"github.com/scrubline/scrubline-backend-go/services"
)

// Address routes sit behind the required auth middleware, so the caller is
// always present.

func (h *Handler) GetAddresses(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	addrs, err := h.svc.Addresses.List(ctx, middleware.CallerFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"addresses": addrs})
}

func (h *Handler) AddAddress(c echo.Context) error {
	var in services.AddressInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	addr, err := h.svc.Addresses.Add(ctx, middleware.CallerFrom(c).UserID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, addr)
}

// addressID accepts the id from the path or, for older clients, ?id=.
func addressID(c echo.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.QueryParam("id")
}

func (h *Handler) UpdateAddress(c echo.Context) error {
	var in services.AddressUpdate
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	addr, err := h.svc.Addresses.Update(ctx, middleware.CallerFrom(c).UserID, addressID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *Handler) SetPrimaryAddress(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	addr, err := h.svc.Addresses.SetPrimary(ctx, middleware.CallerFrom(c).UserID, addressID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, addr)
}

func (h *Handler) DeleteAddress(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.svc.Addresses.Delete(ctx, middleware.CallerFrom(c).UserID, addressID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Address deleted successfully"})
}
