package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/cart"
	"github.com/scrubline/scrubline-backend-go/middleware"
)

// GetCart returns an empty cart. Carts live in the browser; the route exists
// for clients that still fetch one before rendering.
func (h *Handler) GetCart(c echo.Context) error {
	userID := ""
	if caller := middleware.CallerFrom(c); caller != nil {
		userID = caller.UserID
	}
	return c.JSON(http.StatusOK, cart.New(userID))
}

type quoteRequest struct {
	Items []cart.Item `json:"items" validate:"required,dive"`
}

// QuoteCart prices a client cart with the current store settings. Repeated
// lines for the same product, size and color are merged first.
func (h *Handler) QuoteCart(c echo.Context) error {
	var req quoteRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	settings, err := h.svc.Settings.Get(ctx)
	if err != nil {
		return respondError(c, err)
	}

	userID := ""
	if caller := middleware.CallerFrom(c); caller != nil {
		userID = caller.UserID
	}
	basket := cart.New(userID)
	for _, item := range req.Items {
		basket.Add(item)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"cart":  basket,
		"quote": cart.Price(basket.Items, settings),
	})
}
