package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/middleware"
	"github.com/scrubline/scrubline-backend-go/services"
)

func (h *Handler) GetMyReviews(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	reviews, err := h.svc.Reviews.ListByUser(ctx, middleware.CallerFrom(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// SubmitReview answers 201 for a new review and 200 when an earlier review for
// the same product and order was replaced.
func (h *Handler) SubmitReview(c echo.Context) error {
	var in services.ReviewInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	review, created, err := h.svc.Reviews.Submit(ctx, middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, review)
}

func (h *Handler) GetProductReviews(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	summary, err := h.svc.Reviews.Summary(ctx, c.QueryParam("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
