package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/services"
)

func (h *Handler) Dashboard(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	d, err := h.svc.Analytics.Dashboard(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) RevenueAnalytics(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	report, err := h.svc.Analytics.Revenue(ctx, c.QueryParam("period"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) BreakdownAnalytics(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	b, err := h.svc.Analytics.Breakdown(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) SubmitFeedback(c echo.Context) error {
	var in services.FeedbackInput
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	f, err := h.svc.Feedback.Submit(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) ListFeedback(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	items, err := h.svc.Feedback.List(ctx, c.QueryParam("type"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"feedback": items})
}

func (h *Handler) GetSettings(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.svc.Settings.Get(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var in services.SettingsUpdate
	if err := bind(c, &in); err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	s, err := h.svc.Settings.Update(ctx, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
