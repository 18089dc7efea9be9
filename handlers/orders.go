package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/logger"
	"github.com/scrubline/scrubline-backend-go/middleware"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/scrubline/scrubline-backend-go/services"
	"go.uber.org/zap"
)

type orderQueryRequest struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
	Status string `json:"status"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

func (r orderQueryRequest) query() repository.OrderQuery {
	return repository.OrderQuery{Email: r.Email, UserID: r.UserID, Status: r.Status, Page: r.Page, Limit: r.Limit}
}

// CreateOrder places an order. Old clients still POST {email} here to list
// their orders, which is answered as a deprecated query when enabled.
func (h *Handler) CreateOrder(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperrors.BadRequest("Invalid request format")
	}

	if h.opts.LegacyOrderQuery {
		var fields map[string]interface{}
		if json.Unmarshal(body, &fields) == nil && services.IsLegacyQuery(fields) {
			var req orderQueryRequest
			if err := json.Unmarshal(body, &req); err != nil {
				return apperrors.BadRequest("Invalid request format")
			}
			logger.FromEcho(c).Warn("Deprecated order query via POST /api/orders")
			c.Response().Header().Set("Deprecation", "true")
			return h.listOrders(c, req.query())
		}
	}

	var in services.CreateOrderInput
	if err := json.Unmarshal(body, &in); err != nil {
		return apperrors.BadRequest("Invalid request format")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	order, err := h.svc.Orders.Create(ctx, middleware.CallerFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}

	logger.FromEcho(c).Info("Order created", zap.String("order_id", order.OrderID))
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"id":      order.ID.Hex(),
		"orderId": order.OrderID,
		"order":   order,
	})
}

func (h *Handler) GetOrders(c echo.Context) error {
	return h.listOrders(c, repository.OrderQuery{
		Email:  c.QueryParam("email"),
		UserID: c.QueryParam("userId"),
		Status: c.QueryParam("status"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	})
}

func (h *Handler) QueryOrders(c echo.Context) error {
	var req orderQueryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.listOrders(c, req.query())
}

func (h *Handler) listOrders(c echo.Context, q repository.OrderQuery) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	list, err := h.svc.Orders.List(ctx, middleware.CallerFrom(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetOrder(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	order, err := h.svc.Orders.Get(ctx, middleware.CallerFrom(c), c.Param("id"), c.QueryParam("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// orderID takes the id from the path, then ?id=, then the body.
func orderID(c echo.Context, bodyID string) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	if id := c.QueryParam("id"); id != "" {
		return id
	}
	return bodyID
}

func (h *Handler) UpdateOrder(c echo.Context) error {
	var req struct {
		ID      string `json:"id"`
		OrderID string `json:"orderId"`
		services.UpdateOrderInput
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	bodyID := req.ID
	if bodyID == "" {
		bodyID = req.OrderID
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	order, err := h.svc.Orders.Update(ctx, middleware.CallerFrom(c), orderID(c, bodyID), req.UpdateOrderInput)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order updated successfully",
		"order":   order,
	})
}

func (h *Handler) DeleteOrder(c echo.Context) error {
	id := orderID(c, "")
	if id == "" {
		return apperrors.BadRequest("order id is required")
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.svc.Orders.Delete(ctx, middleware.CallerFrom(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}
