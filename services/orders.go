package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/cart"
	"github.com/scrubline/scrubline-backend-go/events"
	"github.com/scrubline/scrubline-backend-go/metrics"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/scrubline/scrubline-backend-go/utils"
	"go.uber.org/zap"
)

// CreateOrderInput is the client-assembled order. Customer details arrive
// either nested under customer or as the flat legacy fields.
type CreateOrderInput struct {
	OrderID         string               `json:"orderId"`
	UserID          string               `json:"userId"`
	Customer        *models.Customer     `json:"customer"`
	CustomerName    string               `json:"customerName"`
	CustomerEmail   string               `json:"customerEmail"`
	CustomerPhone   string               `json:"customerPhone"`
	FirstName       string               `json:"firstName"`
	LastName        string               `json:"lastName"`
	Items           models.OrderItemList `json:"items"`
	TotalAmount     interface{}          `json:"totalAmount"`
	PaymentMethod   string               `json:"paymentMethod"`
	PaymentStatus   string               `json:"paymentStatus"`
	Status          string               `json:"status"`
	DeliveryStatus  string               `json:"deliveryStatus"`
	ShippingAddress interface{}          `json:"shippingAddress"`
	TransactionID   string               `json:"transactionId"`
}

// UpdateOrderInput is a partial overwrite. Nil fields are left alone.
type UpdateOrderInput struct {
	Status          *string                 `json:"status"`
	DeliveryStatus  *string                 `json:"deliveryStatus"`
	PaymentStatus   *string                 `json:"paymentStatus"`
	PaymentMethod   *string                 `json:"paymentMethod"`
	TransactionID   *string                 `json:"transactionId"`
	TotalAmount     *float64                `json:"totalAmount"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress"`
}

type OrderList struct {
	Orders []models.Order `json:"orders"`
	Page
}

type OrderOptions struct {
	// StrictTotals rejects orders whose totalAmount differs from the total
	// computed from the items.
	StrictTotals bool
	// GuestLookup lets anonymous callers look orders up by email or user id.
	GuestLookup bool
}

type OrderService struct {
	orders    repository.OrderRepository
	settings  repository.SettingsRepository
	payments  *utils.PaymentProcessor
	publisher events.Publisher
	opts      OrderOptions
	log       *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	settings repository.SettingsRepository,
	payments *utils.PaymentProcessor,
	publisher events.Publisher,
	opts OrderOptions,
	log *zap.Logger,
) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orders:    orders,
		settings:  settings,
		payments:  payments,
		publisher: publisher,
		opts:      opts,
		log:       log,
	}
}

func (s *OrderService) Create(ctx context.Context, caller *Caller, in CreateOrderInput) (*models.Order, error) {
	customer := models.Customer{
		Name:  strings.TrimSpace(in.CustomerName),
		Email: strings.TrimSpace(in.CustomerEmail),
		Phone: strings.TrimSpace(in.CustomerPhone),
	}
	if in.Customer != nil {
		customer.ID = in.Customer.ID
		if name := strings.TrimSpace(in.Customer.Name); name != "" {
			customer.Name = name
		}
		if email := strings.TrimSpace(in.Customer.Email); email != "" {
			customer.Email = email
		}
		if phone := strings.TrimSpace(in.Customer.Phone); phone != "" {
			customer.Phone = phone
		}
	}
	if customer.Name == "" {
		first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
		if first == "" || last == "" {
			return nil, apperrors.BadRequest("customer name is required")
		}
		customer.Name = first + " " + last
	}
	if customer.Email == "" {
		return nil, apperrors.BadRequest("customer email is required")
	}
	if len(in.Items) == 0 {
		return nil, apperrors.BadRequest("order must contain at least one item")
	}
	if in.TotalAmount == nil {
		return nil, apperrors.BadRequest("totalAmount is required")
	}
	total := models.AsFloat(in.TotalAmount)

	userID := in.UserID
	if userID == "" {
		userID = customer.ID
	}
	if userID == "" && caller.Authenticated() {
		userID = caller.UserID
	}
	if customer.ID == "" {
		customer.ID = userID
	}

	if err := s.checkTotal(ctx, in.Items, total); err != nil {
		return nil, err
	}

	paymentStatus := in.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = s.payments.PaymentStatus(in.PaymentMethod)
	}
	transactionID := in.TransactionID
	if transactionID == "" && paymentStatus == models.PaymentStatusPaid {
		transactionID = s.payments.NewTransactionID()
	}

	status := in.Status
	if status == "" {
		status = in.DeliveryStatus
	}
	if status == "" {
		status = models.OrderStatusPending
	}

	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		orderID = NewOrderID()
	}

	now := time.Now().UTC()
	order := &models.Order{
		OrderID:         orderID,
		UserID:          userID,
		Customer:        customer,
		Items:           in.Items,
		TotalAmount:     total,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   paymentStatus,
		Status:          status,
		DeliveryStatus:  status,
		ShippingAddress: shippingAddress(in.ShippingAddress),
		TransactionID:   transactionID,
		OrderDate:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(fmt.Sprintf("order %s already exists", orderID))
		}
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(order.PaymentStatus).Inc()
	s.log.Info("Order created",
		zap.String("order_id", order.OrderID),
		zap.String("id", order.ID.Hex()),
		zap.Float64("total", order.TotalAmount),
		zap.String("payment_status", order.PaymentStatus))

	s.publish(order, s.publisher.OrderCreated)
	return order, nil
}

// checkTotal compares the submitted total with the one computed from the items
// and the store tax settings. Mismatches are logged and counted, and rejected
// only in strict mode.
func (s *OrderService) checkTotal(ctx context.Context, items []models.OrderItem, submitted float64) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.log.Warn("Failed to load settings, using defaults for total check", zap.Error(err))
		settings = models.DefaultSettings()
	}

	expected := cart.ExpectedTotal(items, settings)
	if cart.TotalsMatch(submitted, expected) {
		return nil
	}

	metrics.OrderTotalMismatches.Inc()
	s.log.Warn("Order total does not match items",
		zap.Float64("submitted", submitted),
		zap.String("expected", expected.StringFixed(2)),
		zap.Bool("strict", s.opts.StrictTotals))

	if s.opts.StrictTotals {
		return apperrors.BadRequest(fmt.Sprintf("totalAmount %.2f does not match order total %s", submitted, expected.StringFixed(2)))
	}
	return nil
}

// List returns orders visible to caller. Admins may list everything; everyone
// else must name an email or user id, and signed-in customers only their own.
func (s *OrderService) List(ctx context.Context, caller *Caller, q repository.OrderQuery) (*OrderList, error) {
	q.Email = strings.TrimSpace(q.Email)
	q.UserID = strings.TrimSpace(q.UserID)
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Page < 1 {
		q.Page = 1
	}

	if !caller.IsAdmin() {
		if q.Email == "" && q.UserID == "" {
			return nil, apperrors.BadRequest("email or userId is required")
		}
		switch {
		case caller.Authenticated():
			if q.Email != "" && !strings.EqualFold(q.Email, caller.Email) {
				return nil, apperrors.Forbidden("you can only view your own orders")
			}
			if q.UserID != "" && q.UserID != caller.UserID {
				return nil, apperrors.Forbidden("you can only view your own orders")
			}
		case !s.opts.GuestLookup:
			return nil, apperrors.Unauthorized("authentication required")
		}
	}

	orders, total, err := s.orders.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return &OrderList{Orders: orders, Page: newPage(total, q.Page, q.Limit, len(orders))}, nil
}

// Get returns one order by document id or client order id. Anonymous callers
// must also present the email the order was placed with.
func (s *OrderService) Get(ctx context.Context, caller *Caller, id, email string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "order not found")
	}

	switch {
	case caller.IsAdmin():
		return order, nil
	case caller.Authenticated():
		if order.BelongsTo(caller.UserID, caller.Email) || strings.EqualFold(order.Customer.Email, caller.Email) {
			return order, nil
		}
	case s.opts.GuestLookup && email != "":
		if strings.EqualFold(order.Customer.Email, email) {
			return order, nil
		}
	}
	return nil, apperrors.NotFound("order not found")
}

// Update overwrites the given fields. Setting either status field writes both.
func (s *OrderService) Update(ctx context.Context, caller *Caller, id string, in UpdateOrderInput) (*models.Order, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}
	if id == "" {
		return nil, apperrors.BadRequest("order id is required")
	}

	fields := repository.Fields{}
	status, ok := trimmed(in.Status)
	if !ok || status == "" {
		status, _ = trimmed(in.DeliveryStatus)
	}
	if status != "" {
		fields["status"] = status
		fields["deliveryStatus"] = status
	}
	if v, ok := trimmed(in.PaymentStatus); ok {
		fields["paymentStatus"] = v
	}
	if v, ok := trimmed(in.PaymentMethod); ok {
		fields["paymentMethod"] = v
	}
	if v, ok := trimmed(in.TransactionID); ok {
		fields["transactionId"] = v
	}
	if in.TotalAmount != nil {
		fields["totalAmount"] = *in.TotalAmount
	}
	if in.ShippingAddress != nil {
		fields["shippingAddress"] = *in.ShippingAddress
	}
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("no fields to update")
	}
	fields["updatedAt"] = time.Now().UTC()

	existing, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "order not found")
	}
	order, err := s.orders.Update(ctx, existing.ID, fields)
	if err != nil {
		return nil, notFound(err, "order not found")
	}

	if status != "" {
		metrics.OrderStatusUpdates.WithLabelValues(strings.ToLower(status)).Inc()
	}
	s.log.Info("Order updated", zap.String("id", order.ID.Hex()), zap.String("status", order.CurrentStatus()))
	s.publish(order, s.publisher.OrderUpdated)
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, caller *Caller, id string) error {
	if !caller.IsAdmin() {
		return apperrors.Forbidden("admin access required")
	}
	if id == "" {
		return apperrors.BadRequest("order id is required")
	}
	existing, err := s.orders.Get(ctx, id)
	if err != nil {
		return notFound(err, "order not found")
	}
	if err := s.orders.Delete(ctx, existing.ID); err != nil {
		return notFound(err, "order not found")
	}
	s.log.Info("Order deleted", zap.String("id", existing.ID.Hex()), zap.String("order_id", existing.OrderID))
	return nil
}

func (s *OrderService) publish(order *models.Order, fn func(context.Context, *models.Order) error) {
	snapshot := *order
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := fn(ctx, &snapshot); err != nil {
			s.log.Warn("Failed to publish order event", zap.String("order_id", snapshot.OrderID), zap.Error(err))
		}
	}()
}

// IsLegacyQuery reports whether a POST /api/orders body is the old
// "orders by email" lookup rather than a new order: it names an email or user
// id but carries none of items, customerName or customerEmail.
func IsLegacyQuery(body map[string]interface{}) bool {
	if body == nil {
		return false
	}
	_, hasEmail := body["email"]
	_, hasUserID := body["userId"]
	if !hasEmail && !hasUserID {
		return false
	}
	for _, key := range []string{"items", "customerName", "customerEmail"} {
		if _, ok := body[key]; ok {
			return false
		}
	}
	return true
}

func NewOrderID() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), strings.ToUpper(uuid.NewString()[:6]))
}

func shippingAddress(v interface{}) models.ShippingAddress {
	if s, ok := v.(string); ok {
		return models.ShippingAddress{Address: s}
	}
	m := models.AsMap(v)
	if m == nil {
		return models.ShippingAddress{}
	}
	addr := models.ShippingAddress{
		Name:    models.AsString(m["name"]),
		Phone:   models.AsString(m["phone"]),
		Address: models.AsString(m["address"]),
		City:    models.AsString(m["city"]),
		State:   models.AsString(m["state"]),
		Pincode: models.AsString(m["pincode"]),
	}
	if addr.Address == "" {
		addr.Address = models.AsString(m["street"])
	}
	return addr
}
