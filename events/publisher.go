// Package events publishes order lifecycle notifications. Publishing is best
// effort and never affects the outcome of the request that triggered it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/scrubline/scrubline-backend-go/models"
	"go.uber.org/zap"
)

const (
	SubjectOrderCreated = "orders.created"
	SubjectOrderUpdated = "orders.updated"
)

type Publisher interface {
	OrderCreated(ctx context.Context, order *models.Order) error
	OrderUpdated(ctx context.Context, order *models.Order) error
	Close()
}

type OrderEvent struct {
	ID            string  `json:"id"`
	OrderID       string  `json:"orderId"`
	UserID        string  `json:"userId,omitempty"`
	Email         string  `json:"email"`
	TotalAmount   float64 `json:"totalAmount"`
	PaymentMethod string  `json:"paymentMethod"`
	PaymentStatus string  `json:"paymentStatus"`
	Status        string  `json:"status"`
	OccurredAt    string  `json:"occurredAt"`
}

func NewOrderEvent(order *models.Order) OrderEvent {
	return OrderEvent{
		ID:            order.ID.Hex(),
		OrderID:       order.OrderID,
		UserID:        order.UserID,
		Email:         order.Customer.Email,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		Status:        order.CurrentStatus(),
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

type NatsPublisher struct {
	nc  *nats.Conn
	log *zap.Logger
}

func NewNatsPublisher(url string, log *zap.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("scrubline-backend"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("Connected to NATS", zap.String("url", url))
	return &NatsPublisher{nc: nc, log: log}, nil
}

func (p *NatsPublisher) OrderCreated(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, SubjectOrderCreated, NewOrderEvent(order))
}

func (p *NatsPublisher) OrderUpdated(ctx context.Context, order *models.Order) error {
	return p.publish(ctx, SubjectOrderUpdated, NewOrderEvent(order))
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	p.log.Debug("Published event", zap.String("subject", subject), zap.String("order_id", event.OrderID))
	return nil
}

func (p *NatsPublisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			p.nc.Close()
		}
		p.log.Info("NATS connection closed")
	}
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) OrderCreated(context.Context, *models.Order) error { return nil }
func (NopPublisher) OrderUpdated(context.Context, *models.Order) error { return nil }
func (NopPublisher) Close()                                             {}

// New connects to url, or returns a NopPublisher when url is empty.
func New(url string, log *zap.Logger) (Publisher, error) {
	if url == "" {
		log.Info("NATS_URL not set, order events disabled")
		return NopPublisher{}, nil
	}
	return NewNatsPublisher(url, log)
}
