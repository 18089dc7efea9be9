package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/scrubline/scrubline-backend-go/models"
)

// PaymentProcessor stands in for a payment gateway. Every non cash payment is
// treated as settled at checkout.
type PaymentProcessor struct{}

func NewPaymentProcessor() *PaymentProcessor {
	return &PaymentProcessor{}
}

// IsCashOnDelivery matches "cod" and "cash on delivery" in any case.
func IsCashOnDelivery(method string) bool {
	m := strings.ToLower(strings.TrimSpace(method))
	return m == "cod" || m == "cash on delivery" || m == "cash-on-delivery"
}

// PaymentStatus derives the status of a new order from its payment method.
func (p *PaymentProcessor) PaymentStatus(method string) string {
	if IsCashOnDelivery(method) {
		return models.PaymentStatusPending
	}
	return models.PaymentStatusPaid
}

// NewTransactionID issues a mock gateway reference.
func (p *PaymentProcessor) NewTransactionID() string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
