package cart

import (
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/shopspring/decimal"
)

// Tolerance is the largest difference between a submitted and a computed order
// total that is still treated as equal.
var Tolerance = decimal.NewFromFloat(0.01)

type Quote struct {
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
	Tax       float64 `json:"tax"`
	TaxRate   float64 `json:"taxRate"`
	Shipping  float64 `json:"shipping"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
}

type line struct {
	price    float64
	quantity int
}

// Price computes the checkout totals for items under the store settings. Tax is
// charged on the subtotal; shipping is charged when a fee is configured and the
// subtotal is below the free shipping threshold.
func Price(items []Item, s models.Settings) Quote {
	lines := make([]line, 0, len(items))
	count := 0
	for _, item := range items {
		lines = append(lines, line{item.Price, item.Quantity})
		count += item.Quantity
	}
	q := price(lines, s)
	q.ItemCount = count
	return q
}

// ExpectedTotal is the total a client should have submitted for an order with
// these items.
func ExpectedTotal(items []models.OrderItem, s models.Settings) decimal.Decimal {
	lines := make([]line, 0, len(items))
	for _, item := range items {
		lines = append(lines, line{item.Price, item.Quantity})
	}
	return decimal.NewFromFloat(price(lines, s).Total)
}

// TotalsMatch reports whether submitted is within Tolerance of expected.
func TotalsMatch(submitted float64, expected decimal.Decimal) bool {
	return decimal.NewFromFloat(submitted).Sub(expected).Abs().LessThanOrEqual(Tolerance)
}

func price(lines []line, s models.Settings) Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(decimal.NewFromFloat(l.price).Mul(decimal.NewFromInt(int64(l.quantity))))
	}

	tax := subtotal.Mul(decimal.NewFromFloat(s.TaxRate)).Round(2)

	shipping := decimal.Zero
	fee := decimal.NewFromFloat(s.ShippingFee)
	threshold := decimal.NewFromFloat(s.FreeShippingThreshold)
	if subtotal.IsPositive() && fee.IsPositive() && (threshold.IsZero() || subtotal.LessThan(threshold)) {
		shipping = fee
	}

	total := subtotal.Add(tax).Add(shipping).Round(2)
	return Quote{
		Subtotal: subtotal.Round(2).InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		TaxRate:  s.TaxRate,
		Shipping: shipping.InexactFloat64(),
		Total:    total.InexactFloat64(),
		Currency: s.Currency,
	}
}
