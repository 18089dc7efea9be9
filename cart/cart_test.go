package cart

import (
	"testing"

	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddMergesSameLine(t *testing.T) {
	c := New("u1")
	c.Add(Item{ProductID: "p1", Price: 100, Quantity: 1, Size: "M", Color: "navy"})
	c.Add(Item{ProductID: "p1", Price: 100, Quantity: 2, Size: "M", Color: "navy"})
	c.Add(Item{ProductID: "p1", Price: 100, Quantity: 1, Size: "L", Color: "navy"})

	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 4, c.Count())
}

func TestCart_UpdateAndRemove(t *testing.T) {
	c := New("u1")
	c.Add(Item{ProductID: "p1", Price: 10, Quantity: 1})
	c.Add(Item{ProductID: "p2", Price: 20, Quantity: 1})

	c.UpdateQuantity("p1", "", "", 5)
	assert.Equal(t, 5, c.Items[0].Quantity)

	c.UpdateQuantity("p1", "", "", 0)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)

	c.Remove("missing", "", "")
	assert.Len(t, c.Items, 1)

	c.Clear()
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.Count())
}

func TestCart_OrderItems(t *testing.T) {
	c := New("u1")
	c.Add(Item{ProductID: "p1", Name: "Scrub Top", Price: 100, Quantity: 2, Size: "M"})

	items := c.OrderItems()
	require.Len(t, items, 1)
	assert.Equal(t, models.OrderItem{ProductID: "p1", Name: "Scrub Top", Price: 100, Quantity: 2, Size: "M"}, items[0])
}

func TestPrice(t *testing.T) {
	s := models.DefaultSettings()

	q := Price([]Item{{ProductID: "p1", Price: 100, Quantity: 2}}, s)
	assert.Equal(t, 2, q.ItemCount)
	assert.Equal(t, 200.0, q.Subtotal)
	assert.Equal(t, 36.0, q.Tax)
	assert.Equal(t, 0.0, q.Shipping)
	assert.Equal(t, 236.0, q.Total)
	assert.Equal(t, "INR", q.Currency)
}

func TestPrice_Shipping(t *testing.T) {
	s := models.DefaultSettings()
	s.ShippingFee = 50
	s.FreeShippingThreshold = 500

	below := Price([]Item{{ProductID: "p1", Price: 100, Quantity: 1}}, s)
	assert.Equal(t, 50.0, below.Shipping)
	assert.Equal(t, 168.0, below.Total)

	above := Price([]Item{{ProductID: "p1", Price: 600, Quantity: 1}}, s)
	assert.Equal(t, 0.0, above.Shipping)

	empty := Price(nil, s)
	assert.Equal(t, 0.0, empty.Total)
}

func TestExpectedTotalAndMatch(t *testing.T) {
	s := models.DefaultSettings()
	expected := ExpectedTotal([]models.OrderItem{{Price: 100, Quantity: 2}}, s)
	assert.Equal(t, "236", expected.String())

	assert.True(t, TotalsMatch(236, expected))
	assert.True(t, TotalsMatch(236.01, expected))
	assert.False(t, TotalsMatch(240, expected))
}
