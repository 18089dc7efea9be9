// Package cart holds the shopping cart reducer and checkout pricing. Carts are
// owned by the client; the server only prices them and checks order totals.
package cart

import (
	"github.com/scrubline/scrubline-backend-go/models"
)

type Item struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Image     string  `json:"image,omitempty"`
}

func (i Item) sameLine(productID, size, color string) bool {
	return i.ProductID == productID && i.Size == size && i.Color == color
}

type Cart struct {
	UserID string `json:"userId,omitempty"`
	Items  []Item `json:"items"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID, Items: []Item{}}
}

// Add merges item into an existing line with the same product, size and color,
// or appends a new line.
func (c *Cart) Add(item Item) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].sameLine(item.ProductID, item.Size, item.Color) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes it.
func (c *Cart) UpdateQuantity(productID, size, color string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID, size, color)
		return
	}
	for i := range c.Items {
		if c.Items[i].sameLine(productID, size, color) {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) Remove(productID, size, color string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if !item.sameLine(productID, size, color) {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}

func (c *Cart) Clear() {
	c.Items = []Item{}
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// OrderItems snapshots the cart lines for checkout.
func (c *Cart) OrderItems() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Image:     item.Image,
		})
	}
	return items
}
