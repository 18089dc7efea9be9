package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusOutForDelivery = "out for delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"

	PaymentStatusPaid    = "Paid"
	PaymentStatusPending = "Pending"
)

type OrderItem struct {
	ProductID string  `bson:"productId" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Size      string  `bson:"size,omitempty" json:"size,omitempty"`
	Color     string  `bson:"color,omitempty" json:"color,omitempty"`
	Image     string  `bson:"image,omitempty" json:"image,omitempty"`
}

// Customer is the contact snapshot captured at checkout. It is not a live
// reference to the user document.
type Customer struct {
	ID    string `bson:"id,omitempty" json:"id,omitempty"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type ShippingAddress struct {
	Name    string `bson:"name,omitempty" json:"name,omitempty"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// Order is the normalized order record. Documents are written in this shape;
// DecodeOrder reads both this shape and the legacy flat one.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID         string             `bson:"orderId" json:"orderId"`
	UserID          string             `bson:"userId,omitempty" json:"userId,omitempty"`
	Customer        Customer           `bson:"customer" json:"customer"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalAmount     float64            `bson:"totalAmount" json:"totalAmount"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   string             `bson:"paymentStatus" json:"paymentStatus"`
	Status          string             `bson:"status" json:"status"`
	DeliveryStatus  string             `bson:"deliveryStatus" json:"deliveryStatus"`
	ShippingAddress ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	TransactionID   string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	OrderDate       time.Time          `bson:"orderDate" json:"orderDate"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CurrentStatus returns the fulfillment status, whichever of the two synonyms
// carries it.
func (o *Order) CurrentStatus() string {
	if o.Status != "" {
		return o.Status
	}
	return o.DeliveryStatus
}

// BelongsTo reports whether the order was placed by the given user id or email
// under either document shape.
func (o *Order) BelongsTo(userID, email string) bool {
	if userID != "" && (o.UserID == userID || o.Customer.ID == userID) {
		return true
	}
	return email != "" && o.Customer.Email == email
}

// DecodeOrder normalizes a raw order document. Nested `customer.*` fields win
// over the flat legacy `customerName`/`customerEmail`/`customerPhone`, and
// `status`/`deliveryStatus` are filled from each other.
func DecodeOrder(raw bson.M) Order {
	o := Order{
		OrderID:       AsString(raw["orderId"]),
		UserID:        AsString(raw["userId"]),
		TotalAmount:   AsFloat(raw["totalAmount"]),
		PaymentMethod: AsString(raw["paymentMethod"]),
		PaymentStatus: AsString(raw["paymentStatus"]),
		TransactionID: AsString(raw["transactionId"]),
		OrderDate:     AsTime(raw["orderDate"]),
		CreatedAt:     AsTime(raw["createdAt"]),
		UpdatedAt:     AsTime(raw["updatedAt"]),
	}
	if id, ok := raw["_id"].(primitive.ObjectID); ok {
		o.ID = id
	}

	if c := AsMap(raw["customer"]); c != nil {
		o.Customer = Customer{
			ID:    AsString(c["id"]),
			Name:  AsString(c["name"]),
			Email: AsString(c["email"]),
			Phone: AsString(c["phone"]),
		}
	}
	if o.Customer.Name == "" {
		o.Customer.Name = AsString(raw["customerName"])
	}
	if o.Customer.Email == "" {
		o.Customer.Email = AsString(raw["customerEmail"])
	}
	if o.Customer.Phone == "" {
		o.Customer.Phone = AsString(raw["customerPhone"])
	}
	if o.UserID == "" {
		o.UserID = o.Customer.ID
	}

	o.Status = AsString(raw["status"])
	o.DeliveryStatus = AsString(raw["deliveryStatus"])
	if o.Status == "" {
		o.Status = o.DeliveryStatus
	}
	if o.DeliveryStatus == "" {
		o.DeliveryStatus = o.Status
	}

	if o.OrderDate.IsZero() {
		o.OrderDate = o.CreatedAt
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = o.OrderDate
	}

	switch addr := raw["shippingAddress"].(type) {
	case string:
		o.ShippingAddress.Address = addr
	default:
		if m := AsMap(addr); m != nil {
			o.ShippingAddress = ShippingAddress{
				Name:    AsString(m["name"]),
				Phone:   AsString(m["phone"]),
				Address: AsString(m["address"]),
				City:    AsString(m["city"]),
				State:   AsString(m["state"]),
				Pincode: AsString(m["pincode"]),
			}
		}
	}

	o.Items = DecodeOrderItems(AsSlice(raw["items"]))
	return o
}

// DecodeOrderItems reads line items stored or submitted in any historical
// shape. The product id is taken from productId, then id, then _id.
func DecodeOrderItems(raw []interface{}) []OrderItem {
	var items []OrderItem
	for _, rawItem := range raw {
		m := AsMap(rawItem)
		if m == nil {
			continue
		}
		productID := AsString(m["productId"])
		if productID == "" {
			productID = AsString(m["id"])
		}
		if productID == "" {
			productID = AsString(m["_id"])
		}
		items = append(items, OrderItem{
			ProductID: productID,
			Name:      AsString(m["name"]),
			Price:     AsFloat(m["price"]),
			Quantity:  int(AsFloat(m["quantity"])),
			Size:      AsString(m["size"]),
			Color:     AsString(m["color"]),
			Image:     AsString(m["image"]),
		})
	}
	return items
}

// OrderItemList accepts the same item shapes as DecodeOrderItems when
// unmarshalled from a request body.
type OrderItemList []OrderItem

func (l *OrderItemList) UnmarshalJSON(data []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = DecodeOrderItems(raw)
	return nil
}

// AsString converts the scalar shapes found in historical documents to a string.
func AsString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// AsFloat mirrors $toDouble with a 0 default for missing or unparsable values.
func AsFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err == nil {
			return f
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func AsTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func AsMap(v interface{}) bson.M {
	switch t := v.(type) {
	case bson.M:
		return t
	case map[string]interface{}:
		return bson.M(t)
	case bson.D:
		return t.Map()
	}
	return nil
}

func AsSlice(v interface{}) []interface{} {
	switch t := v.(type) {
	case bson.A:
		return t
	case []interface{}:
		return t
	}
	return nil
}
