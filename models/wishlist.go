package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WishlistItem is a product snapshot. Older documents carry the product id in
// `_id` instead of `id`.
type WishlistItem struct {
	ID       string    `bson:"id,omitempty" json:"id,omitempty"`
	LegacyID string    `bson:"_id,omitempty" json:"_id,omitempty"`
	Name     string    `bson:"name" json:"name"`
	Price    float64   `bson:"price" json:"price"`
	Image    string    `bson:"image,omitempty" json:"image,omitempty"`
	Category string    `bson:"category,omitempty" json:"category,omitempty"`
	AddedAt  time.Time `bson:"addedAt" json:"addedAt"`
}

// Matches reports whether the snapshot refers to productID under either field.
func (w WishlistItem) Matches(productID string) bool {
	return productID != "" && (w.ID == productID || w.LegacyID == productID)
}

type Wishlist struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Items     []WishlistItem     `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DecodeWishlist reads a raw wishlist document. Legacy item ids may be stored
// as ObjectIDs, so items are normalized through AsString.
func DecodeWishlist(raw bson.M) Wishlist {
	w := Wishlist{
		Email:     AsString(raw["email"]),
		CreatedAt: AsTime(raw["createdAt"]),
		UpdatedAt: AsTime(raw["updatedAt"]),
		Items:     []WishlistItem{},
	}
	if id, ok := raw["_id"].(primitive.ObjectID); ok {
		w.ID = id
	}
	for _, rawItem := range AsSlice(raw["items"]) {
		m := AsMap(rawItem)
		if m == nil {
			continue
		}
		w.Items = append(w.Items, WishlistItem{
			ID:       AsString(m["id"]),
			LegacyID: AsString(m["_id"]),
			Name:     AsString(m["name"]),
			Price:    AsFloat(m["price"]),
			Image:    AsString(m["image"]),
			Category: AsString(m["category"]),
			AddedAt:  AsTime(m["addedAt"]),
		})
	}
	return w
}

func (w *Wishlist) Contains(productID string) bool {
	for _, item := range w.Items {
		if item.Matches(productID) {
			return true
		}
	}
	return false
}
