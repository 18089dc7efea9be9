package models

import "time"

const StoreSettingsKey = "store"

type Settings struct {
	Key                   string    `bson:"key" json:"-"`
	StoreName             string    `bson:"storeName" json:"storeName"`
	Currency              string    `bson:"currency" json:"currency"`
	TaxRate               float64   `bson:"taxRate" json:"taxRate"`
	ShippingFee           float64   `bson:"shippingFee" json:"shippingFee"`
	FreeShippingThreshold float64   `bson:"freeShippingThreshold" json:"freeShippingThreshold"`
	ContactEmail          string    `bson:"contactEmail,omitempty" json:"contactEmail,omitempty"`
	UpdatedAt             time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DefaultSettings is used until an admin saves the settings document.
func DefaultSettings() Settings {
	return Settings{
		Key:       StoreSettingsKey,
		StoreName: "Scrubline",
		Currency:  "INR",
		TaxRate:   0.18,
	}
}
