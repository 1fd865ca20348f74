package models

import "time"

// Vendor represents a campus food vendor
type Vendor struct {
	ID               string    `json:"id"`
	UniversityID     string    `json:"university_id"`
	Name             string    `json:"name"`
	Cuisine          string    `json:"cuisine"`
	IsOpen           bool      `json:"is_open"`
	RequiresApproval bool      `json:"requires_approval"` // orders wait for vendor acceptance before payment
	PackagingCharge  float64   `json:"packaging_charge"`  // per item unit
	DeliveryFee      float64   `json:"delivery_fee"`      // flat, delivery orders only
	OffersDelivery   bool      `json:"offers_delivery"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// MenuItem represents a single orderable item on a vendor menu
type MenuItem struct {
	ID          string    `json:"id"`
	VendorID    string    `json:"vendor_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
