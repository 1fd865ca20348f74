// Package pricing computes order bills. All fee composition lives here so
// the submit path and the cart-preview path cannot drift apart.
package pricing

import (
	"math"

	"github.com/campuseats/ordering/internal/models"
)

// PlatformFeeConfig holds marketplace fee configuration
type PlatformFeeConfig struct {
	Rate    float64 // fraction of the items subtotal, e.g. 0.05
	Minimum float64 // charged when the percentage comes out lower
}

// Line is a priced order line used as calculator input
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Bill is the full fee breakdown for an order
type Bill struct {
	ItemsSubtotal float64 `json:"items_subtotal"`
	PackagingFee  float64 `json:"packaging_fee"`
	DeliveryFee   float64 `json:"delivery_fee"`
	PlatformFee   float64 `json:"platform_fee"`
	Total         float64 `json:"total"`
}

// Calculator computes bills from vendor fee settings and platform config
type Calculator struct {
	platform PlatformFeeConfig
}

// NewCalculator creates a bill calculator
func NewCalculator(platform PlatformFeeConfig) *Calculator {
	return &Calculator{platform: platform}
}

// Compute prices an order. Packaging is charged per item unit, the delivery
// fee applies only to delivery orders, and the platform fee is a percentage
// of the items subtotal with a configured floor.
func (c *Calculator) Compute(vendor *models.Vendor, lines []Line, deliveryType string) Bill {
	var bill Bill

	totalUnits := 0
	for _, line := range lines {
		bill.ItemsSubtotal += line.UnitPrice * float64(line.Quantity)
		totalUnits += line.Quantity
	}

	bill.PackagingFee = vendor.PackagingCharge * float64(totalUnits)

	if deliveryType == models.DeliveryTypeDelivery {
		bill.DeliveryFee = vendor.DeliveryFee
	}

	if bill.ItemsSubtotal > 0 {
		bill.PlatformFee = math.Max(bill.ItemsSubtotal*c.platform.Rate, c.platform.Minimum)
	}

	bill.ItemsSubtotal = round2(bill.ItemsSubtotal)
	bill.PackagingFee = round2(bill.PackagingFee)
	bill.PlatformFee = round2(bill.PlatformFee)
	bill.Total = round2(bill.ItemsSubtotal + bill.PackagingFee + bill.DeliveryFee + bill.PlatformFee)

	return bill
}

// round2 rounds to currency precision
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
