package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuseats/ordering/internal/models"
)

func testVendor() *models.Vendor {
	return &models.Vendor{
		ID:              "vnd_1",
		PackagingCharge: 0.50,
		DeliveryFee:     3.00,
		OffersDelivery:  true,
	}
}

func TestCompute_PickupOrder(t *testing.T) {
	calc := NewCalculator(PlatformFeeConfig{Rate: 0.05, Minimum: 1.00})

	bill := calc.Compute(testVendor(), []Line{
		{UnitPrice: 8.00, Quantity: 2},
		{UnitPrice: 4.50, Quantity: 1},
	}, models.DeliveryTypePickup)

	assert.Equal(t, 20.50, bill.ItemsSubtotal)
	assert.Equal(t, 1.50, bill.PackagingFee) // 3 units at 0.50
	assert.Equal(t, 0.00, bill.DeliveryFee)
	assert.Equal(t, 1.03, bill.PlatformFee) // 5% of 20.50, above the 1.00 floor
	assert.Equal(t, 23.03, bill.Total)
}

func TestCompute_DeliveryAddsVendorFee(t *testing.T) {
	calc := NewCalculator(PlatformFeeConfig{Rate: 0.05, Minimum: 1.00})

	bill := calc.Compute(testVendor(), []Line{
		{UnitPrice: 8.00, Quantity: 1},
	}, models.DeliveryTypeDelivery)

	assert.Equal(t, 3.00, bill.DeliveryFee)
	assert.Equal(t, 1.00, bill.PlatformFee) // floor applies below 20.00 subtotal
	assert.Equal(t, 12.50, bill.Total)
}

func TestCompute_PlatformFeeFloor(t *testing.T) {
	calc := NewCalculator(PlatformFeeConfig{Rate: 0.05, Minimum: 1.00})

	tests := []struct {
		name     string
		subtotal float64
		wantFee  float64
	}{
		{"below floor", 10.00, 1.00},
		{"at floor", 20.00, 1.00},
		{"above floor", 40.00, 2.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor := &models.Vendor{}
			bill := calc.Compute(vendor, []Line{{UnitPrice: tt.subtotal, Quantity: 1}}, models.DeliveryTypePickup)
			assert.Equal(t, tt.wantFee, bill.PlatformFee)
		})
	}
}

func TestCompute_EmptyOrderHasNoFees(t *testing.T) {
	calc := NewCalculator(PlatformFeeConfig{Rate: 0.05, Minimum: 1.00})

	bill := calc.Compute(testVendor(), nil, models.DeliveryTypeDelivery)

	assert.Equal(t, 0.00, bill.ItemsSubtotal)
	assert.Equal(t, 0.00, bill.PlatformFee)
	assert.Equal(t, 3.00, bill.DeliveryFee)
	assert.Equal(t, 3.00, bill.Total)
}
