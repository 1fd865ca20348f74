package models

import "time"

// Order represents a submitted order going through vendor approval
type Order struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	VendorID      string      `json:"vendor_id"`
	Status        string      `json:"status"`
	DenialReason  string      `json:"denial_reason,omitempty"` // set only when status is denied
	DeliveryType  string      `json:"delivery_type"`
	Items         []OrderItem `json:"items,omitempty"`
	ItemsSubtotal float64     `json:"items_subtotal"`
	PackagingFee  float64     `json:"packaging_fee"`
	DeliveryFee   float64     `json:"delivery_fee"`
	PlatformFee   float64     `json:"platform_fee"`
	Total         float64     `json:"total"`
	SubmittedAt   time.Time   `json:"submitted_at"`
	ResolvedAt    *time.Time  `json:"resolved_at,omitempty"` // when the order left pendingVendorApproval
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem represents a single line of an order
type OrderItem struct {
	ID         int64   `json:"id"`
	OrderID    string  `json:"order_id"`
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
}

// Status constants. These are the wire values of the order-approval contract;
// clients see exactly these strings in status payloads.
const (
	StatusPendingVendorApproval = "pendingVendorApproval"
	StatusInProgress            = "inProgress"
	StatusReadyForPickup        = "readyForPickup"
	StatusCompleted             = "completed"
	StatusDenied                = "denied"
	StatusCancelled             = "cancelled"
	StatusExpired               = "expired"
)

// Delivery type constants
const (
	DeliveryTypePickup   = "pickup"
	DeliveryTypeDelivery = "delivery"
)

// IsTerminalStatus reports whether no further vendor or user action can move
// the order out of the given status.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusDenied, StatusCancelled, StatusExpired:
		return true
	}
	return false
}
