package models

import "time"

// Cart represents a user's server-side cart. A cart holds items from a
// single vendor; switching vendors replaces the cart contents.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	VendorID  string     `json:"vendor_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem represents a single menu item with a quantity in a cart
type CartItem struct {
	ID         int64  `json:"id"`
	CartID     string `json:"cart_id"`
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// GuestCartItem is an item of a browser-local guest cart submitted for
// merging into the server cart after sign-in.
type GuestCartItem struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
