package service

import "errors"

var (
	ErrVendorNotFound     = errors.New("vendor not found")
	ErrVendorClosed       = errors.New("vendor is not accepting orders")
	ErrDeliveryNotOffered = errors.New("vendor does not offer delivery")
	ErrMenuItemInvalid    = errors.New("menu item unavailable or not on this vendor's menu")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotOrderOwner      = errors.New("order does not belong to this user")
	ErrNotVendorOrder     = errors.New("order does not belong to this vendor")
	ErrCartNotFound       = errors.New("cart not found")
)
