package service

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
	"github.com/campuseats/ordering/internal/pricing"
	"github.com/campuseats/ordering/pkg/utils"
)

// CartService manages server-side carts. The server cart is the source of
// truth for an authenticated user; browser-local guest carts are reconciled
// into it through MergeGuestCart after sign-in.
type CartService struct {
	carts   CartRepo
	vendors VendorRepo
	tx      TxRunner
	calc    *pricing.Calculator
	logger  *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts CartRepo, vendors VendorRepo, tx TxRunner, calc *pricing.Calculator, logger *zap.Logger) *CartService {
	return &CartService{
		carts:   carts,
		vendors: vendors,
		tx:      tx,
		calc:    calc,
		logger:  logger,
	}
}

// Get returns the user's cart, or an empty cart when none exists
func (s *CartService) Get(userID string) (*models.Cart, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return cart, nil
}

// Put replaces the user's cart with the given vendor and items
func (s *CartService) Put(userID, vendorID string, items []models.CartItem) (*models.Cart, error) {
	if err := utils.ValidateIdentifier(userID); err != nil {
		return nil, err
	}
	if err := s.validateItems(vendorID, items); err != nil {
		return nil, err
	}

	var cart *models.Cart
	err := s.tx.WithTransaction(func(tx *sql.Tx) error {
		var err error
		cart, err = s.carts.Replace(tx, userID, vendorID, items)
		return err
	})
	return cart, err
}

// MergeGuestCart reconciles a guest cart into the server cart. Quantities
// for identical items are summed; a guest cart from a different vendor
// replaces the server cart, since a cart is single-vendor.
func (s *CartService) MergeGuestCart(userID, vendorID string, guestItems []models.GuestCartItem) (*models.Cart, error) {
	if err := utils.ValidateIdentifier(userID); err != nil {
		return nil, err
	}

	merged := make([]models.CartItem, 0, len(guestItems))
	quantities := make(map[string]int)
	order := make([]string, 0, len(guestItems))

	existing, err := s.carts.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.VendorID == vendorID {
		for _, item := range existing.Items {
			if quantities[item.MenuItemID] == 0 {
				order = append(order, item.MenuItemID)
			}
			quantities[item.MenuItemID] += item.Quantity
		}
	}

	for _, item := range guestItems {
		if quantities[item.MenuItemID] == 0 {
			order = append(order, item.MenuItemID)
		}
		quantities[item.MenuItemID] += item.Quantity
	}

	for _, menuItemID := range order {
		merged = append(merged, models.CartItem{
			MenuItemID: menuItemID,
			Quantity:   quantities[menuItemID],
		})
	}

	return s.Put(userID, vendorID, merged)
}

// Clear empties the user's cart
func (s *CartService) Clear(userID string) error {
	return s.tx.WithTransaction(func(tx *sql.Tx) error {
		return s.carts.Clear(tx, userID)
	})
}

// Bill prices the user's current cart for the given delivery type
func (s *CartService) Bill(userID, deliveryType string) (*pricing.Bill, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.IsEmpty() {
		return nil, ErrCartNotFound
	}

	vendor, err := s.vendors.GetByID(cart.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}

	if deliveryType == "" {
		deliveryType = models.DeliveryTypePickup
	}

	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.MenuItemID)
	}
	menuItems, err := s.vendors.GetMenuItems(ids)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		menuItem, ok := menuItems[item.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMenuItemInvalid, item.MenuItemID)
		}
		lines = append(lines, pricing.Line{UnitPrice: menuItem.Price, Quantity: item.Quantity})
	}

	bill := s.calc.Compute(vendor, lines, deliveryType)
	return &bill, nil
}

// validateItems checks that every cart item is an available item on the
// vendor's menu
func (s *CartService) validateItems(vendorID string, items []models.CartItem) error {
	vendor, err := s.vendors.GetByID(vendorID)
	if err != nil {
		return err
	}
	if vendor == nil {
		return ErrVendorNotFound
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if err := utils.ValidateQuantity(item.Quantity); err != nil {
			return err
		}
		ids = append(ids, item.MenuItemID)
	}

	menuItems, err := s.vendors.GetMenuItems(ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		menuItem, ok := menuItems[item.MenuItemID]
		if !ok || menuItem.VendorID != vendorID || !menuItem.IsAvailable {
			return fmt.Errorf("%w: %s", ErrMenuItemInvalid, item.MenuItemID)
		}
	}
	return nil
}
