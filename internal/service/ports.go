package service

import (
	"database/sql"
	"time"

	"github.com/campuseats/ordering/internal/models"
)

// OrderRepo is the order persistence port
type OrderRepo interface {
	Create(tx *sql.Tx, order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetStatus(id string) (*models.Order, error)
	UpdateStatusFrom(id, fromStatus, toStatus, denialReason string, resolvedAt *time.Time) (bool, error)
	ListByVendorAndStatus(vendorID, status string, limit int) ([]*models.Order, error)
	ListPendingOlderThan(cutoff time.Time, limit int) ([]*models.Order, error)
}

// VendorRepo is the vendor and menu persistence port
type VendorRepo interface {
	GetByID(id string) (*models.Vendor, error)
	List(universityID string) ([]*models.Vendor, error)
	ListMenuItems(vendorID string) ([]*models.MenuItem, error)
	GetMenuItems(ids []string) (map[string]*models.MenuItem, error)
}

// CartRepo is the cart persistence port
type CartRepo interface {
	GetByUserID(userID string) (*models.Cart, error)
	Replace(tx *sql.Tx, userID, vendorID string, items []models.CartItem) (*models.Cart, error)
	Clear(tx *sql.Tx, userID string) error
}

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	WithTransaction(fn func(*sql.Tx) error) error
}
