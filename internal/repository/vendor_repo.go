package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
)

// VendorRepository handles vendor and menu database operations
type VendorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sql.DB, logger *zap.Logger) *VendorRepository {
	return &VendorRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a vendor. Returns nil when not found.
func (r *VendorRepository) GetByID(id string) (*models.Vendor, error) {
	query := `
		SELECT id, university_id, name, cuisine, is_open, requires_approval,
			packaging_charge, delivery_fee, offers_delivery, created_at, updated_at
		FROM vendors
		WHERE id = ?
	`

	var vendor models.Vendor
	err := r.db.QueryRow(query, id).Scan(
		&vendor.ID,
		&vendor.UniversityID,
		&vendor.Name,
		&vendor.Cuisine,
		&vendor.IsOpen,
		&vendor.RequiresApproval,
		&vendor.PackagingCharge,
		&vendor.DeliveryFee,
		&vendor.OffersDelivery,
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get vendor", zap.String("vendor_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	return &vendor, nil
}

// List lists vendors, optionally filtered by university
func (r *VendorRepository) List(universityID string) ([]*models.Vendor, error) {
	query := `
		SELECT id, university_id, name, cuisine, is_open, requires_approval,
			packaging_charge, delivery_fee, offers_delivery, created_at, updated_at
		FROM vendors
	`
	args := []interface{}{}
	if universityID != "" {
		query += " WHERE university_id = ?"
		args = append(args, universityID)
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []*models.Vendor
	for rows.Next() {
		var vendor models.Vendor
		if err := rows.Scan(
			&vendor.ID, &vendor.UniversityID, &vendor.Name, &vendor.Cuisine,
			&vendor.IsOpen, &vendor.RequiresApproval, &vendor.PackagingCharge,
			&vendor.DeliveryFee, &vendor.OffersDelivery, &vendor.CreatedAt, &vendor.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, &vendor)
	}
	return vendors, rows.Err()
}

// ListMenuItems lists a vendor's menu
func (r *VendorRepository) ListMenuItems(vendorID string) ([]*models.MenuItem, error) {
	rows, err := r.db.Query(`
		SELECT id, vendor_id, name, description, category, price, is_available, created_at, updated_at
		FROM menu_items
		WHERE vendor_id = ?
		ORDER BY category, name
	`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetMenuItems retrieves the given menu items keyed by id. Missing ids are
// simply absent from the result.
func (r *VendorRepository) GetMenuItems(ids []string) (map[string]*models.MenuItem, error) {
	if len(ids) == 0 {
		return map[string]*models.MenuItem{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.Query(fmt.Sprintf(`
		SELECT id, vendor_id, name, description, category, price, is_available, created_at, updated_at
		FROM menu_items
		WHERE id IN (%s)
	`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu items: %w", err)
	}
	defer rows.Close()

	items := make(map[string]*models.MenuItem, len(ids))
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items[item.ID] = item
	}
	return items, rows.Err()
}

func scanMenuItem(rows *sql.Rows) (*models.MenuItem, error) {
	var item models.MenuItem
	var description, category sql.NullString
	if err := rows.Scan(
		&item.ID, &item.VendorID, &item.Name, &description, &category,
		&item.Price, &item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan menu item: %w", err)
	}
	item.Description = description.String
	item.Category = category.String
	return &item, nil
}
