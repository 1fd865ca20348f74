package repository

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
)

// OrderRepository handles order database operations
type OrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new order with its items
func (r *OrderRepository) Create(tx *sql.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, vendor_id, status, delivery_type,
			items_subtotal, packaging_fee, delivery_fee, platform_fee, total,
			submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := r.db.Exec
	if tx != nil {
		exec = tx.Exec
	}

	_, err := exec(query,
		order.ID,
		order.UserID,
		order.VendorID,
		order.Status,
		order.DeliveryType,
		order.ItemsSubtotal,
		order.PackagingFee,
		order.DeliveryFee,
		order.PlatformFee,
		order.Total,
		order.SubmittedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.String("order_id", order.ID), zap.Error(err))
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, menu_item_id, name, unit_price, quantity)
		VALUES (?, ?, ?, ?, ?)
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		result, err := exec(itemQuery, item.OrderID, item.MenuItemID, item.Name, item.UnitPrice, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
		if item.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an order with its items. Returns nil when not found.
func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	query := `
		SELECT id, user_id, vendor_id, status, denial_reason, delivery_type,
			items_subtotal, packaging_fee, delivery_fee, platform_fee, total,
			submitted_at, resolved_at, created_at, updated_at
		FROM orders
		WHERE id = ?
	`

	var order models.Order
	var denialReason sql.NullString
	var resolvedAt sql.NullTime

	err := r.db.QueryRow(query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.VendorID,
		&order.Status,
		&denialReason,
		&order.DeliveryType,
		&order.ItemsSubtotal,
		&order.PackagingFee,
		&order.DeliveryFee,
		&order.PlatformFee,
		&order.Total,
		&order.SubmittedAt,
		&resolvedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.String("order_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	order.DenialReason = denialReason.String
	if resolvedAt.Valid {
		order.ResolvedAt = &resolvedAt.Time
	}

	if order.Items, err = r.itemsForOrder(id); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) itemsForOrder(orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.Query(`
		SELECT id, order_id, menu_item_id, name, unit_price, quantity
		FROM order_items WHERE order_id = ? ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateStatusFrom moves an order from one status to another atomically.
// The WHERE clause on the old status makes concurrent transitions safe:
// returns false when the order was no longer in fromStatus.
func (r *OrderRepository) UpdateStatusFrom(id, fromStatus, toStatus, denialReason string, resolvedAt *time.Time) (bool, error) {
	query := `
		UPDATE orders
		SET status = ?,
			denial_reason = NULLIF(?, ''),
			resolved_at = COALESCE(?, resolved_at),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Exec(query, toStatus, denialReason, resolvedAt, id, fromStatus)
	if err != nil {
		r.logger.Error("Failed to update order status",
			zap.String("order_id", id),
			zap.String("to_status", toStatus),
			zap.Error(err))
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetStatus retrieves just the status fields used by the polling endpoint.
// Returns nil when the order does not exist.
func (r *OrderRepository) GetStatus(id string) (*models.Order, error) {
	var order models.Order
	var denialReason sql.NullString

	err := r.db.QueryRow(
		"SELECT id, user_id, status, denial_reason FROM orders WHERE id = ?", id,
	).Scan(&order.ID, &order.UserID, &order.Status, &denialReason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order status: %w", err)
	}

	order.DenialReason = denialReason.String
	return &order, nil
}

// ListByVendorAndStatus lists orders for a vendor dashboard, oldest first
func (r *OrderRepository) ListByVendorAndStatus(vendorID, status string, limit int) ([]*models.Order, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, vendor_id, status, delivery_type, total, submitted_at
		FROM orders
		WHERE vendor_id = ? AND status = ?
		ORDER BY submitted_at ASC
		LIMIT ?
	`, vendorID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.VendorID, &order.Status,
			&order.DeliveryType, &order.Total, &order.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}

// ListPendingOlderThan returns orders still awaiting approval that were
// submitted before the cutoff. Used by the expiry worker.
func (r *OrderRepository) ListPendingOlderThan(cutoff time.Time, limit int) ([]*models.Order, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, vendor_id, status, submitted_at
		FROM orders
		WHERE status = ? AND submitted_at < ?
		ORDER BY submitted_at ASC
		LIMIT ?
	`, models.StatusPendingVendorApproval, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.VendorID, &order.Status, &order.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, &order)
	}
	return orders, rows.Err()
}
