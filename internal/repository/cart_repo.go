package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
)

// CartRepository handles server-side cart database operations
type CartRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB, logger *zap.Logger) *CartRepository {
	return &CartRepository{
		db:     db,
		logger: logger,
	}
}

// GetByUserID retrieves a user's cart with items. Returns nil when the user
// has no cart.
func (r *CartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.QueryRow(
		"SELECT id, user_id, vendor_id, created_at, updated_at FROM carts WHERE user_id = ?",
		userID,
	).Scan(&cart.ID, &cart.UserID, &cart.VendorID, &cart.CreatedAt, &cart.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get cart", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	rows, err := r.db.Query(
		"SELECT id, cart_id, menu_item_id, quantity FROM cart_items WHERE cart_id = ? ORDER BY id",
		cart.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.MenuItemID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	return &cart, rows.Err()
}

// Replace overwrites the user's cart with the given vendor and items in one
// transaction. The cart row is created if absent.
func (r *CartRepository) Replace(tx *sql.Tx, userID, vendorID string, items []models.CartItem) (*models.Cart, error) {
	var cartID string
	err := tx.QueryRow("SELECT id FROM carts WHERE user_id = ?", userID).Scan(&cartID)
	switch {
	case err == sql.ErrNoRows:
		cartID = "crt_" + uuid.New().String()
		if _, err := tx.Exec(
			"INSERT INTO carts (id, user_id, vendor_id) VALUES (?, ?, ?)",
			cartID, userID, vendorID,
		); err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to get cart id: %w", err)
	default:
		if _, err := tx.Exec(
			"UPDATE carts SET vendor_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			vendorID, cartID,
		); err != nil {
			return nil, fmt.Errorf("failed to update cart: %w", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM cart_items WHERE cart_id = ?", cartID); err != nil {
		return nil, fmt.Errorf("failed to clear cart items: %w", err)
	}

	cart := &models.Cart{ID: cartID, UserID: userID, VendorID: vendorID}
	for _, item := range items {
		result, err := tx.Exec(
			"INSERT INTO cart_items (cart_id, menu_item_id, quantity) VALUES (?, ?, ?)",
			cartID, item.MenuItemID, item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert cart item: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}
		cart.Items = append(cart.Items, models.CartItem{
			ID:         id,
			CartID:     cartID,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}
	return cart, nil
}

// Clear removes the user's cart and its items
func (r *CartRepository) Clear(tx *sql.Tx, userID string) error {
	exec := r.db.Exec
	if tx != nil {
		exec = tx.Exec
	}

	if _, err := exec(
		"DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id = ?)",
		userID,
	); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	if _, err := exec("DELETE FROM carts WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
