package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/domain/workflow"
	"github.com/campuseats/ordering/internal/models"
	"github.com/campuseats/ordering/internal/pricing"
	"github.com/campuseats/ordering/pkg/utils"
)

// SubmitOrderItem is one line of an order submission payload
type SubmitOrderItem struct {
	MenuItemID string `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required"`
}

// SubmitOrderRequest is the order submission payload
type SubmitOrderRequest struct {
	VendorID     string            `json:"vendor_id" binding:"required"`
	DeliveryType string            `json:"delivery_type"`
	Items        []SubmitOrderItem `json:"items" binding:"required"`
}

// ApprovalService implements the order-approval workflow: submission,
// status reads for polling, user cancellation, and the vendor-side
// accept/deny/ready/complete operations.
type ApprovalService struct {
	orders  OrderRepo
	vendors VendorRepo
	carts   CartRepo
	tx      TxRunner
	calc    *pricing.Calculator
	logger  *zap.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	orders OrderRepo,
	vendors VendorRepo,
	carts CartRepo,
	tx TxRunner,
	calc *pricing.Calculator,
	logger *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		orders:  orders,
		vendors: vendors,
		carts:   carts,
		tx:      tx,
		calc:    calc,
		logger:  logger,
	}
}

// Submit validates and prices an order and creates it. Orders for vendors
// that require approval start in pendingVendorApproval; otherwise they go
// straight to inProgress. The submitting user's server cart is cleared in
// the same transaction.
func (s *ApprovalService) Submit(ctx context.Context, userID string, req SubmitOrderRequest) (*models.Order, error) {
	if err := utils.ValidateIdentifier(userID); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	vendor, err := s.vendors.GetByID(req.VendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	if !vendor.IsOpen {
		return nil, ErrVendorClosed
	}

	deliveryType := req.DeliveryType
	if deliveryType == "" {
		deliveryType = models.DeliveryTypePickup
	}
	if deliveryType == models.DeliveryTypeDelivery && !vendor.OffersDelivery {
		return nil, ErrDeliveryNotOffered
	}

	orderItems, lines, err := s.resolveItems(vendor.ID, req.Items)
	if err != nil {
		return nil, err
	}

	bill := s.calc.Compute(vendor, lines, deliveryType)

	status := models.StatusPendingVendorApproval
	var resolvedAt *time.Time
	if !vendor.RequiresApproval {
		status = models.StatusInProgress
		now := time.Now()
		resolvedAt = &now
	}

	order := &models.Order{
		ID:            "ord_" + uuid.New().String(),
		UserID:        userID,
		VendorID:      vendor.ID,
		Status:        status,
		DeliveryType:  deliveryType,
		Items:         orderItems,
		ItemsSubtotal: bill.ItemsSubtotal,
		PackagingFee:  bill.PackagingFee,
		DeliveryFee:   bill.DeliveryFee,
		PlatformFee:   bill.PlatformFee,
		Total:         bill.Total,
		SubmittedAt:   time.Now(),
		ResolvedAt:    resolvedAt,
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		if err := s.orders.Create(tx, order); err != nil {
			return err
		}
		return s.carts.Clear(tx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order submitted",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("vendor_id", vendor.ID),
		zap.String("status", order.Status),
		zap.Float64("total", order.Total))

	return order, nil
}

// resolveItems checks every requested item against the vendor's menu and
// returns priced order lines.
func (s *ApprovalService) resolveItems(vendorID string, reqItems []SubmitOrderItem) ([]models.OrderItem, []pricing.Line, error) {
	ids := make([]string, 0, len(reqItems))
	for _, item := range reqItems {
		if err := utils.ValidateQuantity(item.Quantity); err != nil {
			return nil, nil, err
		}
		ids = append(ids, item.MenuItemID)
	}

	menuItems, err := s.vendors.GetMenuItems(ids)
	if err != nil {
		return nil, nil, err
	}

	orderItems := make([]models.OrderItem, 0, len(reqItems))
	lines := make([]pricing.Line, 0, len(reqItems))
	for _, item := range reqItems {
		menuItem, ok := menuItems[item.MenuItemID]
		if !ok || menuItem.VendorID != vendorID || !menuItem.IsAvailable {
			return nil, nil, fmt.Errorf("%w: %s", ErrMenuItemInvalid, item.MenuItemID)
		}
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			UnitPrice:  menuItem.Price,
			Quantity:   item.Quantity,
		})
		lines = append(lines, pricing.Line{UnitPrice: menuItem.Price, Quantity: item.Quantity})
	}
	return orderItems, lines, nil
}

// Status returns the status fields the polling endpoint serves
func (s *ApprovalService) Status(orderID string) (*models.Order, error) {
	order, err := s.orders.GetStatus(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Get returns a full order
func (s *ApprovalService) Get(orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Cancel cancels a still-pending order on behalf of its owner
func (s *ApprovalService) Cancel(ctx context.Context, orderID, userID string) error {
	order, err := s.Status(orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return ErrNotOrderOwner
	}
	return s.transition(ctx, order, workflow.TriggerCancel, "")
}

// Accept records a vendor accepting a pending order
func (s *ApprovalService) Accept(ctx context.Context, orderID, vendorID string) error {
	order, err := s.vendorOrder(orderID, vendorID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, workflow.TriggerAccept, "")
}

// Deny records a vendor denying a pending order with an optional reason
func (s *ApprovalService) Deny(ctx context.Context, orderID, vendorID, reason string) error {
	order, err := s.vendorOrder(orderID, vendorID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, workflow.TriggerDeny, utils.SanitizeString(reason))
}

// MarkReady records that the vendor finished preparing the order
func (s *ApprovalService) MarkReady(ctx context.Context, orderID, vendorID string) error {
	order, err := s.vendorOrder(orderID, vendorID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, workflow.TriggerMarkReady, "")
}

// Complete records the order as picked up or delivered
func (s *ApprovalService) Complete(ctx context.Context, orderID, vendorID string) error {
	order, err := s.vendorOrder(orderID, vendorID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, workflow.TriggerComplete, "")
}

// Expire moves an overdue pending order to expired. Used by the expiry worker.
func (s *ApprovalService) Expire(ctx context.Context, orderID string) error {
	order, err := s.Status(orderID)
	if err != nil {
		return err
	}
	return s.transition(ctx, order, workflow.TriggerExpire, "")
}

// PendingForVendor lists orders awaiting the vendor's decision, oldest first
func (s *ApprovalService) PendingForVendor(vendorID string, limit int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orders.ListByVendorAndStatus(vendorID, models.StatusPendingVendorApproval, limit)
}

func (s *ApprovalService) vendorOrder(orderID, vendorID string) (*models.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.VendorID != vendorID {
		return nil, ErrNotVendorOrder
	}
	return order, nil
}

// transition validates the trigger against the approval machine and commits
// the status change with a compare-and-swap on the previous status. A lost
// race (the order moved under us, e.g. vendor accept vs user cancel) comes
// back as ErrInvalidTransition.
func (s *ApprovalService) transition(ctx context.Context, order *models.Order, trigger workflow.Trigger, denialReason string) error {
	machine := workflow.NewApprovalMachine(workflow.State(order.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return err
	}
	toState := machine.State()

	var resolvedAt *time.Time
	if order.Status == models.StatusPendingVendorApproval {
		now := time.Now()
		resolvedAt = &now
	}

	updated, err := s.orders.UpdateStatusFrom(order.ID, order.Status, toState.String(), denialReason, resolvedAt)
	if err != nil {
		return err
	}
	if !updated {
		return fmt.Errorf("%w: order %s is no longer %s", workflow.ErrInvalidTransition, order.ID, order.Status)
	}

	s.logger.Info("Order transitioned",
		zap.String("order_id", order.ID),
		zap.String("trigger", trigger.String()),
		zap.String("from", order.Status),
		zap.String("to", toState.String()))

	order.Status = toState.String()
	order.DenialReason = denialReason
	return nil
}
