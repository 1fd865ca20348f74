package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/domain/workflow"
	"github.com/campuseats/ordering/internal/models"
	"github.com/campuseats/ordering/internal/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	approvalService *service.ApprovalService
	cartService     *service.CartService
	vendorService   *service.VendorService
	logger          *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	approvalService *service.ApprovalService,
	cartService *service.CartService,
	vendorService *service.VendorService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		approvalService: approvalService,
		cartService:     cartService,
		vendorService:   vendorService,
		logger:          logger,
	}
}

// SubmitResponse is the order submission envelope
type SubmitResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse is the status polling envelope
type StatusResponse struct {
	Success      bool   `json:"success"`
	Status       string `json:"status,omitempty"`
	DenialReason string `json:"denialReason,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CancelResponse is the cancel envelope
type CancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Response is the generic envelope for the remaining endpoints
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck reports service liveness
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ordering",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// SubmitOrder handles POST /order-approval/submit/:userId
func (h *Handlers) SubmitOrder(c *gin.Context) {
	userID := c.Param("userId")

	var req service.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, SubmitResponse{Success: false, Error: err.Error()})
		return
	}

	order, err := h.approvalService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(statusForError(err), SubmitResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, SubmitResponse{Success: true, OrderID: order.ID})
}

// OrderStatus handles GET /order-approval/status/:orderId. This endpoint is
// polled every few seconds by waiting clients, so it reads only the status
// columns and never mutates anything.
func (h *Handlers) OrderStatus(c *gin.Context) {
	order, err := h.approvalService.Status(c.Param("orderId"))
	if err != nil {
		c.JSON(statusForError(err), StatusResponse{Success: false, Error: err.Error()})
		return
	}

	resp := StatusResponse{Success: true, Status: order.Status}
	if order.Status == models.StatusDenied {
		resp.DenialReason = order.DenialReason
	}
	c.JSON(http.StatusOK, resp)
}

type cancelRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// CancelOrder handles POST /order-approval/:orderId/cancel
func (h *Handlers) CancelOrder(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CancelResponse{Success: false, Message: err.Error()})
		return
	}

	err := h.approvalService.Cancel(c.Request.Context(), c.Param("orderId"), req.UserID)
	if err != nil {
		c.JSON(statusForError(err), CancelResponse{Success: false, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, CancelResponse{Success: true})
}

// ListVendors handles GET /vendors
func (h *Handlers) ListVendors(c *gin.Context) {
	vendors, err := h.vendorService.List(c.Query("university_id"))
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vendors})
}

// VendorMenu handles GET /vendors/:vendorId/menu
func (h *Handlers) VendorMenu(c *gin.Context) {
	items, err := h.vendorService.Menu(c.Param("vendorId"))
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: items})
}

// PendingOrders handles GET /vendors/:vendorId/orders/pending
func (h *Handlers) PendingOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	orders, err := h.approvalService.PendingForVendor(c.Param("vendorId"), limit)
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: orders})
}

// AcceptOrder handles POST /vendors/:vendorId/orders/:orderId/accept
func (h *Handlers) AcceptOrder(c *gin.Context) {
	err := h.approvalService.Accept(c.Request.Context(), c.Param("orderId"), c.Param("vendorId"))
	h.vendorDecisionResponse(c, err)
}

type denyRequest struct {
	Reason string `json:"reason"`
}

// DenyOrder handles POST /vendors/:vendorId/orders/:orderId/deny
func (h *Handlers) DenyOrder(c *gin.Context) {
	// The reason is optional and so is the body itself: an empty body binds
	// as io.EOF and is allowed, anything else malformed is rejected
	var req denyRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	err := h.approvalService.Deny(c.Request.Context(), c.Param("orderId"), c.Param("vendorId"), req.Reason)
	h.vendorDecisionResponse(c, err)
}

// MarkOrderReady handles POST /vendors/:vendorId/orders/:orderId/ready
func (h *Handlers) MarkOrderReady(c *gin.Context) {
	err := h.approvalService.MarkReady(c.Request.Context(), c.Param("orderId"), c.Param("vendorId"))
	h.vendorDecisionResponse(c, err)
}

// CompleteOrder handles POST /vendors/:vendorId/orders/:orderId/complete
func (h *Handlers) CompleteOrder(c *gin.Context) {
	err := h.approvalService.Complete(c.Request.Context(), c.Param("orderId"), c.Param("vendorId"))
	h.vendorDecisionResponse(c, err)
}

func (h *Handlers) vendorDecisionResponse(c *gin.Context, err error) {
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

type putCartRequest struct {
	VendorID string            `json:"vendor_id" binding:"required"`
	Items    []models.CartItem `json:"items"`
}

// GetCart handles GET /cart/:userId
func (h *Handlers) GetCart(c *gin.Context) {
	cart, err := h.cartService.Get(c.Param("userId"))
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cart})
}

// PutCart handles PUT /cart/:userId
func (h *Handlers) PutCart(c *gin.Context) {
	var req putCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	cart, err := h.cartService.Put(c.Param("userId"), req.VendorID, req.Items)
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cart})
}

// ClearCart handles DELETE /cart/:userId
func (h *Handlers) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Param("userId")); err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

type mergeCartRequest struct {
	VendorID string                 `json:"vendor_id" binding:"required"`
	Items    []models.GuestCartItem `json:"items"`
}

// MergeGuestCart handles POST /cart/:userId/merge. Called once after
// sign-in to fold the browser-local guest cart into the server cart.
func (h *Handlers) MergeGuestCart(c *gin.Context) {
	var req mergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	cart, err := h.cartService.MergeGuestCart(c.Param("userId"), req.VendorID, req.Items)
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: cart})
}

// CartBill handles GET /cart/:userId/bill
func (h *Handlers) CartBill(c *gin.Context) {
	bill, err := h.cartService.Bill(c.Param("userId"), c.Query("delivery_type"))
	if err != nil {
		c.JSON(statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: bill})
}

// statusForError maps service errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrVendorNotFound),
		errors.Is(err, service.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotOrderOwner),
		errors.Is(err, service.ErrNotVendorOrder):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrGuardFailed):
		return http.StatusConflict
	case errors.Is(err, service.ErrVendorClosed),
		errors.Is(err, service.ErrDeliveryNotOffered),
		errors.Is(err, service.ErrMenuItemInvalid),
		errors.Is(err, service.ErrEmptyOrder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
