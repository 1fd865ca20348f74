package http

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
	"github.com/campuseats/ordering/internal/pricing"
	"github.com/campuseats/ordering/internal/service"
)

type fakeOrderRepo struct {
	order        *models.Order
	denialReason string
}

func (f *fakeOrderRepo) Create(tx *sql.Tx, order *models.Order) error { return nil }

func (f *fakeOrderRepo) GetByID(id string) (*models.Order, error) { return f.order, nil }

func (f *fakeOrderRepo) GetStatus(id string) (*models.Order, error) { return f.order, nil }

func (f *fakeOrderRepo) UpdateStatusFrom(id, fromStatus, toStatus, denialReason string, resolvedAt *time.Time) (bool, error) {
	f.denialReason = denialReason
	return true, nil
}

func (f *fakeOrderRepo) ListByVendorAndStatus(vendorID, status string, limit int) ([]*models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) ListPendingOlderThan(cutoff time.Time, limit int) ([]*models.Order, error) {
	return nil, nil
}

func newTestRouter(t *testing.T, orders *fakeOrderRepo) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()
	calc := pricing.NewCalculator(pricing.PlatformFeeConfig{Rate: 0.05, Minimum: 1.00})

	approvalService := service.NewApprovalService(orders, nil, nil, nil, calc, logger)
	cartService := service.NewCartService(nil, nil, nil, calc, logger)
	vendorService := service.NewVendorService(nil, logger)

	server := NewServer(ServerConfig{}, approvalService, cartService, vendorService, logger)
	return server.Router()
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:       "ord_1",
		UserID:   "usr_1",
		VendorID: "vnd_1",
		Status:   models.StatusPendingVendorApproval,
	}
}

func TestDenyOrder_EmptyBodyAllowed(t *testing.T) {
	orders := &fakeOrderRepo{order: pendingOrder()}
	router := newTestRouter(t, orders)

	req := httptest.NewRequest(http.MethodPost, "/vendors/vnd_1/orders/ord_1/deny", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, orders.denialReason)
}

func TestDenyOrder_ChunkedBodyCarriesReason(t *testing.T) {
	orders := &fakeOrderRepo{order: pendingOrder()}
	router := newTestRouter(t, orders)

	// Chunked transfer: the request advertises no Content-Length, but the
	// supplied reason must still be bound and recorded
	req := httptest.NewRequest(http.MethodPost, "/vendors/vnd_1/orders/ord_1/deny",
		strings.NewReader(`{"reason":"Out of rice"}`))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Out of rice", orders.denialReason)
}

func TestDenyOrder_MalformedBodyRejected(t *testing.T) {
	orders := &fakeOrderRepo{order: pendingOrder()}
	router := newTestRouter(t, orders)

	req := httptest.NewRequest(http.MethodPost, "/vendors/vnd_1/orders/ord_1/deny",
		strings.NewReader(`{"reason":`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, orders.denialReason)
}
