package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
)

// ExpiryStore lists orders stuck in pendingVendorApproval
type ExpiryStore interface {
	ListPendingOlderThan(cutoff time.Time, limit int) ([]*models.Order, error)
}

// Expirer moves one overdue order to expired
type Expirer interface {
	Expire(ctx context.Context, orderID string) error
}

// ExpiryWorker scans for orders that sat in pendingVendorApproval past the
// configured ceiling and expires them, so a user whose vendor never responds
// is not left waiting forever.
type ExpiryWorker struct {
	store      ExpiryStore
	expirer    Expirer
	pendingTTL time.Duration
	interval   time.Duration
	batchSize  int
	logger     *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewExpiryWorker creates an expiry worker. pendingTTL is how long an order
// may wait for vendor approval; interval is the scan cadence.
func NewExpiryWorker(store ExpiryStore, expirer Expirer, pendingTTL, interval time.Duration, logger *zap.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		store:      store,
		expirer:    expirer,
		pendingTTL: pendingTTL,
		interval:   interval,
		batchSize:  100,
		logger:     logger,
	}
}

// Start starts the scan loop
func (w *ExpiryWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("expiry worker is already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.isRunning = true

	w.logger.Info("ExpiryWorker started",
		zap.Duration("pending_ttl", w.pendingTTL),
		zap.Duration("scan_interval", w.interval))

	go w.scanLoop(loopCtx)
	return nil
}

// Stop stops the scan loop. Idempotent.
func (w *ExpiryWorker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	w.isRunning = false
	w.cancel()
	w.logger.Info("ExpiryWorker stopped")
}

// Name returns the worker name for identification
func (w *ExpiryWorker) Name() string {
	return "ExpiryWorker"
}

func (w *ExpiryWorker) scanLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// First scan fires immediately on start, not one interval later
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ExpiryWorker) scan(ctx context.Context) {
	cutoff := time.Now().Add(-w.pendingTTL)

	orders, err := w.store.ListPendingOlderThan(cutoff, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to list overdue orders", zap.Error(err))
		return
	}
	if len(orders) == 0 {
		return
	}

	expired := 0
	for _, order := range orders {
		if ctx.Err() != nil {
			return
		}
		if err := w.expirer.Expire(ctx, order.ID); err != nil {
			// Likely resolved between the scan and the transition; skip it
			w.logger.Warn("Failed to expire order",
				zap.String("order_id", order.ID),
				zap.Error(err))
			continue
		}
		expired++
	}

	w.logger.Info("Expiry scan completed",
		zap.Int("overdue", len(orders)),
		zap.Int("expired", expired))
}
