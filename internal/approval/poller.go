package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval matches the waiting screen's refresh cadence
const DefaultPollInterval = 3 * time.Second

// Poller repeatedly fetches the status of one order and hands each result
// to a callback until stopped. Ticks are interval-based, not chained: a tick
// never waits for the previous request, so a slow response and the next tick
// may overlap. That is acceptable because every fetch is an idempotent read.
type Poller struct {
	fetcher  StatusFetcher
	orderID  string
	interval time.Duration
	onStatus func(StatusResult)
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
}

// NewPoller creates a poller for the given order. A non-positive interval
// falls back to DefaultPollInterval.
func NewPoller(fetcher StatusFetcher, orderID string, interval time.Duration, onStatus func(StatusResult), logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		fetcher:  fetcher,
		orderID:  orderID,
		interval: interval,
		onStatus: onStatus,
		logger:   logger,
	}
}

// Start begins polling: one fetch immediately, then one per interval.
// A second Start on a running poller is rejected so a session can never
// accumulate more than one active timer.
func (p *Poller) Start(ctx context.Context) error {
	if p.orderID == "" {
		return fmt.Errorf("poller requires a non-empty order id")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return fmt.Errorf("poller is already running for order %s", p.orderID)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.isRunning = true

	p.logger.Debug("Status poller started",
		zap.String("order_id", p.orderID),
		zap.Duration("interval", p.interval))

	go p.pollLoop(loopCtx)
	return nil
}

// Stop halts the polling loop and cancels any in-flight request. Safe to
// call multiple times and on a poller that never started. A response that
// still lands afterwards is dropped by the consumer's liveness check.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return
	}

	p.isRunning = false
	p.cancel()

	p.logger.Debug("Status poller stopped", zap.String("order_id", p.orderID))
}

// IsRunning reports whether the polling loop is active
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isRunning
}

func (p *Poller) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First status check fires immediately on activation
	go p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.pollOnce(ctx)
		}
	}
}

// pollOnce fetches the status once. Failures are logged and swallowed; the
// loop carries on and only terminal statuses ever surface to the user.
func (p *Poller) pollOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.interval*2)
	defer cancel()

	result, err := p.fetcher.OrderStatus(reqCtx, p.orderID)
	if err != nil {
		p.logger.Warn("Status poll failed",
			zap.String("order_id", p.orderID),
			zap.Error(err))
		return
	}

	p.onStatus(*result)
}
