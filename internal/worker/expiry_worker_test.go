package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
)

type fakeExpiryStore struct {
	mu     sync.Mutex
	orders []*models.Order
	err    error
}

func (f *fakeExpiryStore) ListPendingOlderThan(cutoff time.Time, limit int) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

func (f *fakeExpiryStore) drain() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = nil
}

type fakeExpirer struct {
	mu      sync.Mutex
	expired []string
	err     error
}

func (f *fakeExpirer) Expire(ctx context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.expired = append(f.expired, orderID)
	return nil
}

func (f *fakeExpirer) expiredIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.expired...)
}

func TestExpiryWorker_ExpiresOverdueOrders(t *testing.T) {
	store := &fakeExpiryStore{orders: []*models.Order{
		{ID: "ord_1", Status: models.StatusPendingVendorApproval},
		{ID: "ord_2", Status: models.StatusPendingVendorApproval},
	}}
	expirer := &fakeExpirer{}

	w := NewExpiryWorker(store, expirer, time.Minute, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return len(expirer.expiredIDs()) >= 2
	}, time.Second, 5*time.Millisecond)

	store.drain()
	assert.Contains(t, expirer.expiredIDs(), "ord_1")
	assert.Contains(t, expirer.expiredIDs(), "ord_2")
}

func TestExpiryWorker_ScansImmediatelyOnStart(t *testing.T) {
	store := &fakeExpiryStore{orders: []*models.Order{
		{ID: "ord_1", Status: models.StatusPendingVendorApproval},
	}}
	expirer := &fakeExpirer{}

	// Interval far beyond the test; only the startup scan can expire ord_1
	w := NewExpiryWorker(store, expirer, time.Minute, time.Hour, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Eventually(t, func() bool {
		return len(expirer.expiredIDs()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestExpiryWorker_SkipsOrdersThatResolvedMeanwhile(t *testing.T) {
	store := &fakeExpiryStore{orders: []*models.Order{
		{ID: "ord_1", Status: models.StatusPendingVendorApproval},
	}}
	expirer := &fakeExpirer{err: errors.New("invalid state transition")}

	w := NewExpiryWorker(store, expirer, time.Minute, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// The failed transition must not kill the loop
	time.Sleep(50 * time.Millisecond)
	w.Stop()
	assert.Empty(t, expirer.expiredIDs())
}

func TestExpiryWorker_DoubleStartRejected(t *testing.T) {
	w := NewExpiryWorker(&fakeExpiryStore{}, &fakeExpirer{}, time.Minute, time.Second, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	assert.Error(t, w.Start(context.Background()))
}

func TestExpiryWorker_StopIsIdempotent(t *testing.T) {
	w := NewExpiryWorker(&fakeExpiryStore{}, &fakeExpirer{}, time.Minute, time.Second, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestManager_StartsAndStopsWorkers(t *testing.T) {
	manager := NewManager(zap.NewNop())
	w := NewExpiryWorker(&fakeExpiryStore{}, &fakeExpirer{}, time.Minute, time.Second, zap.NewNop())
	manager.Register(w)

	assert.Equal(t, 1, manager.Count())
	require.NoError(t, manager.StartAll(context.Background()))
	manager.StopAll()
}
