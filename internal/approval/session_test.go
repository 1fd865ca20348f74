package approval

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
)

// fakeProvider serves scripted status payloads; the last one repeats.
type fakeProvider struct {
	mu         sync.Mutex
	statuses   []StatusResult
	statusErr  error
	statusN    int
	cancelFunc func(ctx context.Context, orderID, userID string) error
	cancelN    int32
}

func (f *fakeProvider) OrderStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.statusErr != nil {
		f.statusN++
		return nil, f.statusErr
	}

	idx := f.statusN
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.statusN++
	result := f.statuses[idx]
	return &result, nil
}

func (f *fakeProvider) statusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusN
}

func (f *fakeProvider) CancelOrder(ctx context.Context, orderID, userID string) error {
	atomic.AddInt32(&f.cancelN, 1)
	if f.cancelFunc != nil {
		return f.cancelFunc(ctx, orderID, userID)
	}
	return nil
}

func pending() StatusResult {
	return StatusResult{Status: models.StatusPendingVendorApproval}
}

func newTestSession(t *testing.T, provider *fakeProvider, cfg SessionConfig, callbacks Callbacks) *Session {
	t.Helper()
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Millisecond
	}
	session, err := NewSession(provider, "ord_test", "usr_test", cfg, callbacks, zap.NewNop())
	require.NoError(t, err)
	return session
}

func TestSession_RequiresOrderID(t *testing.T) {
	_, err := NewSession(&fakeProvider{}, "", "usr_test", SessionConfig{}, Callbacks{}, zap.NewNop())
	assert.Error(t, err)
}

func TestSession_HappyPathAcceptance(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{
		pending(),
		pending(),
		{Status: models.StatusInProgress},
	}}

	var accepted int32
	done := make(chan struct{}, 1)
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{
		OnAccepted: func() {
			atomic.AddInt32(&accepted, 1)
			done <- struct{}{}
		},
	})

	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session never accepted")
	}

	assert.Equal(t, SessionAccepted, session.State())
	assert.False(t, session.poller.IsRunning(), "terminal transition must stop polling")

	// No further status requests once terminal
	time.Sleep(50 * time.Millisecond)
	calls := provider.statusCalls()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, calls, provider.statusCalls())

	assert.Equal(t, int32(1), atomic.LoadInt32(&accepted), "OnAccepted must fire exactly once")
}

func TestSession_DenialWithReason(t *testing.T) {
	tests := []struct {
		name       string
		reason     string
		wantReason string
	}{
		{"reason present", "Out of paneer", "Out of paneer"},
		{"reason absent falls back", "", DefaultDenialReason},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{statuses: []StatusResult{
				{Status: models.StatusDenied, DenialReason: tt.reason},
			}}

			var denials int32
			reasons := make(chan string, 1)
			session := newTestSession(t, provider, SessionConfig{}, Callbacks{
				OnDenied: func(reason string) {
					atomic.AddInt32(&denials, 1)
					reasons <- reason
				},
			})

			require.NoError(t, session.Start(context.Background()))
			defer session.Stop()

			select {
			case got := <-reasons:
				assert.Equal(t, tt.wantReason, got)
			case <-time.After(2 * time.Second):
				t.Fatal("session never denied")
			}

			assert.Equal(t, SessionDenied, session.State())
			assert.Equal(t, int32(1), atomic.LoadInt32(&denials))
		})
	}
}

func TestSession_CancelSuccess(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{pending()}}

	var cancels int32
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{
		OnCancelled: func() { atomic.AddInt32(&cancels, 1) },
	})

	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	require.NoError(t, session.RequestCancel())
	assert.True(t, session.CancelPending())

	require.NoError(t, session.ConfirmCancel(context.Background()))

	assert.Equal(t, SessionCancelled, session.State())
	assert.False(t, session.poller.IsRunning())
	assert.Equal(t, int32(1), atomic.LoadInt32(&cancels), "OnCancelled must fire exactly once")
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.cancelN))
}

func TestSession_CancelFailureKeepsSessionAlive(t *testing.T) {
	provider := &fakeProvider{
		statuses:   []StatusResult{pending()},
		cancelFunc: func(ctx context.Context, orderID, userID string) error { return errors.New("vendor already preparing") },
	}

	session := newTestSession(t, provider, SessionConfig{}, Callbacks{})
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	err := session.ConfirmCancel(context.Background())
	require.Error(t, err)

	assert.Equal(t, SessionWaiting, session.State())
	assert.False(t, session.CancelPending(), "controls must be re-enabled after a failed cancel")
	assert.True(t, session.poller.IsRunning(), "polling must continue after a failed cancel")

	// Retry is allowed once the guard resets
	provider.cancelFunc = nil
	assert.NoError(t, session.ConfirmCancel(context.Background()))
	assert.Equal(t, SessionCancelled, session.State())
}

func TestSession_CancelGuardRejectsDuplicates(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	provider := &fakeProvider{
		statuses: []StatusResult{pending()},
		cancelFunc: func(ctx context.Context, orderID, userID string) error {
			close(entered)
			<-release
			return nil
		},
	}

	session := newTestSession(t, provider, SessionConfig{}, Callbacks{})
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	firstDone := make(chan error, 1)
	go func() { firstDone <- session.ConfirmCancel(context.Background()) }()

	<-entered
	err := session.ConfirmCancel(context.Background())
	assert.ErrorIs(t, err, ErrCancelInFlight)
	assert.Equal(t, int32(1), atomic.LoadInt32(&provider.cancelN), "duplicate cancel must not send a second request")

	close(release)
	assert.NoError(t, <-firstDone)
}

func TestSession_DeclineCancelSendsNothing(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{pending()}}
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{})
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	require.NoError(t, session.RequestCancel())
	session.DeclineCancel()

	assert.False(t, session.CancelPending())
	assert.Equal(t, SessionWaiting, session.State())
	assert.Equal(t, int32(0), atomic.LoadInt32(&provider.cancelN))
}

func TestSession_PollingContinuesWhileDialogOpen(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{pending()}}
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{})
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	require.NoError(t, session.RequestCancel())

	before := provider.statusCalls()
	time.Sleep(60 * time.Millisecond)
	assert.Greater(t, provider.statusCalls(), before, "dialog must not pause polling")
}

func TestSession_DoubleStartRejected(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{pending()}}
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{})

	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	assert.ErrorIs(t, session.Start(context.Background()), ErrSessionAlreadyStarted)
}

func TestSession_StaleResponseAfterTerminalDropped(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{{Status: models.StatusInProgress}}}

	var accepted, denied int32
	done := make(chan struct{}, 1)
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{
		OnAccepted: func() {
			atomic.AddInt32(&accepted, 1)
			done <- struct{}{}
		},
		OnDenied: func(string) { atomic.AddInt32(&denied, 1) },
	})

	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session never accepted")
	}

	// A late response from an overlapping poll must be ignored
	session.handleStatus(StatusResult{Status: models.StatusDenied, DenialReason: "late"})

	assert.Equal(t, SessionAccepted, session.State())
	assert.Equal(t, int32(1), atomic.LoadInt32(&accepted))
	assert.Equal(t, int32(0), atomic.LoadInt32(&denied))
}

func TestSession_StopBeforeTerminalDropsLateResult(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{pending()}}

	var accepted int32
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{
		OnAccepted: func() { atomic.AddInt32(&accepted, 1) },
	})

	require.NoError(t, session.Start(context.Background()))
	session.Stop()

	// A response that was in flight when the view unmounted must be
	// dropped, not turned into a callback against a torn-down view
	session.handleStatus(StatusResult{Status: models.StatusInProgress})

	assert.Equal(t, SessionWaiting, session.State())
	assert.Equal(t, int32(0), atomic.LoadInt32(&accepted), "no callback may fire after Stop")

	assert.ErrorIs(t, session.RequestCancel(), ErrSessionNotWaiting)
	assert.ErrorIs(t, session.ConfirmCancel(context.Background()), ErrSessionNotWaiting)
}

func TestSession_ElapsedMonotonic(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{pending()}}
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{})
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	var last time.Duration
	for i := 0; i < 5; i++ {
		elapsed := session.Elapsed()
		assert.GreaterOrEqual(t, elapsed, last)
		last = elapsed
		time.Sleep(10 * time.Millisecond)
	}

	session.Stop()
	frozen := session.Elapsed()
	assert.GreaterOrEqual(t, frozen, last)
}

func TestSession_MaxWaitExpires(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{pending()}}

	var expired int32
	done := make(chan struct{}, 1)
	session := newTestSession(t, provider, SessionConfig{MaxWait: 40 * time.Millisecond}, Callbacks{
		OnExpired: func() {
			atomic.AddInt32(&expired, 1)
			done <- struct{}{}
		},
	})

	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session never expired")
	}

	assert.Equal(t, SessionExpired, session.State())
	assert.False(t, session.poller.IsRunning())
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))
}

func TestSession_UnknownStatusKeepsWaiting(t *testing.T) {
	provider := &fakeProvider{statuses: []StatusResult{{Status: "paymentPending"}}}
	session := newTestSession(t, provider, SessionConfig{}, Callbacks{})
	require.NoError(t, session.Start(context.Background()))
	defer session.Stop()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, SessionWaiting, session.State())
	assert.True(t, session.poller.IsRunning())
}
