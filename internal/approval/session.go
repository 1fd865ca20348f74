package approval

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/models"
)

// SessionState is the client-side state of a waiting session
type SessionState string

const (
	SessionWaiting   SessionState = "waiting"
	SessionAccepted  SessionState = "accepted"
	SessionDenied    SessionState = "denied"
	SessionCancelled SessionState = "cancelled"
	SessionExpired   SessionState = "expired"
)

// IsTerminal reports whether the session can never return to waiting
func (s SessionState) IsTerminal() bool {
	return s != SessionWaiting
}

// DefaultDenialReason is surfaced when a denial carries no reason
const DefaultDenialReason = "Item not available"

var (
	// ErrSessionAlreadyStarted is returned by a second Start on a live session
	ErrSessionAlreadyStarted = errors.New("waiting session already started")

	// ErrSessionNotWaiting is returned when an action requires the waiting state
	ErrSessionNotWaiting = errors.New("waiting session has reached a terminal state")

	// ErrCancelInFlight is returned when a cancel request is already running
	ErrCancelInFlight = errors.New("a cancel request is already in flight")
)

// Callbacks are the hosting view's terminal notifications. Each terminal
// callback fires at most once per session; OnTick fires on every poll
// response that leaves the session waiting.
type Callbacks struct {
	OnAccepted  func()
	OnDenied    func(reason string)
	OnCancelled func()
	OnExpired   func()
	OnTick      func(elapsed time.Duration)
}

// SessionConfig holds waiting session configuration
type SessionConfig struct {
	// PollInterval between status checks; DefaultPollInterval when zero
	PollInterval time.Duration
	// MaxWait expires the session after a ceiling; zero waits indefinitely
	MaxWait time.Duration
}

// Session tracks one order through vendor approval. It owns a single poller,
// interprets each status payload, and fires the terminal callback exactly
// once. All state is in-memory and dies with the session.
type Session struct {
	orderID   string
	userID    string
	provider  StatusProvider
	callbacks Callbacks
	cfg       SessionConfig
	logger    *zap.Logger

	poller *Poller

	mu            sync.Mutex
	state         SessionState
	stopped       bool // torn down by Stop; drops late results, fires nothing
	startedAt     time.Time
	lastElapsed   time.Duration
	cancelPending bool // confirm-cancel dialog open
	isCancelling  bool // cancel request in flight
	expiry        *time.Timer
}

// NewSession creates a waiting session for a submitted order
func NewSession(provider StatusProvider, orderID, userID string, cfg SessionConfig, callbacks Callbacks, logger *zap.Logger) (*Session, error) {
	if orderID == "" {
		return nil, errors.New("waiting session requires a non-empty order id")
	}

	s := &Session{
		orderID:   orderID,
		userID:    userID,
		provider:  provider,
		callbacks: callbacks,
		cfg:       cfg,
		logger:    logger,
		state:     SessionWaiting,
	}
	s.poller = NewPoller(provider, orderID, cfg.PollInterval, s.handleStatus, logger)
	return s, nil
}

// Start begins polling and the elapsed-time clock. Starting twice is
// rejected; the session never holds more than one active poll loop.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if !s.startedAt.IsZero() {
		s.mu.Unlock()
		return ErrSessionAlreadyStarted
	}
	s.startedAt = time.Now()
	if s.cfg.MaxWait > 0 {
		s.expiry = time.AfterFunc(s.cfg.MaxWait, s.expire)
	}
	s.mu.Unlock()

	if err := s.poller.Start(ctx); err != nil {
		return err
	}
	return nil
}

// Stop tears the session down without a terminal callback, e.g. when the
// hosting view unmounts. Idempotent. A poll response still in flight when
// Stop is called is dropped; no callback ever fires after Stop returns.
func (s *Session) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.expiry != nil {
		s.expiry.Stop()
	}
	s.mu.Unlock()
	s.poller.Stop()
}

// State returns the current session state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns how long the session has been waiting. Non-decreasing for
// the session's lifetime; it freezes at the last observed value once a
// terminal state is reached.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() time.Duration {
	if s.state == SessionWaiting && !s.startedAt.IsZero() {
		if since := time.Since(s.startedAt); since > s.lastElapsed {
			s.lastElapsed = since
		}
	}
	return s.lastElapsed
}

// RequestCancel opens the confirm-cancel dialog. Polling continues in the
// background; the vendor may still accept during this window.
func (s *Session) RequestCancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.state != SessionWaiting {
		return ErrSessionNotWaiting
	}
	s.cancelPending = true
	return nil
}

// DeclineCancel closes the dialog without sending anything
func (s *Session) DeclineCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPending = false
}

// CancelPending reports whether the confirm-cancel dialog is open
func (s *Session) CancelPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelPending
}

// ConfirmCancel sends the cancel request. On success the session becomes
// cancelled, polling stops, and OnCancelled fires. On failure the session
// stays waiting and the error is returned for the caller to surface; the
// in-flight guard is reset so the user may retry. While a cancel request is
// in flight a duplicate submission is rejected without a second request.
func (s *Session) ConfirmCancel(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped || s.state != SessionWaiting {
		s.mu.Unlock()
		return ErrSessionNotWaiting
	}
	if s.isCancelling {
		s.mu.Unlock()
		return ErrCancelInFlight
	}
	s.isCancelling = true
	s.mu.Unlock()

	err := s.provider.CancelOrder(ctx, s.orderID, s.userID)

	s.mu.Lock()
	s.isCancelling = false
	s.cancelPending = false

	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("Cancel request failed",
			zap.String("order_id", s.orderID),
			zap.Error(err))
		return err
	}

	if s.stopped || s.state != SessionWaiting {
		// The vendor resolved the order, or the session was torn down,
		// while the cancel was in flight; nothing more to fire here
		s.mu.Unlock()
		return nil
	}

	s.state = SessionCancelled
	cb := s.callbacks.OnCancelled
	s.mu.Unlock()

	s.teardown()
	if cb != nil {
		cb()
	}
	return nil
}

// CancelForMoreItems cancels the pending order so the user can return to the
// cart and keep editing. Identical to a confirmed cancel; there is no
// separate state.
func (s *Session) CancelForMoreItems(ctx context.Context) error {
	return s.ConfirmCancel(ctx)
}

// handleStatus interprets one poll payload. Payloads arriving after a
// terminal transition or after Stop are stale and dropped.
func (s *Session) handleStatus(result StatusResult) {
	s.mu.Lock()
	if s.stopped || s.state != SessionWaiting {
		s.mu.Unlock()
		return
	}

	elapsed := s.elapsedLocked()

	var terminal SessionState
	var fire func()

	switch result.Status {
	case models.StatusPendingVendorApproval:
		cb := s.callbacks.OnTick
		s.mu.Unlock()
		if cb != nil {
			cb(elapsed)
		}
		return

	case models.StatusInProgress:
		terminal = SessionAccepted
		if cb := s.callbacks.OnAccepted; cb != nil {
			fire = cb
		}

	case models.StatusDenied:
		terminal = SessionDenied
		reason := result.DenialReason
		if reason == "" {
			reason = DefaultDenialReason
		}
		if cb := s.callbacks.OnDenied; cb != nil {
			fire = func() { cb(reason) }
		}

	case models.StatusCancelled:
		// Cancelled from another tab or device; treat like a local cancel
		terminal = SessionCancelled
		if cb := s.callbacks.OnCancelled; cb != nil {
			fire = cb
		}

	case models.StatusExpired:
		terminal = SessionExpired
		if cb := s.callbacks.OnExpired; cb != nil {
			fire = cb
		}

	default:
		// Unknown status: the backend owns the full enumeration, so keep
		// waiting rather than guessing at semantics
		s.mu.Unlock()
		s.logger.Warn("Unknown order status",
			zap.String("order_id", s.orderID),
			zap.String("status", result.Status))
		return
	}

	s.state = terminal
	s.mu.Unlock()

	s.logger.Info("Waiting session resolved",
		zap.String("order_id", s.orderID),
		zap.String("outcome", string(terminal)),
		zap.Duration("waited", elapsed))

	s.teardown()
	if fire != nil {
		fire()
	}
}

// expire fires when MaxWait elapses before any terminal status
func (s *Session) expire() {
	s.mu.Lock()
	if s.stopped || s.state != SessionWaiting {
		s.mu.Unlock()
		return
	}
	s.state = SessionExpired
	elapsed := s.elapsedLocked()
	cb := s.callbacks.OnExpired
	s.mu.Unlock()

	s.logger.Info("Waiting session expired",
		zap.String("order_id", s.orderID),
		zap.Duration("waited", elapsed))

	s.poller.Stop()
	if cb != nil {
		cb()
	}
}

func (s *Session) teardown() {
	s.mu.Lock()
	if s.expiry != nil {
		s.expiry.Stop()
	}
	s.mu.Unlock()
	s.poller.Stop()
}
