package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/identity"
	"github.com/spec-kit/credit-ledger/internal/ledger"
	"github.com/spec-kit/credit-ledger/internal/state"
)

// State enumerates the observer lifecycle states.
type State string

const (
	StateUnauthenticated State = "UNAUTHENTICATED"
	StateAuthenticating  State = "AUTHENTICATING"
	StateAuthenticated   State = "AUTHENTICATED"
)

// Observer tracks the identity provider's session feed and keeps the shared
// profile state in step with it. It runs for the lifetime of the process;
// Close cancels the provider subscription and stops all future delivery.
type Observer struct {
	provider identity.Provider
	ledger   *ledger.Service
	profiles *state.ProfileState
	logger   *zap.Logger

	mu          sync.Mutex
	state       State
	unsubscribe func()
	closed      bool
}

// NewObserver builds an observer in the unauthenticated state.
func NewObserver(provider identity.Provider, ledgerSvc *ledger.Service, profiles *state.ProfileState, logger *zap.Logger) *Observer {
	return &Observer{
		provider: provider,
		ledger:   ledgerSvc,
		profiles: profiles,
		logger:   logger,
		state:    StateUnauthenticated,
	}
}

// Start performs the initial session fetch and subscribes to the change
// feed. A provider error on the initial fetch is treated as no session;
// nothing throws past this boundary.
func (o *Observer) Start(ctx context.Context) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.state = StateAuthenticating
	o.mu.Unlock()

	unsub := o.provider.OnSessionChange(func(session *domain.Session) {
		o.handleSession(context.Background(), session)
	})

	// Close may have landed between subscribing and recording the
	// cancellation func; release the subscription instead of leaking it.
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		unsub()
		return
	}
	o.unsubscribe = unsub
	o.mu.Unlock()

	session, err := o.provider.GetSession(ctx)
	if err != nil {
		o.logger.Warn("initial session fetch failed; treating as signed out", zap.Error(err))
		session = nil
	}
	o.handleSession(ctx, session)
}

// Close cancels the provider subscription. Subsequent events are dropped.
func (o *Observer) Close() {
	o.mu.Lock()
	o.closed = true
	unsub := o.unsubscribe
	o.unsubscribe = nil
	o.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// State returns the current lifecycle state.
func (o *Observer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// handleSession serializes lifecycle transitions behind the mutex so a
// sign-out arriving during profile resolution cannot interleave.
func (o *Observer) handleSession(ctx context.Context, session *domain.Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	if session == nil || session.Expired(time.Now()) {
		o.state = StateUnauthenticated
		o.profiles.Clear()
		return
	}

	profile, err := o.ledger.Resolve(ctx, session.SubjectID)
	if err != nil {
		o.logger.Error("profile resolution failed",
			zap.String("subject_id", session.SubjectID), zap.Error(err))
		o.state = StateAuthenticated
		o.profiles.Clear()
		return
	}

	o.state = StateAuthenticated
	o.profiles.Set(profile)
}
