package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/credit-ledger/internal/domain"
)

// account is a locally registered credential pair.
type account struct {
	id           string
	email        string
	passwordHash string
	confirmed    bool
}

// LocalProvider is an in-process identity provider. Accounts live in memory,
// credentials are bcrypt-hashed, and sessions are signed JWTs. Session-change
// listeners are invoked synchronously for every sign-in, sign-up, and
// sign-out.
type LocalProvider struct {
	mu          sync.Mutex
	accounts    map[string]*account // keyed by email
	tokens      *TokenManager
	bcryptCost  int
	autoConfirm bool

	current   *domain.Session
	listeners map[int]func(*domain.Session)
	nextID    int
}

// LocalProviderConfig tunes account handling.
type LocalProviderConfig struct {
	BcryptCost int
	// RequireConfirmation marks new sessions unconfirmed until an upstream
	// confirmation step; when false, sign-up sessions are confirmed.
	RequireConfirmation bool
}

// NewLocalProvider builds a provider with no registered accounts.
func NewLocalProvider(tokens *TokenManager, cfg LocalProviderConfig) *LocalProvider {
	return &LocalProvider{
		accounts:    make(map[string]*account),
		tokens:      tokens,
		bcryptCost:  cfg.BcryptCost,
		autoConfirm: !cfg.RequireConfirmation,
		listeners:   make(map[int]func(*domain.Session)),
	}
}

// GetSession returns the current session, or nil when signed out. An expired
// session is dropped on read and listeners are notified, the same way a
// sign-out would be.
func (p *LocalProvider) GetSession(_ context.Context) (*domain.Session, error) {
	p.mu.Lock()
	if p.current != nil && p.current.Expired(time.Now()) {
		p.current = nil
		fns := p.snapshotListeners()
		p.mu.Unlock()
		for _, fn := range fns {
			fn(nil)
		}
		return nil, nil
	}
	current := p.current
	p.mu.Unlock()
	return current, nil
}

// OnSessionChange registers a listener and returns its cancellation func.
func (p *LocalProvider) OnSessionChange(fn func(*domain.Session)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// GetCurrentUser returns attributes for the signed-in account.
func (p *LocalProvider) GetCurrentUser(_ context.Context) (*UserInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, ErrInvalidCredentials
	}
	return &UserInfo{Email: p.current.Email}, nil
}

// SignUp registers a new account and starts a session for it.
func (p *LocalProvider) SignUp(_ context.Context, email, password string) (*domain.Session, error) {
	hash, err := HashPassword(password, p.bcryptCost)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return nil, ErrEmailTaken
	}
	acct := &account{
		id:           uuid.NewString(),
		email:        email,
		passwordHash: hash,
		confirmed:    p.autoConfirm,
	}
	p.accounts[email] = acct
	p.mu.Unlock()

	return p.startSession(acct)
}

// SignIn verifies credentials and starts a session.
func (p *LocalProvider) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	p.mu.Lock()
	acct, exists := p.accounts[email]
	p.mu.Unlock()
	if !exists {
		return nil, ErrInvalidCredentials
	}
	if err := ComparePassword(acct.passwordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p.startSession(acct)
}

// SignOut ends the current session and notifies listeners with nil.
func (p *LocalProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.current = nil
	fns := p.snapshotListeners()
	p.mu.Unlock()

	for _, fn := range fns {
		fn(nil)
	}
	return nil
}

func (p *LocalProvider) startSession(acct *account) (*domain.Session, error) {
	session, err := p.tokens.GenerateToken(acct.id, acct.email, acct.confirmed)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = session
	fns := p.snapshotListeners()
	p.mu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
	return session, nil
}

// snapshotListeners copies listeners so delivery happens outside the lock.
// Callers must hold the mutex.
func (p *LocalProvider) snapshotListeners() []func(*domain.Session) {
	fns := make([]func(*domain.Session), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	return fns
}
