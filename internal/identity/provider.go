package identity

import (
	"context"
	"errors"

	"github.com/spec-kit/credit-ledger/internal/domain"
)

// UserInfo is the slice of provider user data this service reads.
type UserInfo struct {
	Email string
}

// ErrInvalidCredentials is returned when sign-in fails verification.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned when sign-up reuses a registered email.
var ErrEmailTaken = errors.New("email already registered")

// Provider is the identity provider contract. Sessions are owned by the
// provider; this service holds read-only references and reacts to the
// session-change feed.
type Provider interface {
	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*domain.Session, error)
	// OnSessionChange registers a callback for session lifecycle events.
	// The callback receives nil on sign-out or invalidation. The returned
	// function cancels the subscription and stops all future delivery.
	OnSessionChange(fn func(*domain.Session)) func()
	// GetCurrentUser fetches user attributes for the current session.
	GetCurrentUser(ctx context.Context) (*UserInfo, error)

	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
}
