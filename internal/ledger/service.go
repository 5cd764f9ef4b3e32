package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/identity"
	"github.com/spec-kit/credit-ledger/internal/repository"
)

// Service resolves profiles and is the sole mutation path for balances.
type Service struct {
	profiles        repository.ProfileRepository
	provider        identity.Provider
	logger          *zap.Logger
	startingBalance int
}

// Dependencies encapsulates requirements for the ledger service.
type Dependencies struct {
	ProfileRepo repository.ProfileRepository
	Provider    identity.Provider
	Logger      *zap.Logger
}

// NewService builds the service. A non-positive startingBalance falls back
// to the default grant.
func NewService(deps Dependencies, startingBalance int) *Service {
	if startingBalance <= 0 {
		startingBalance = domain.DefaultStartingBalance
	}
	return &Service{
		profiles:        deps.ProfileRepo,
		provider:        deps.Provider,
		logger:          deps.Logger,
		startingBalance: startingBalance,
	}
}

// Resolve returns the persisted profile for the subject, materializing a new
// one with the starting balance on first observation. Once a session exists
// resolution only fails if the store write fails; provider failures degrade
// to an empty email instead of propagating.
func (s *Service) Resolve(ctx context.Context, subjectID string) (*domain.Profile, error) {
	existing, err := s.profiles.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	email := ""
	if info, err := s.provider.GetCurrentUser(ctx); err != nil {
		s.logger.Warn("provider user fetch failed; creating profile without email",
			zap.String("subject_id", subjectID), zap.Error(err))
	} else if info != nil {
		email = info.Email
	}

	profile := &domain.Profile{
		ID:        subjectID,
		Email:     email,
		Balance:   s.startingBalance,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.profiles.Set(ctx, subjectID, profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile created",
		zap.String("subject_id", subjectID),
		zap.Int("balance", profile.Balance))
	return profile, nil
}

// SetBalance replaces the balance, re-persists the whole record, and returns
// the updated profile for the caller to hold as current state. It trusts its
// input; affordability validation belongs to the caller.
func (s *Service) SetBalance(ctx context.Context, profile *domain.Profile, newBalance int) (*domain.Profile, error) {
	updated := profile.Clone()
	updated.Balance = newBalance
	if err := s.profiles.Set(ctx, updated.ID, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DebitCAS subtracts price from the balance the caller read, rejecting the
// write with repository.ErrBalanceConflict when another debit landed in
// between. This closes the double-spend window between logically concurrent
// paid operations.
func (s *Service) DebitCAS(ctx context.Context, profile *domain.Profile, price int) (*domain.Profile, error) {
	updated := profile.Clone()
	updated.Balance = profile.Balance - price
	if err := s.profiles.CompareAndSet(ctx, updated.ID, profile.Balance, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
