package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/credit-ledger/internal/domain"
)

// ErrBalanceConflict is returned by CompareAndSet when the persisted balance
// no longer matches the value the caller validated against.
var ErrBalanceConflict = errors.New("balance changed since it was read")

// ProfileRepository defines persistence access for profiles, keyed by the
// session subject identifier. Get returns (nil, nil) when no record exists.
// Set overwrites the whole record, last write wins.
type ProfileRepository interface {
	Get(ctx context.Context, subjectID string) (*domain.Profile, error)
	Set(ctx context.Context, subjectID string, profile *domain.Profile) error
	// CompareAndSet overwrites the record only while the persisted balance
	// still equals expectedBalance, otherwise ErrBalanceConflict.
	CompareAndSet(ctx context.Context, subjectID string, expectedBalance int, profile *domain.Profile) error
}

type memoryProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
}

// NewMemoryProfileRepository returns an in-memory implementation. It never
// fails, matching the reliability assumption of tab-local storage.
func NewMemoryProfileRepository() ProfileRepository {
	return &memoryProfileRepository{profiles: make(map[string]*domain.Profile)}
}

func (r *memoryProfileRepository) Get(_ context.Context, subjectID string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles[subjectID].Clone(), nil
}

func (r *memoryProfileRepository) Set(_ context.Context, subjectID string, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[subjectID] = profile.Clone()
	return nil
}

func (r *memoryProfileRepository) CompareAndSet(_ context.Context, subjectID string, expectedBalance int, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, exists := r.profiles[subjectID]
	if !exists || current.Balance != expectedBalance {
		return ErrBalanceConflict
	}
	r.profiles[subjectID] = profile.Clone()
	return nil
}
