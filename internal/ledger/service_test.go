package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/identity"
	"github.com/spec-kit/credit-ledger/internal/repository"
)

type mockProvider struct {
	identity.Provider
	userFn    func(ctx context.Context) (*identity.UserInfo, error)
	userCalls int
}

func (m *mockProvider) GetCurrentUser(ctx context.Context) (*identity.UserInfo, error) {
	m.userCalls++
	if m.userFn != nil {
		return m.userFn(ctx)
	}
	return nil, errors.New("no user")
}

// countingRepo wraps a repository and counts writes.
type countingRepo struct {
	repository.ProfileRepository
	setCalls int
}

func (r *countingRepo) Set(ctx context.Context, subjectID string, profile *domain.Profile) error {
	r.setCalls++
	return r.ProfileRepository.Set(ctx, subjectID, profile)
}

func newTestService(provider identity.Provider) (*Service, *countingRepo) {
	repo := &countingRepo{ProfileRepository: repository.NewMemoryProfileRepository()}
	svc := NewService(Dependencies{
		ProfileRepo: repo,
		Provider:    provider,
		Logger:      zap.NewNop(),
	}, domain.DefaultStartingBalance)
	return svc, repo
}

func TestResolve_CreatesProfileWithProviderEmail(t *testing.T) {
	provider := &mockProvider{userFn: func(context.Context) (*identity.UserInfo, error) {
		return &identity.UserInfo{Email: "a@b.com"}, nil
	}}
	svc, repo := newTestService(provider)

	profile, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "a@b.com", profile.Email)
	assert.Equal(t, 1000, profile.Balance)
	assert.False(t, profile.CreatedAt.IsZero())
	assert.Equal(t, 1, repo.setCalls, "exactly one persistence write")

	persisted, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, profile, persisted)
}

func TestResolve_ProviderFailureStillYieldsProfile(t *testing.T) {
	provider := &mockProvider{userFn: func(context.Context) (*identity.UserInfo, error) {
		return nil, errors.New("provider unavailable")
	}}
	svc, _ := newTestService(provider)

	profile, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err, "resolution must never fail on provider errors")

	assert.Equal(t, "u1", profile.ID)
	assert.Empty(t, profile.Email)
	assert.Equal(t, 1000, profile.Balance)
}

func TestResolve_IdempotentPerSubject(t *testing.T) {
	provider := &mockProvider{userFn: func(context.Context) (*identity.UserInfo, error) {
		return &identity.UserInfo{Email: "a@b.com"}, nil
	}}
	svc, repo := newTestService(provider)

	first, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	second, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first, second, "round-trip returns the persisted record unmodified")
	assert.Equal(t, 1, repo.setCalls, "only one record persisted per subject")
	assert.Equal(t, 1, provider.userCalls, "no further provider calls once persisted")
}

func TestResolve_ExistingProfileSkipsProvider(t *testing.T) {
	provider := &mockProvider{}
	svc, repo := newTestService(provider)

	existing := &domain.Profile{ID: "u1", Email: "a@b.com", Balance: 240}
	require.NoError(t, repo.ProfileRepository.Set(context.Background(), "u1", existing))

	profile, err := svc.Resolve(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, existing, profile)
	assert.Zero(t, provider.userCalls)
}

func TestSetBalance_PersistsExactArgument(t *testing.T) {
	svc, repo := newTestService(&mockProvider{})

	profile := &domain.Profile{ID: "u1", Balance: 1000}
	require.NoError(t, repo.ProfileRepository.Set(context.Background(), "u1", profile))

	updated, err := svc.SetBalance(context.Background(), profile, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, updated.Balance)
	assert.Equal(t, 1000, profile.Balance, "input profile is not mutated")

	persisted, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, persisted.Balance)
}

func TestDebitCAS_RejectsStaleRead(t *testing.T) {
	svc, repo := newTestService(&mockProvider{})

	profile := &domain.Profile{ID: "u1", Balance: 50}
	require.NoError(t, repo.ProfileRepository.Set(context.Background(), "u1", profile))

	// Two logically concurrent operations both read balance 50.
	first, err := svc.DebitCAS(context.Background(), profile, 35)
	require.NoError(t, err)
	assert.Equal(t, 15, first.Balance)

	_, err = svc.DebitCAS(context.Background(), profile, 35)
	assert.ErrorIs(t, err, repository.ErrBalanceConflict, "stale write must be rejected, not double-spent")
}
