package gate

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/identity"
	"github.com/spec-kit/credit-ledger/internal/ledger"
	"github.com/spec-kit/credit-ledger/internal/observability"
	"github.com/spec-kit/credit-ledger/internal/repository"
	"github.com/spec-kit/credit-ledger/internal/state"
	apperrors "github.com/spec-kit/credit-ledger/pkg/util"
)

type stubProvider struct {
	identity.Provider
}

func (stubProvider) GetCurrentUser(context.Context) (*identity.UserInfo, error) {
	return nil, errors.New("not signed in")
}

// recordingRepo tracks every balance written and the number of writes.
type recordingRepo struct {
	repository.ProfileRepository
	writes          int
	balancesWritten []int
}

func (r *recordingRepo) Set(ctx context.Context, subjectID string, profile *domain.Profile) error {
	r.writes++
	r.balancesWritten = append(r.balancesWritten, profile.Balance)
	return r.ProfileRepository.Set(ctx, subjectID, profile)
}

func (r *recordingRepo) CompareAndSet(ctx context.Context, subjectID string, expectedBalance int, profile *domain.Profile) error {
	err := r.ProfileRepository.CompareAndSet(ctx, subjectID, expectedBalance, profile)
	if err == nil {
		r.writes++
		r.balancesWritten = append(r.balancesWritten, profile.Balance)
	}
	return err
}

type fixture struct {
	repo     *recordingRepo
	profiles *state.ProfileState
	metrics  *observability.Metrics
	ledger   *ledger.Service
}

func newFixture(t *testing.T, profile *domain.Profile) *fixture {
	t.Helper()
	repo := &recordingRepo{ProfileRepository: repository.NewMemoryProfileRepository()}
	profiles := state.NewProfileState()
	if profile != nil {
		require.NoError(t, repo.ProfileRepository.Set(context.Background(), profile.ID, profile))
		profiles.Set(profile)
	}
	svc := ledger.NewService(ledger.Dependencies{
		ProfileRepo: repo,
		Provider:    stubProvider{},
		Logger:      zap.NewNop(),
	}, domain.DefaultStartingBalance)
	return &fixture{repo: repo, profiles: profiles, metrics: observability.NewMetrics(), ledger: svc}
}

func (f *fixture) gate(op domain.PricedOperation) *Gate {
	return New(op, f.ledger, f.profiles, f.metrics, zap.NewNop())
}

func TestRun_NoProfileRefusesWithoutBackendCall(t *testing.T) {
	f := newFixture(t, nil)
	g := f.gate(domain.OpIsomerGeneration)

	backendCalled := false
	_, _, err := g.Run(context.Background(), func(context.Context) (any, error) {
		backendCalled = true
		return nil, nil
	})

	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "ACCOUNT_NOT_READY", domainErr.Code)
	assert.False(t, backendCalled)
	assert.Zero(t, f.repo.writes)
}

func TestRun_InsufficientBalanceRefusesWithoutBackendCall(t *testing.T) {
	f := newFixture(t, &domain.Profile{ID: "u1", Balance: 20})
	f.repo.writes = 0
	f.repo.balancesWritten = nil
	g := f.gate(domain.OpIsomerGeneration) // priced at 35

	backendCalled := false
	_, _, err := g.Run(context.Background(), func(context.Context) (any, error) {
		backendCalled = true
		return nil, nil
	})

	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "INSUFFICIENT_BALANCE", domainErr.Code)
	assert.Equal(t, 15, domainErr.Details["shortfall"], "refusal names the shortfall")
	assert.False(t, backendCalled, "backend must not be called")
	assert.Zero(t, f.repo.writes, "ledger must not be called")
}

func TestRun_ChargeAfterDebitsExactPriceOnSuccess(t *testing.T) {
	f := newFixture(t, &domain.Profile{ID: "u1", Balance: 50})
	f.repo.writes = 0
	f.repo.balancesWritten = nil
	g := f.gate(domain.OpIsomerGeneration) // priced at 35

	result, updated, err := g.Run(context.Background(), func(context.Context) (any, error) {
		return "ranked isomers", nil
	})
	require.NoError(t, err)

	assert.Equal(t, "ranked isomers", result)
	assert.Equal(t, 15, updated.Balance)
	assert.Equal(t, 1, f.repo.writes, "exactly one persistence write")
	assert.Equal(t, 15, f.profiles.Get().Balance, "shared state carries the updated profile")
	assert.Equal(t, int64(1), f.metrics.ChargeCount("isomer_generation"))
}

func TestRun_ChargeAfterSkipsDebitOnBackendFailure(t *testing.T) {
	f := newFixture(t, &domain.Profile{ID: "u1", Balance: 50})
	f.repo.writes = 0
	g := f.gate(domain.OpRender3D)

	_, _, err := g.Run(context.Background(), func(context.Context) (any, error) {
		return nil, errors.New("backend exploded")
	})

	require.Error(t, err)
	assert.Zero(t, f.repo.writes)
	assert.Equal(t, 50, f.profiles.Get().Balance, "balance untouched on failure")
}

func TestRun_ChargeBeforeKeepsDebitOnBackendFailure(t *testing.T) {
	f := newFixture(t, &domain.Profile{ID: "u1", Balance: 100})
	f.repo.writes = 0
	g := f.gate(domain.OpFileAnalysis) // priced at 50, charge-before

	_, updated, err := g.Run(context.Background(), func(context.Context) (any, error) {
		return nil, errors.New("backend exploded")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not refunded", "the lost-work gap is stated, not hidden")
	assert.Equal(t, 50, updated.Balance, "pre-debit charge is kept")
	assert.Equal(t, 50, f.profiles.Get().Balance)
}

func TestRun_ChargeBeforeDebitsBeforeBackendCall(t *testing.T) {
	f := newFixture(t, &domain.Profile{ID: "u1", Balance: 100})
	f.repo.writes = 0
	g := f.gate(domain.OpFileAnalysis)

	_, _, err := g.Run(context.Background(), func(context.Context) (any, error) {
		persisted, getErr := f.repo.Get(context.Background(), "u1")
		require.NoError(t, getErr)
		assert.Equal(t, 50, persisted.Balance, "debit already persisted when backend runs")
		return "ok", nil
	})
	require.NoError(t, err)
}

func TestRun_ChargeAfterRetriesOnceOnStaleBalance(t *testing.T) {
	// The shared state still holds balance 75 while another operation has
	// already brought the persisted balance down to 40.
	f := newFixture(t, &domain.Profile{ID: "u1", Balance: 75})
	require.NoError(t, f.repo.ProfileRepository.Set(context.Background(),
		"u1", &domain.Profile{ID: "u1", Balance: 40}))
	f.repo.writes = 0
	g := f.gate(domain.OpIsomerGeneration) // priced at 35

	_, updated, err := g.Run(context.Background(), func(context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Balance, "debit applied to the fresh balance, not the stale one")
}

func TestRun_ChargeAfterStaleAndInsufficientRefuses(t *testing.T) {
	f := newFixture(t, &domain.Profile{ID: "u1", Balance: 75})
	require.NoError(t, f.repo.ProfileRepository.Set(context.Background(),
		"u1", &domain.Profile{ID: "u1", Balance: 10}))
	g := f.gate(domain.OpIsomerGeneration)

	_, _, err := g.Run(context.Background(), func(context.Context) (any, error) {
		return "ok", nil
	})

	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_BALANCE", apperrors.ToDomainError(err).Code)
}

// TestRun_NeverWritesNegativeBalance drives every gate with randomized
// balances and asserts the ledger is never handed a negative number.
func TestRun_NeverWritesNegativeBalance(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, op := range domain.Operations() {
		for i := 0; i < 200; i++ {
			balance := rng.Intn(op.Price * 3)
			f := newFixture(t, &domain.Profile{ID: "u1", Balance: balance})
			f.repo.balancesWritten = nil
			g := f.gate(op)

			_, _, err := g.Run(context.Background(), func(context.Context) (any, error) {
				if rng.Intn(2) == 0 {
					return nil, errors.New("backend failure")
				}
				return "ok", nil
			})

			if balance < op.Price {
				require.Error(t, err)
			}
			for _, written := range f.repo.balancesWritten {
				require.GreaterOrEqual(t, written, 0,
					"operation %s wrote negative balance from starting balance %d", op.Name, balance)
			}
		}
	}
}
