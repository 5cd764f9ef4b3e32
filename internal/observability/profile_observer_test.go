package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/state"
)

func TestObserveProfile_TracksBalanceGauge(t *testing.T) {
	profiles := state.NewProfileState()
	metrics := NewMetrics()
	cancel := ObserveProfile(profiles, metrics, zap.NewNop())
	defer cancel()

	_, ok := metrics.Balance()
	assert.False(t, ok, "no gauge before a profile is resolved")

	profiles.Set(&domain.Profile{ID: "u1", Email: "a@b.com", Balance: 950, CreatedAt: time.Now()})

	balance, ok := metrics.Balance()
	require.True(t, ok)
	assert.Equal(t, int64(950), balance)

	profiles.Set(&domain.Profile{ID: "u1", Email: "a@b.com", Balance: 900, CreatedAt: time.Now()})
	balance, _ = metrics.Balance()
	assert.Equal(t, int64(900), balance)

	profiles.Clear()
	_, ok = metrics.Balance()
	assert.False(t, ok, "gauge dropped on sign-out")
}

func TestObserveProfile_CancelStopsUpdates(t *testing.T) {
	profiles := state.NewProfileState()
	metrics := NewMetrics()
	cancel := ObserveProfile(profiles, metrics, zap.NewNop())

	profiles.Set(&domain.Profile{ID: "u1", Balance: 500})
	cancel()
	profiles.Set(&domain.Profile{ID: "u1", Balance: 100})

	balance, ok := metrics.Balance()
	require.True(t, ok)
	assert.Equal(t, int64(500), balance)
}
