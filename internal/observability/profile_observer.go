package observability

import (
	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/state"
)

// ObserveProfile mirrors profile changes into the balance gauge and the log.
// It returns the listener's cancellation func.
func ObserveProfile(profiles *state.ProfileState, metrics *Metrics, logger *zap.Logger) func() {
	return profiles.Subscribe(func(p *domain.Profile) {
		if p == nil {
			metrics.ClearBalance()
			logger.Info("profile cleared")
			return
		}
		metrics.SetBalance(p.Balance)
		logger.Info("profile changed",
			zap.String("subject_id", p.ID),
			zap.Int("balance", p.Balance),
		)
	})
}
