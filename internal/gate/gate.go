package gate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/ledger"
	"github.com/spec-kit/credit-ledger/internal/observability"
	"github.com/spec-kit/credit-ledger/internal/repository"
	"github.com/spec-kit/credit-ledger/internal/state"
	apperrors "github.com/spec-kit/credit-ledger/pkg/util"
)

// Work is the backend call a gate charges for. Its result is passed through
// untouched; the gate only depends on success or failure.
type Work func(ctx context.Context) (any, error)

// Gate enforces the paid-feature protocol for one catalog entry: require a
// resolved profile, validate affordability, charge per the entry's policy,
// and propagate the updated profile into shared state.
type Gate struct {
	op       domain.PricedOperation
	ledger   *ledger.Service
	profiles *state.ProfileState
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// New builds a gate for a catalog entry.
func New(op domain.PricedOperation, ledgerSvc *ledger.Service, profiles *state.ProfileState, metrics *observability.Metrics, logger *zap.Logger) *Gate {
	return &Gate{op: op, ledger: ledgerSvc, profiles: profiles, metrics: metrics, logger: logger}
}

// Operation returns the catalog entry this gate enforces.
func (g *Gate) Operation() domain.PricedOperation {
	return g.op
}

// Run executes the gate protocol around work. The returned profile is the
// caller's new current state after any debit.
func (g *Gate) Run(ctx context.Context, work Work) (any, *domain.Profile, error) {
	profile := g.profiles.Get()
	if profile == nil {
		g.metrics.RecordRefusal(g.op.Name, "account_not_ready")
		return nil, nil, apperrors.NewAccountNotReady()
	}

	if profile.Balance < g.op.Price {
		g.metrics.RecordRefusal(g.op.Name, "insufficient_balance")
		return nil, profile, apperrors.NewInsufficientBalance(g.op.Name, g.op.Price, profile.Balance)
	}

	switch g.op.Policy {
	case domain.ChargeBefore:
		return g.runChargeBefore(ctx, profile, work)
	default:
		return g.runChargeAfter(ctx, profile, work)
	}
}

// runChargeBefore debits first. A backend failure afterwards leaves the
// balance reduced with no completed work; there is no refund, and the error
// says so instead of hiding it.
func (g *Gate) runChargeBefore(ctx context.Context, profile *domain.Profile, work Work) (any, *domain.Profile, error) {
	debited, err := g.debit(ctx, profile)
	if errors.Is(err, repository.ErrBalanceConflict) {
		return nil, profile, conflictError(g.op.Name)
	}
	if err != nil {
		return nil, profile, err
	}

	result, err := work(ctx)
	if err != nil {
		g.logger.Warn("backend call failed after charge",
			zap.String("operation", g.op.Name),
			zap.Int("price", g.op.Price),
			zap.Error(err))
		return nil, debited, fmt.Errorf("%d points were charged but the work failed and is not refunded: %w", g.op.Price, err)
	}
	return result, debited, nil
}

func (g *Gate) runChargeAfter(ctx context.Context, profile *domain.Profile, work Work) (any, *domain.Profile, error) {
	result, err := work(ctx)
	if err != nil {
		return nil, profile, err
	}

	debited, err := g.debit(ctx, profile)
	if errors.Is(err, repository.ErrBalanceConflict) {
		// Another operation debited while the backend call was in flight.
		// The work is done, so retry the charge once against the freshly
		// persisted balance before giving up.
		fresh, rerr := g.ledger.Resolve(ctx, profile.ID)
		if rerr != nil {
			return nil, profile, rerr
		}
		if fresh.Balance < g.op.Price {
			g.metrics.RecordRefusal(g.op.Name, "insufficient_balance")
			return nil, fresh, apperrors.NewInsufficientBalance(g.op.Name, g.op.Price, fresh.Balance)
		}
		debited, err = g.debit(ctx, fresh)
	}
	if errors.Is(err, repository.ErrBalanceConflict) {
		return nil, profile, conflictError(g.op.Name)
	}
	if err != nil {
		return nil, profile, err
	}
	return result, debited, nil
}

func conflictError(operation string) error {
	return apperrors.NewConflict("balance changed while the operation was in flight",
		map[string]any{"operation": operation})
}

func (g *Gate) debit(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	debited, err := g.ledger.DebitCAS(ctx, profile, g.op.Price)
	if errors.Is(err, repository.ErrBalanceConflict) {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	g.profiles.Set(debited)
	g.metrics.RecordCharge(g.op.Name, g.op.Price)
	g.logger.Info("operation charged",
		zap.String("operation", g.op.Name),
		zap.Int("price", g.op.Price),
		zap.Int("balance", debited.Balance))
	return debited, nil
}
