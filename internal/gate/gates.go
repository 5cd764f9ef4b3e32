package gate

import (
	"go.uber.org/zap"

	"github.com/spec-kit/credit-ledger/internal/domain"
	"github.com/spec-kit/credit-ledger/internal/ledger"
	"github.com/spec-kit/credit-ledger/internal/observability"
	"github.com/spec-kit/credit-ledger/internal/state"
)

// Gates bundles one gate per paid feature.
type Gates struct {
	FileAnalysis     *Gate
	IsomerGeneration *Gate
	Render2D         *Gate
	Render3D         *Gate
}

// NewGates builds the full catalog of feature gates over shared dependencies.
func NewGates(ledgerSvc *ledger.Service, profiles *state.ProfileState, metrics *observability.Metrics, logger *zap.Logger) *Gates {
	return &Gates{
		FileAnalysis:     New(domain.OpFileAnalysis, ledgerSvc, profiles, metrics, logger),
		IsomerGeneration: New(domain.OpIsomerGeneration, ledgerSvc, profiles, metrics, logger),
		Render2D:         New(domain.OpRender2D, ledgerSvc, profiles, metrics, logger),
		Render3D:         New(domain.OpRender3D, ledgerSvc, profiles, metrics, logger),
	}
}
