package domain

// ChargePolicy selects when a paid operation debits the balance relative to
// the backend call.
type ChargePolicy string

const (
	// ChargeBefore debits before the backend call. A backend failure after
	// the debit leaves the balance reduced with no completed work; there is
	// no compensating refund.
	ChargeBefore ChargePolicy = "CHARGE_BEFORE"
	// ChargeAfter debits only after a successful backend response.
	ChargeAfter ChargePolicy = "CHARGE_AFTER"
)

// PricedOperation is a static catalog entry used to validate affordability
// before charging. It is not persisted.
type PricedOperation struct {
	Name   string
	Price  int
	Policy ChargePolicy
}

// Catalog of paid features. Prices are fixed per feature; the charge policy
// asymmetry between bulk file analysis and the per-molecule operations is
// deliberate and preserved per feature.
var (
	OpFileAnalysis     = PricedOperation{Name: "file_analysis", Price: 50, Policy: ChargeBefore}
	OpIsomerGeneration = PricedOperation{Name: "isomer_generation", Price: 35, Policy: ChargeAfter}
	OpRender2D         = PricedOperation{Name: "render_2d", Price: 10, Policy: ChargeAfter}
	OpRender3D         = PricedOperation{Name: "render_3d", Price: 20, Policy: ChargeAfter}
)

// Operations lists all catalog entries.
func Operations() []PricedOperation {
	return []PricedOperation{OpFileAnalysis, OpIsomerGeneration, OpRender2D, OpRender3D}
}
