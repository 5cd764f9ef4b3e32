package analysis

// Approach selects the backend processing pipeline for file analysis.
type Approach string

const (
	ApproachClassical Approach = "classical"
	ApproachQuantum   Approach = "quantum"
	ApproachHybrid    Approach = "hybrid"
)

// Valid reports whether the approach is one the backend accepts.
func (a Approach) Valid() bool {
	switch a {
	case ApproachClassical, ApproachQuantum, ApproachHybrid:
		return true
	}
	return false
}

// Isomer is one ranked stereoisomer in an isomer generation result.
type Isomer struct {
	Rank          int     `json:"rank"`
	SMILES        string  `json:"smiles"`
	Energy        float64 `json:"energy"`
	Stability     string  `json:"stability"`
	Visualization string  `json:"visualization,omitempty"`
	Structure2D   string  `json:"structure_2d,omitempty"`
}

// IsomerResult is the backend response for SMILES isomer generation.
type IsomerResult struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
	InputSMILES    string   `json:"input_smiles"`
	TotalIsomers   int      `json:"total_isomers"`
	ProcessingTime float64  `json:"processing_time"`
	Isomers        []Isomer `json:"isomers"`
	MostStable     *Isomer  `json:"most_stable,omitempty"`
}

// MoleculeInfo summarizes a processed molecule.
type MoleculeInfo struct {
	NumAtoms        int     `json:"num_atoms"`
	NumBonds        int     `json:"num_bonds"`
	MolecularWeight float64 `json:"molecular_weight"`
	ChemicalFormula string  `json:"chemical_formula"`
}

// FileResult is the backend response for one analyzed file.
type FileResult struct {
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime float64       `json:"processing_time"`
	Visualization  string        `json:"visualization,omitempty"`
	MoleculeInfo   *MoleculeInfo `json:"molecule_info,omitempty"`
	Method         string        `json:"method,omitempty"`
}

// RenderResult is the backend response for a 2D or 3D rendering.
type RenderResult struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	InputSMILES   string `json:"input_smiles"`
	Visualization string `json:"visualization,omitempty"`
	Structure2D   string `json:"structure_2d,omitempty"`
}
