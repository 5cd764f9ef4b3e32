package dto

// SmilesRequest payload for SMILES-based operations.
type SmilesRequest struct {
	SMILES string `json:"smiles"`
}
