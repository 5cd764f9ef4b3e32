package dto

import (
	"time"

	"github.com/spec-kit/credit-ledger/internal/domain"
)

// ProfileResponse is the profile view returned to the UI.
type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// FromProfile maps the domain record.
func FromProfile(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		Balance:   p.Balance,
		CreatedAt: p.CreatedAt,
	}
}
