package domain

import "time"

// Profile is the locally owned record of a user, including their spendable
// point balance. The identity provider owns the session; the profile and its
// balance belong to this service and are never sourced from the provider
// after creation.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Balance   int       `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultStartingBalance is granted to every newly materialized profile.
const DefaultStartingBalance = 1000

// Clone returns a copy so callers can hold the profile as current state
// without aliasing the persisted record.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
