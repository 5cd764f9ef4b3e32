package dto

import "time"

// CredentialsRequest payload for sign-in and sign-up.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes the current session. AccessToken is the bearer
// credential for protected routes.
type SessionResponse struct {
	AccessToken string    `json:"access_token"`
	SubjectID   string    `json:"subject_id"`
	Email       string    `json:"email"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Confirmed   bool      `json:"confirmed"`
}
