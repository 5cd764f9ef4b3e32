package domain

import "time"

// Session is a read-only view of the token issued by the identity provider.
// The provider owns its lifecycle; this service only holds a reference while
// the session is live. Token is the opaque credential a client presents on
// subsequent requests.
type Session struct {
	Token     string
	SubjectID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Confirmed bool
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
