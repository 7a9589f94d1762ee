package domain

import "time"

// Session represents an authenticated login for a subject. The subject is the
// auth user created for a member login; MemberNumber ties the session back to
// the membership record. Sessions are replaced wholesale on refresh, never
// mutated field by field by consumers.
type Session struct {
	ID               string
	SubjectID        string
	MemberNumber     string
	ExpiresAt        time.Time
	RevokedAt        *time.Time // nil when not revoked
	LastSeenAt       *time.Time
	RefreshJti       string // current refresh token jti for rotation; empty if not set
	RefreshTokenHash string // SHA-256 hash of current refresh token
	CreatedAt        time.Time
}

// Active reports whether the session is usable at the given instant.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
