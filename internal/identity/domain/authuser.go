package domain

import (
	"errors"
	"time"
)

// AuthUser is a login account provisioned for a member. The login identity is
// the synthetic address derived from the member number; the secret hash is
// bcrypt over the normalized member number.
type AuthUser struct {
	ID             string
	LoginIdentity  string
	SecretHash     string
	MemberID       string
	MemberNumber   string
	EmailConfirmed bool
	CreatedAt      time.Time
}

// Validate validates the auth user for persistence.
func (u *AuthUser) Validate() error {
	if u.LoginIdentity == "" {
		return errors.New("login identity is required")
	}
	if u.SecretHash == "" {
		return errors.New("secret hash is required")
	}
	if u.MemberNumber == "" {
		return errors.New("member number is required")
	}
	return nil
}
