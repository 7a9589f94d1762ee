package domain

import (
	"errors"
	"time"
)

// Member is a membership record. The back office reads members; it never
// creates them through the sign-in path.
type Member struct {
	ID           string
	MemberNumber string
	FullName     string
	Email        string // optional
	Status       MemberStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusInactive MemberStatus = "inactive"
)

// Validate validates the member for persistence. Returns an error describing
// the first validation failure.
func (m *Member) Validate() error {
	if m.MemberNumber == "" {
		return errors.New("member number is required")
	}
	if m.FullName == "" {
		return errors.New("full name is required")
	}
	if m.Status == "" {
		m.Status = MemberStatusPending
	}
	return nil
}

// CanAuthenticate reports whether the member may sign in. Only active
// members authenticate.
func (m *Member) CanAuthenticate() bool {
	return m.Status == MemberStatusActive
}
