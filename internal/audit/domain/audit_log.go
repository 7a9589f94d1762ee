package domain

import "time"

// AuditLog represents an audit event.
type AuditLog struct {
	ID        string
	SubjectID string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
