package repository

import (
	"context"

	"membership-backoffice/internal/roles/domain"
)

// Repository defines persistence for role assignments.
type Repository interface {
	// ListRolesForSubject returns the roles assigned to the subject, ordered
	// by assignment time. An empty slice means no assignments.
	ListRolesForSubject(ctx context.Context, subjectID string) ([]domain.Role, error)
	Assign(ctx context.Context, subjectID string, role domain.Role) error
	RemoveAllForSubject(ctx context.Context, subjectID string) error
}
