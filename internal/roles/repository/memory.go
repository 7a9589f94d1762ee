package repository

import (
	"context"
	"sync"

	"membership-backoffice/internal/roles/domain"
)

// MemoryRepository is an in-memory role repository for tests and seeding.
type MemoryRepository struct {
	mu        sync.Mutex
	bySubject map[string][]domain.Role
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bySubject: map[string][]domain.Role{}}
}

func (r *MemoryRepository) ListRolesForSubject(ctx context.Context, subjectID string) ([]domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roles := r.bySubject[subjectID]
	out := make([]domain.Role, len(roles))
	copy(out, roles)
	return out, nil
}

func (r *MemoryRepository) Assign(ctx context.Context, subjectID string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if domain.HasRole(r.bySubject[subjectID], role) {
		return nil
	}
	r.bySubject[subjectID] = append(r.bySubject[subjectID], role)
	return nil
}

func (r *MemoryRepository) RemoveAllForSubject(ctx context.Context, subjectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bySubject, subjectID)
	return nil
}
