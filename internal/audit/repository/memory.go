package repository

import (
	"context"
	"sort"
	"sync"

	"membership-backoffice/internal/audit/domain"
)

// MemoryRepository is an in-memory audit log store for tests.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.entries {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) List(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.page(r.entries, limit, offset), nil
}

func (r *MemoryRepository) ListBySubject(ctx context.Context, subjectID string, limit, offset int32) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.AuditLog
	for _, a := range r.entries {
		if a.SubjectID == subjectID {
			matched = append(matched, a)
		}
	}
	return r.page(matched, limit, offset), nil
}

func (r *MemoryRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MemoryRepository) page(entries []*domain.AuditLog, limit, offset int32) []*domain.AuditLog {
	out := make([]*domain.AuditLog, 0, len(entries))
	for _, a := range entries {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= int32(len(out)) {
		return nil
	}
	out = out[offset:]
	if limit > 0 && int32(len(out)) > limit {
		out = out[:limit]
	}
	return out
}
