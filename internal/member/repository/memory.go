package repository

import (
	"context"
	"sort"
	"sync"

	"membership-backoffice/internal/member/domain"
)

// MemoryRepository is an in-memory member repository for tests and seeding.
type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.Member
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]*domain.Member{}}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetActiveByNumber(ctx context.Context, memberNumber string) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byID {
		if m.MemberNumber == memberNumber && m.Status == domain.MemberStatusActive {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) List(ctx context.Context, limit, offset int32) ([]*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*domain.Member, 0, len(r.byID))
	for _, m := range r.byID {
		cp := *m
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].MemberNumber < all[j].MemberNumber })
	if offset >= int32(len(all)) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && int32(len(all)) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepository) Create(ctx context.Context, m *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *m
	r.byID[m.ID] = &cp
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, m *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; ok {
		cp := *m
		r.byID[m.ID] = &cp
	}
	return nil
}
