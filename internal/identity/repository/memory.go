package repository

import (
	"context"
	"sync"

	"membership-backoffice/internal/identity/domain"
)

// MemoryRepository is an in-memory auth-user repository for tests and seeding.
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*domain.AuthUser
	byLogin map[string]*domain.AuthUser
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    map[string]*domain.AuthUser{},
		byLogin: map[string]*domain.AuthUser{},
	}
}

func (r *MemoryRepository) GetByLoginIdentity(ctx context.Context, loginIdentity string) (*domain.AuthUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byLogin[loginIdentity]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.AuthUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) Create(ctx context.Context, u *domain.AuthUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.byID[u.ID] = &cp
	r.byLogin[u.LoginIdentity] = &cp
	return nil
}
