package repository

import (
	"context"

	"membership-backoffice/internal/member/domain"
)

// Repository defines persistence for members.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	// GetActiveByNumber returns the active member with the given normalized
	// member number, or nil when no active record matches. Inactive and
	// pending records are treated as absent.
	GetActiveByNumber(ctx context.Context, memberNumber string) (*domain.Member, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.Member, error)
	Create(ctx context.Context, m *domain.Member) error
	Update(ctx context.Context, m *domain.Member) error
}
