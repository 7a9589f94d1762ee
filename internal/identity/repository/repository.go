package repository

import (
	"context"

	"membership-backoffice/internal/identity/domain"
)

// Repository defines persistence for auth users.
type Repository interface {
	GetByLoginIdentity(ctx context.Context, loginIdentity string) (*domain.AuthUser, error)
	GetByID(ctx context.Context, id string) (*domain.AuthUser, error)
	Create(ctx context.Context, u *domain.AuthUser) error
}
