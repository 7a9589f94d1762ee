package repository

import (
	"context"

	"membership-backoffice/internal/payments/domain"
)

// CollectorRepository resolves collector backing records.
type CollectorRepository interface {
	// GetActiveByName returns the active collector with the given name, or
	// nil when no active record matches.
	GetActiveByName(ctx context.Context, name string) (*domain.Collector, error)
	GetByID(ctx context.Context, id string) (*domain.Collector, error)
	Create(ctx context.Context, c *domain.Collector) error
}

// PaymentRequestRepository persists payment requests.
type PaymentRequestRepository interface {
	Create(ctx context.Context, p *domain.PaymentRequest) error
	GetByID(ctx context.Context, id string) (*domain.PaymentRequest, error)
	ListByCollector(ctx context.Context, collectorID string, limit, offset int32) ([]*domain.PaymentRequest, error)
	ListByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int32) ([]*domain.PaymentRequest, error)
}
