package repository

import (
	"context"
	"sort"
	"sync"

	"membership-backoffice/internal/payments/domain"
)

// MemoryCollectorRepository is an in-memory collector store for tests and seeding.
type MemoryCollectorRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.Collector
}

func NewMemoryCollectorRepository() *MemoryCollectorRepository {
	return &MemoryCollectorRepository{byID: map[string]*domain.Collector{}}
}

func (r *MemoryCollectorRepository) GetActiveByName(ctx context.Context, name string) (*domain.Collector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.Name == name && c.Active {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryCollectorRepository) GetByID(ctx context.Context, id string) (*domain.Collector, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryCollectorRepository) Create(ctx context.Context, c *domain.Collector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

// MemoryPaymentRequestRepository is an in-memory payment request store for tests.
type MemoryPaymentRequestRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.PaymentRequest
}

func NewMemoryPaymentRequestRepository() *MemoryPaymentRequestRepository {
	return &MemoryPaymentRequestRepository{byID: map[string]*domain.PaymentRequest{}}
}

func (r *MemoryPaymentRequestRepository) Create(ctx context.Context, p *domain.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *MemoryPaymentRequestRepository) GetByID(ctx context.Context, id string) (*domain.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryPaymentRequestRepository) ListByCollector(ctx context.Context, collectorID string, limit, offset int32) ([]*domain.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.PaymentRequest
	for _, p := range r.byID {
		if p.CollectorID == collectorID {
			cp := *p
			all = append(all, &cp)
		}
	}
	return pagePaymentRequests(all, limit, offset), nil
}

func (r *MemoryPaymentRequestRepository) ListByStatus(ctx context.Context, status domain.PaymentStatus, limit, offset int32) ([]*domain.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.PaymentRequest
	for _, p := range r.byID {
		if p.Status == status {
			cp := *p
			all = append(all, &cp)
		}
	}
	return pagePaymentRequests(all, limit, offset), nil
}

func pagePaymentRequests(all []*domain.PaymentRequest, limit, offset int32) []*domain.PaymentRequest {
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= int32(len(all)) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && int32(len(all)) > limit {
		all = all[:limit]
	}
	return all
}
