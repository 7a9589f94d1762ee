package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"membership-backoffice/internal/authn"
	"membership-backoffice/internal/payments/domain"
	"membership-backoffice/internal/payments/repository"
)

// ErrCollectorNotFound means the acting collector name resolves to no active
// backing record. Terminal, never retried: a missing collector row is a data
// integrity problem, not a transient fault.
var ErrCollectorNotFound = errors.New("collector not found")

// ErrInvalidAmount rejects non-positive amounts before anything is persisted.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// MembersCacheKey is the cached member listing invalidated after a payment
// request is created, so subsequent reads reflect the new pending request.
const MembersCacheKey = "members"

// CreatePaymentRequestInput carries a collector's submission. ActingCollectorName
// is the display name of the signed-in collector, resolved to its backing record.
type CreatePaymentRequestInput struct {
	MemberID            string
	MemberNumber        string
	Amount              float64
	PaymentType         domain.PaymentType
	PaymentMethod       domain.PaymentMethod
	ActingCollectorName string
}

// Service creates payment requests on behalf of collectors. Callers are
// responsible for gating on the collector capability before invoking it.
type Service struct {
	collectors repository.CollectorRepository
	requests   repository.PaymentRequestRepository
	cache      authn.Cache
	audit      authn.AuditLogger
}

// NewService wires the payment workflow. cache may be nil (no listing cache
// to invalidate); audit may be nil.
func NewService(collectors repository.CollectorRepository, requests repository.PaymentRequestRepository, cache authn.Cache, audit authn.AuditLogger) *Service {
	if cache == nil {
		cache = authn.NoopCache{}
	}
	return &Service{collectors: collectors, requests: requests, cache: cache, audit: audit}
}

// CreatePaymentRequest resolves the acting collector and persists a pending
// payment request scoped to it. Persistence errors are surfaced raw to the
// caller for display.
func (s *Service) CreatePaymentRequest(ctx context.Context, in CreatePaymentRequestInput) (*domain.PaymentRequest, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	collector, err := s.collectors.GetActiveByName(ctx, in.ActingCollectorName)
	if err != nil {
		return nil, fmt.Errorf("resolve collector: %w", err)
	}
	if collector == nil {
		return nil, ErrCollectorNotFound
	}

	request := &domain.PaymentRequest{
		ID:            uuid.NewString(),
		MemberID:      in.MemberID,
		MemberNumber:  in.MemberNumber,
		Amount:        in.Amount,
		PaymentType:   in.PaymentType,
		PaymentMethod: in.PaymentMethod,
		CollectorID:   collector.ID,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	s.cache.Invalidate(MembersCacheKey)
	if s.audit != nil {
		s.audit.LogEvent(ctx, collector.ID, "payment_request_created", "payment_request", request.ID)
	}
	return request, nil
}

// ListPending returns pending requests for review, newest first.
func (s *Service) ListPending(ctx context.Context, limit, offset int32) ([]*domain.PaymentRequest, error) {
	return s.requests.ListByStatus(ctx, domain.PaymentStatusPending, limit, offset)
}
