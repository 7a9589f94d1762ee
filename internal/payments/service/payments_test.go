package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"membership-backoffice/internal/payments/domain"
	"membership-backoffice/internal/payments/repository"
)

type recordingCache struct {
	cleared     int
	invalidated []string
}

func (c *recordingCache) Clear()                { c.cleared++ }
func (c *recordingCache) Invalidate(key string) { c.invalidated = append(c.invalidated, key) }

func seedCollector(t *testing.T, repo repository.CollectorRepository, name string, active bool) *domain.Collector {
	t.Helper()
	c := &domain.Collector{
		ID: "col-" + name, Name: name, MemberNumber: "TM20002",
		Active: active, CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("seed collector: %v", err)
	}
	return c
}

func validInput() CreatePaymentRequestInput {
	return CreatePaymentRequestInput{
		MemberID:            "member-1",
		MemberNumber:        "TM20001",
		Amount:              25.00,
		PaymentType:         domain.PaymentTypeYearly,
		PaymentMethod:       domain.PaymentMethodCash,
		ActingCollectorName: "Priya Raman",
	}
}

func TestCreatePaymentRequest(t *testing.T) {
	collectors := repository.NewMemoryCollectorRepository()
	requests := repository.NewMemoryPaymentRequestRepository()
	col := seedCollector(t, collectors, "Priya Raman", true)
	cache := &recordingCache{}
	svc := NewService(collectors, requests, cache, nil)

	created, err := svc.CreatePaymentRequest(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreatePaymentRequest: %v", err)
	}
	if created.Status != domain.PaymentStatusPending {
		t.Errorf("status = %s, want pending", created.Status)
	}
	if created.CollectorID != col.ID {
		t.Errorf("collector id = %s, want %s", created.CollectorID, col.ID)
	}
	if created.ID == "" {
		t.Error("id not assigned")
	}

	stored, err := requests.GetByID(context.Background(), created.ID)
	if err != nil || stored == nil {
		t.Fatalf("request not persisted: %v", err)
	}
	if stored.Amount != 25.00 || stored.PaymentType != domain.PaymentTypeYearly || stored.PaymentMethod != domain.PaymentMethodCash {
		t.Errorf("persisted fields wrong: %+v", stored)
	}

	if len(cache.invalidated) != 1 || cache.invalidated[0] != MembersCacheKey {
		t.Errorf("members listing not invalidated: %v", cache.invalidated)
	}
}

func TestCollectorRecordCarriesMemberNumber(t *testing.T) {
	collectors := repository.NewMemoryCollectorRepository()
	col := seedCollector(t, collectors, "Priya Raman", true)

	stored, err := collectors.GetByID(context.Background(), col.ID)
	if err != nil || stored == nil {
		t.Fatalf("collector not persisted: %v", err)
	}
	if stored.MemberNumber != "TM20002" {
		t.Errorf("member number = %q, want TM20002", stored.MemberNumber)
	}
	byName, err := collectors.GetActiveByName(context.Background(), "Priya Raman")
	if err != nil || byName == nil {
		t.Fatalf("collector not found by name: %v", err)
	}
	if byName.MemberNumber != stored.MemberNumber {
		t.Errorf("member number lost on name lookup: %q", byName.MemberNumber)
	}
}

func TestCreatePaymentRequest_RejectsNonPositiveAmount(t *testing.T) {
	collectors := repository.NewMemoryCollectorRepository()
	requests := repository.NewMemoryPaymentRequestRepository()
	seedCollector(t, collectors, "Priya Raman", true)
	svc := NewService(collectors, requests, nil, nil)

	for _, amount := range []float64{0, -25.00} {
		in := validInput()
		in.Amount = amount
		if _, err := svc.CreatePaymentRequest(context.Background(), in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %v: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
	pending, _ := requests.ListByStatus(context.Background(), domain.PaymentStatusPending, 10, 0)
	if len(pending) != 0 {
		t.Error("rejected request must not reach persistence")
	}
}

func TestCreatePaymentRequest_CollectorNotFound(t *testing.T) {
	collectors := repository.NewMemoryCollectorRepository()
	requests := repository.NewMemoryPaymentRequestRepository()
	seedCollector(t, collectors, "Inactive Collector", false)
	svc := NewService(collectors, requests, nil, nil)

	in := validInput()
	in.ActingCollectorName = "Inactive Collector"
	if _, err := svc.CreatePaymentRequest(context.Background(), in); !errors.Is(err, ErrCollectorNotFound) {
		t.Errorf("inactive collector: err = %v, want ErrCollectorNotFound", err)
	}

	in.ActingCollectorName = "No Such Person"
	if _, err := svc.CreatePaymentRequest(context.Background(), in); !errors.Is(err, ErrCollectorNotFound) {
		t.Errorf("unknown collector: err = %v, want ErrCollectorNotFound", err)
	}
}

type failingRequestRepo struct {
	repository.PaymentRequestRepository
	err error
}

func (r *failingRequestRepo) Create(ctx context.Context, p *domain.PaymentRequest) error {
	return r.err
}

func TestCreatePaymentRequest_InsertFailureSurfacedRaw(t *testing.T) {
	collectors := repository.NewMemoryCollectorRepository()
	seedCollector(t, collectors, "Priya Raman", true)
	insertErr := errors.New(`duplicate key value violates unique constraint "payment_requests_pkey"`)
	cache := &recordingCache{}
	svc := NewService(collectors, &failingRequestRepo{err: insertErr}, cache, nil)

	_, err := svc.CreatePaymentRequest(context.Background(), validInput())
	if !errors.Is(err, insertErr) {
		t.Errorf("err = %v, want the raw persistence error", err)
	}
	if len(cache.invalidated) != 0 {
		t.Error("cache must not be invalidated on insert failure")
	}
}
