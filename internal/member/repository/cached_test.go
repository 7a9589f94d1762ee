package repository

import (
	"context"
	"sync"
	"testing"

	"membership-backoffice/internal/member/domain"
)

type countingRepo struct {
	Repository
	mu        sync.Mutex
	listCalls int
}

func (c *countingRepo) List(ctx context.Context, limit, offset int32) ([]*domain.Member, error) {
	c.mu.Lock()
	c.listCalls++
	c.mu.Unlock()
	return c.Repository.List(ctx, limit, offset)
}

func (c *countingRepo) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listCalls
}

func seedMember(t *testing.T, repo Repository, number, name string) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.Member{
		ID:           "m-" + number,
		MemberNumber: number,
		FullName:     name,
		Status:       domain.MemberStatusActive,
	})
	if err != nil {
		t.Fatalf("seed member %s: %v", number, err)
	}
}

func TestCachedList_SecondReadServedFromCache(t *testing.T) {
	inner := &countingRepo{Repository: NewMemoryRepository()}
	seedMember(t, inner, "TM20001", "Arun Pillai")
	cached := NewCachedRepository(inner)

	for i := 0; i < 3; i++ {
		members, err := cached.List(context.Background(), 50, 0)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(members) != 1 {
			t.Fatalf("expected 1 member, got %d", len(members))
		}
	}

	if got := inner.calls(); got != 1 {
		t.Fatalf("expected 1 backing List call, got %d", got)
	}
}

func TestCachedList_InvalidateForcesRefetch(t *testing.T) {
	inner := &countingRepo{Repository: NewMemoryRepository()}
	seedMember(t, inner, "TM20001", "Arun Pillai")
	cached := NewCachedRepository(inner)

	if _, err := cached.List(context.Background(), 50, 0); err != nil {
		t.Fatalf("list: %v", err)
	}
	seedMember(t, inner, "TM20002", "Priya Raman")

	cached.Invalidate("something_else")
	members, err := cached.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("unrelated key must not invalidate, got %d members", len(members))
	}

	cached.Invalidate(ListCacheKey)
	members, err = cached.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected refetched page of 2 members, got %d", len(members))
	}
}

func TestCachedList_WriteThroughDropsPages(t *testing.T) {
	inner := &countingRepo{Repository: NewMemoryRepository()}
	seedMember(t, inner, "TM20001", "Arun Pillai")
	cached := NewCachedRepository(inner)

	if _, err := cached.List(context.Background(), 50, 0); err != nil {
		t.Fatalf("list: %v", err)
	}

	seedMember(t, cached, "TM20002", "Priya Raman")

	members, err := cached.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members after write, got %d", len(members))
	}
}
