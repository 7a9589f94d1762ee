package repository

import (
	"context"
	"fmt"
	"sync"

	"membership-backoffice/internal/member/domain"
)

// ListCacheKey names the member-listing cache namespace.
const ListCacheKey = "members"

// CachedRepository caches List pages in memory and passes everything else
// through to the wrapped repository. Writes drop the cached pages, as does
// Invalidate(ListCacheKey), which is how change notifications and the payment
// workflow force a refetch.
type CachedRepository struct {
	Repository

	mu    sync.Mutex
	pages map[string][]*domain.Member
}

func NewCachedRepository(inner Repository) *CachedRepository {
	return &CachedRepository{
		Repository: inner,
		pages:      make(map[string][]*domain.Member),
	}
}

func (c *CachedRepository) List(ctx context.Context, limit, offset int32) ([]*domain.Member, error) {
	key := fmt.Sprintf("%d:%d", limit, offset)

	c.mu.Lock()
	page, ok := c.pages[key]
	c.mu.Unlock()
	if ok {
		return copyPage(page), nil
	}

	page, err := c.Repository.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pages[key] = copyPage(page)
	c.mu.Unlock()
	return page, nil
}

func (c *CachedRepository) Create(ctx context.Context, m *domain.Member) error {
	if err := c.Repository.Create(ctx, m); err != nil {
		return err
	}
	c.Clear()
	return nil
}

func (c *CachedRepository) Update(ctx context.Context, m *domain.Member) error {
	if err := c.Repository.Update(ctx, m); err != nil {
		return err
	}
	c.Clear()
	return nil
}

// Clear drops all cached pages.
func (c *CachedRepository) Clear() {
	c.mu.Lock()
	c.pages = make(map[string][]*domain.Member)
	c.mu.Unlock()
}

// Invalidate drops the cached pages when key names the member listing.
// Other keys are not cached here and are ignored.
func (c *CachedRepository) Invalidate(key string) {
	if key == ListCacheKey {
		c.Clear()
	}
}

func copyPage(page []*domain.Member) []*domain.Member {
	out := make([]*domain.Member, len(page))
	for i, m := range page {
		cp := *m
		out[i] = &cp
	}
	return out
}
