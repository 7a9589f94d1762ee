package service

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how often the registry scans for evictable stores.
const sweepEvery = time.Minute

// Registry hands out one Store per subject so every server-side capability
// check goes through the synchronizer's caching, retry, and fail-closed
// behavior rather than hitting the role repository directly. Stores unused
// past the retention window are evicted.
type Registry struct {
	repo  RoleLister
	clock func() time.Time
	sleep func(context.Context, time.Duration) error

	mu     sync.Mutex
	stores map[string]*Store
	swept  time.Time
}

func NewRegistry(repo RoleLister) *Registry {
	return &Registry{
		repo:   repo,
		clock:  time.Now,
		stores: make(map[string]*Store),
	}
}

// WithClock replaces the clock used by the registry and the stores it
// creates. For tests.
func (r *Registry) WithClock(clock func() time.Time) *Registry {
	r.clock = clock
	return r
}

// WithSleep replaces the retry sleeper of stores the registry creates. For
// tests.
func (r *Registry) WithSleep(sleep func(context.Context, time.Duration) error) *Registry {
	r.sleep = sleep
	return r
}

// For returns the subject's store, creating it on first use.
func (r *Registry) For(subjectID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	st, ok := r.stores[subjectID]
	if !ok {
		st = NewStore(r.repo).WithClock(r.clock)
		if r.sleep != nil {
			st = st.WithSleep(r.sleep)
		}
		r.stores[subjectID] = st
	}
	return st
}

// Resolve syncs roles for the subject, served from cache when fresh, and
// returns the published snapshot. Fetch failures fail closed inside the
// store, so the snapshot is always usable for gating.
func (r *Registry) Resolve(ctx context.Context, subjectID string) Snapshot {
	st := r.For(subjectID)
	_ = st.Sync(ctx, subjectID)
	return st.Snapshot()
}

// Invalidate marks every subject's held value stale; each subject's next
// check refetches. Used when a role-table change notification arrives,
// since the notification does not say whose rows changed.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.stores {
		st.Invalidate()
	}
}

// DropAll clears and removes every subject's store. Used on auth events
// that carry no subject, like a sign-out.
func (r *Registry) DropAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, st := range r.stores {
		st.Clear()
		delete(r.stores, id)
	}
}

func (r *Registry) sweepLocked() {
	now := r.clock()
	if now.Sub(r.swept) < sweepEvery {
		return
	}
	r.swept = now
	for id, st := range r.stores {
		st.mu.Lock()
		evict := !st.lastUsed.IsZero() && now.Sub(st.lastUsed) > retainFor
		st.mu.Unlock()
		if evict {
			delete(r.stores, id)
		}
	}
}
