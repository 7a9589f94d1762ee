package service

import (
	"context"
	"sync"
	"time"

	"membership-backoffice/internal/retry"
	"membership-backoffice/internal/roles/domain"
)

const (
	// freshFor is how long a successful fetch is served without refetching.
	freshFor = 15 * time.Minute
	// retainFor is how long a value is kept after last use before it is
	// dropped entirely.
	retainFor = 30 * time.Minute
)

// RoleLister is the minimal role repository needed by the synchronizer.
type RoleLister interface {
	ListRolesForSubject(ctx context.Context, subjectID string) ([]domain.Role, error)
}

// Snapshot is the synchronizer's published state: the role set, the primary
// role, and the derived permissions, replaced atomically so no reader sees a
// partial update.
type Snapshot struct {
	SubjectID   string
	Roles       []domain.Role
	Primary     domain.Role
	Permissions domain.PermissionSet
	// Loaded is true once the first resolution for the subject completed,
	// successfully or by fail-closed default. The access gate waits on it.
	Loaded bool
	// Err is the last fetch failure, kept for display. A recorded error with
	// Loaded still true means a stale-but-good value is being served.
	Err error
}

// HasRole consults the full role set, not the primary role.
func (s Snapshot) HasRole(r domain.Role) bool {
	return domain.HasRole(s.Roles, r)
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store fetches role assignments for the current subject and republishes
// {roles, primary, permissions} into a single shared value. It is the sole
// mutator of that value; everything else reads.
type Store struct {
	repo   RoleLister
	policy retry.Policy
	clock  func() time.Time

	mu        sync.Mutex
	snap      Snapshot
	fetchedAt time.Time
	lastUsed  time.Time
	// good is true once a successful fetch has completed for the current
	// subject. It survives later refresh failures, unlike snap.Err, so the
	// kept value is recognized as good however many refreshes fail in a row.
	good   bool
	subs   []subscriber
	nextID int
}

// NewStore returns a Store with the standard retry policy: 2 attempts,
// linear backoff capped at 3s, transient faults only.
func NewStore(repo RoleLister) *Store {
	return &Store{
		repo: repo,
		policy: retry.Policy{
			MaxAttempts: 2,
			Backoff:     retry.Linear(1000*time.Millisecond, 3000*time.Millisecond),
			Retryable:   retry.IsTransient,
		},
		clock: time.Now,
	}
}

// WithClock replaces the store's clock. For tests.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

// WithSleep replaces the retry sleeper. For tests.
func (s *Store) WithSleep(sleep func(context.Context, time.Duration) error) *Store {
	s.policy.Sleep = sleep
	return s
}

// Snapshot returns the current published value and marks it used for
// retention accounting.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.clock()
	return s.snap
}

// Subscribe registers fn for synchronous notification on every published
// change, in registration order. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) publishLocked(snap Snapshot) {
	s.snap = snap
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn(snap)
	}
	s.mu.Lock()
}

// Invalidate marks the held value stale so the next Sync refetches even
// inside the freshness window. Used when a role-change notification arrives.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchedAt = time.Time{}
}

// Clear drops the published value, used when the session is cleared.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(Snapshot{})
	s.fetchedAt = time.Time{}
	s.good = false
}

// Sync fetches and publishes roles for subjectID. No session means no fetch:
// an empty subject is a no-op. A fresh cached value short-circuits; a
// stale-but-retained value stays published while the refetch runs. The result
// of a fetch is discarded when the current subject no longer matches the one
// it was issued for, so an old in-flight fetch never overwrites fresher data.
func (s *Store) Sync(ctx context.Context, subjectID string) error {
	if subjectID == "" {
		return nil
	}

	s.mu.Lock()
	now := s.clock()
	if s.snap.SubjectID == subjectID && s.snap.Loaded {
		if !s.lastUsed.IsZero() && now.Sub(s.lastUsed) > retainFor {
			// Retention expired: drop the value and refetch from scratch.
			s.publishLocked(Snapshot{SubjectID: subjectID})
			s.good = false
		} else if s.snap.Err == nil && now.Sub(s.fetchedAt) < freshFor {
			s.mu.Unlock()
			return nil
		}
	}
	if s.snap.SubjectID != subjectID {
		// Subject changed: the previous subject's value must not leak.
		s.publishLocked(Snapshot{SubjectID: subjectID})
		s.fetchedAt = time.Time{}
		s.good = false
	}
	s.lastUsed = now
	s.mu.Unlock()

	issuedFor := subjectID
	var fetched []domain.Role
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		roles, ferr := s.repo.ListRolesForSubject(ctx, issuedFor)
		if ferr != nil {
			return ferr
		}
		fetched = roles
		return nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.SubjectID != issuedFor {
		// The session moved on while this fetch was in flight. Discard.
		return nil
	}
	if err != nil {
		if s.good {
			// Keep the previously-good value; only record the failure.
			snap := s.snap
			snap.Err = err
			s.publishLocked(snap)
			return err
		}
		// No prior value: fail closed to the member-only default, never
		// open to elevated permissions.
		defaulted := domain.DefaultRoles()
		s.publishLocked(Snapshot{
			SubjectID:   issuedFor,
			Roles:       defaulted,
			Primary:     domain.PrimaryRole(defaulted),
			Permissions: domain.PermissionsFor(defaulted),
			Loaded:      true,
			Err:         err,
		})
		return err
	}

	s.fetchedAt = s.clock()
	s.good = true
	s.publishLocked(Snapshot{
		SubjectID:   issuedFor,
		Roles:       fetched,
		Primary:     domain.PrimaryRole(fetched),
		Permissions: domain.PermissionsFor(fetched),
		Loaded:      true,
	})
	return nil
}
