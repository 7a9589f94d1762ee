package service

import (
	"context"
	"errors"
	"time"

	"membership-backoffice/internal/credentials"
	"membership-backoffice/internal/member/domain"
	"membership-backoffice/internal/retry"
)

// Sentinel errors for member verification; the session store maps them to
// user-facing reasons.
var (
	// ErrMemberNotFound means no active member matches the number. Business
	// result, never retried.
	ErrMemberNotFound = errors.New("member not found or inactive")
	// ErrNetwork is surfaced after retries are exhausted on connectivity faults.
	ErrNetwork = errors.New("network error - please check your connection and try again")
)

// MemberLookup is the minimal member repository needed by the verifier.
type MemberLookup interface {
	GetActiveByNumber(ctx context.Context, memberNumber string) (*domain.Member, error)
}

// Verifier confirms a member number maps to an active member record,
// retrying transient lookup faults with bounded backoff.
type Verifier struct {
	repo   MemberLookup
	policy retry.Policy
}

// NewVerifier returns a Verifier over repo with the standard retry policy:
// 3 attempts, backoff attempt×1s, transient faults only.
func NewVerifier(repo MemberLookup) *Verifier {
	return &Verifier{
		repo: repo,
		policy: retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.Linear(1000*time.Millisecond, 0),
			Retryable:   retry.IsTransient,
		},
	}
}

// NewVerifierWithSleep is NewVerifier with an injected sleeper, for tests.
func NewVerifierWithSleep(repo MemberLookup, sleep func(context.Context, time.Duration) error) *Verifier {
	v := NewVerifier(repo)
	v.policy.Sleep = sleep
	return v
}

// Verify returns the active member for memberNumber. A successful lookup with
// no record fails immediately with ErrMemberNotFound; transient faults are
// retried, and once exhausted connectivity-looking errors surface as
// ErrNetwork, anything else as the last raw error.
func (v *Verifier) Verify(ctx context.Context, memberNumber string) (*domain.Member, error) {
	n := credentials.Normalize(memberNumber)
	if n == "" {
		return nil, ErrMemberNotFound
	}
	var member *domain.Member
	err := v.policy.Do(ctx, func(ctx context.Context) error {
		m, err := v.repo.GetActiveByNumber(ctx, n)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMemberNotFound
		}
		member = m
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrMemberNotFound
		}
		if retry.IsTransient(err) {
			return nil, ErrNetwork
		}
		return nil, err
	}
	return member, nil
}
