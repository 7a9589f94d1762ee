// Package retry provides the shared bounded-retry policy used by the member
// verifier and the role synchronizer. Business-rule failures are never
// retried; only faults the policy's predicate classifies as transient are.
package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// BackoffFunc returns the delay before the given attempt (1-based). The delay
// before attempt 1 is never consulted; Do sleeps between attempts only.
type BackoffFunc func(attempt int) time.Duration

// Policy is a bounded retry policy. Zero values are not usable; construct with
// explicit fields or the helpers below.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff computes the delay after a failed attempt.
	Backoff BackoffFunc
	// Retryable reports whether the error is worth another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool
	// Sleep is the sleeper used between attempts; nil means time.Sleep
	// honoring context cancellation. Tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Linear returns a backoff of attempt×unit, capped at max when max > 0.
func Linear(unit, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		d := time.Duration(attempt) * unit
		if max > 0 && d > max {
			d = max
		}
		return d
	}
}

// Do runs fn up to MaxAttempts times. It returns nil on the first success,
// the last error once attempts are exhausted, and stops early when Retryable
// rejects the error or the context is done.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		last = fn(ctx)
		if last == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(last) {
			return last
		}
		if attempt == attempts {
			break
		}
		var d time.Duration
		if p.Backoff != nil {
			d = p.Backoff(attempt)
		}
		if err := sleep(ctx, d); err != nil {
			return last
		}
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsTransient reports whether err looks like a connectivity fault: net errors,
// timeouts, and the usual refused/reset/unreachable strings from drivers that
// do not wrap net.Error.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var op *net.OpError
	if errors.As(err, &op) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"failed to fetch",
		"failed to connect",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
