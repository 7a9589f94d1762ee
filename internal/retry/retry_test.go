package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"
)

func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	var delays []time.Duration
	p := Policy{MaxAttempts: 3, Backoff: Linear(time.Second, 0), Sleep: recordingSleep(&delays)}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(delays) != 0 {
		t.Errorf("slept %d times, want 0", len(delays))
	}
}

func TestDo_RetriesWithBackoffSchedule(t *testing.T) {
	var delays []time.Duration
	p := Policy{MaxAttempts: 3, Backoff: Linear(time.Second, 0), Sleep: recordingSleep(&delays)}
	calls := 0
	boom := errors.New("boom")
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Do = %v, want boom", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	var delays []time.Duration
	businessErr := errors.New("member not found")
	p := Policy{
		MaxAttempts: 3,
		Backoff:     Linear(time.Second, 0),
		Retryable:   func(err error) bool { return !errors.Is(err, businessErr) },
		Sleep:       recordingSleep(&delays),
	}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return businessErr
	})
	if !errors.Is(err, businessErr) {
		t.Fatalf("Do = %v, want business error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry for business failures)", calls)
	}
	if len(delays) != 0 {
		t.Errorf("slept %d times, want 0", len(delays))
	}
}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	var delays []time.Duration
	p := Policy{MaxAttempts: 3, Backoff: Linear(time.Second, 0), Sleep: recordingSleep(&delays)}
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestLinear_Cap(t *testing.T) {
	b := Linear(time.Second, 3*time.Second)
	if got := b(2); got != 2*time.Second {
		t.Errorf("b(2) = %v, want 2s", got)
	}
	if got := b(5); got != 3*time.Second {
		t.Errorf("b(5) = %v, want cap 3s", got)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("member not found"), false},
		{&net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{fmt.Errorf("query: %w", context.DeadlineExceeded), true},
		{errors.New("dial tcp 127.0.0.1:5432: connection refused"), true},
		{errors.New("read: connection reset by peer"), true},
		{errors.New("Failed to fetch"), true},
	}
	for _, c := range cases {
		if got := IsTransient(c.err); got != c.want {
			t.Errorf("IsTransient(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
