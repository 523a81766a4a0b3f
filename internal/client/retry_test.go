package client

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flaky fails a fixed number of times before succeeding.
type flaky struct {
	failures int
	calls    int
}

func (f *flaky) GenerateTurn(_ context.Context, _ Request) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("transient")
	}
	return "ok", nil
}

func TestRetrying_SucceedsAfterTransientFailures(t *testing.T) {
	inner := &flaky{failures: 2}
	r := NewRetrying(inner, RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond}, nil)

	text, err := r.GenerateTurn(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if text != "ok" {
		t.Errorf("got %q, want ok", text)
	}
	if inner.calls != 3 {
		t.Errorf("calls: got %d, want 3", inner.calls)
	}
}

func TestRetrying_ExhaustionIsTerminal(t *testing.T) {
	inner := &flaky{failures: 10}
	r := NewRetrying(inner, RetryConfig{MaxRetries: 1, BaseDelay: time.Millisecond}, nil)

	_, err := r.GenerateTurn(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected terminal failure")
	}
	if inner.calls != 2 {
		t.Errorf("calls: got %d, want 2", inner.calls)
	}
}

func TestRetrying_FirstAttemptNoDelay(t *testing.T) {
	r := NewRetrying(NewScripted("hello"), RetryConfig{MaxRetries: 3, BaseDelay: time.Hour}, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := r.GenerateTurn(context.Background(), Request{}); err != nil {
			t.Error(err)
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("successful first attempt should not wait for backoff")
	}
}

func TestRetrying_ContextCancelDuringBackoff(t *testing.T) {
	inner := &flaky{failures: 10}
	r := NewRetrying(inner, RetryConfig{MaxRetries: 3, BaseDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.GenerateTurn(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestScripted_ReplaysInOrderThenExhausts(t *testing.T) {
	s := NewScripted("one", "two")

	for _, want := range []string{"one", "two"} {
		got, err := s.GenerateTurn(context.Background(), Request{})
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}

	if _, err := s.GenerateTurn(context.Background(), Request{}); !errors.Is(err, ErrScriptExhausted) {
		t.Errorf("got %v, want ErrScriptExhausted", err)
	}
}

func TestThrottled_ZeroDelayPassesThrough(t *testing.T) {
	g := NewThrottled(NewScripted("a", "b"), 0)
	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := g.GenerateTurn(context.Background(), Request{}); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) > time.Second {
		t.Error("unthrottled calls should not block")
	}
}

func TestThrottled_EnforcesMinimumDelay(t *testing.T) {
	g := NewThrottled(NewScripted("a", "b"), 50*time.Millisecond)
	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := g.GenerateTurn(context.Background(), Request{}); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Error("second call should wait for the minimum delay")
	}
}
