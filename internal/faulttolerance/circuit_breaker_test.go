package faulttolerance

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2, Cooldown: time.Minute, Name: "test"}, newTestLogger())

	failing := func() error { return errTransient }

	_ = cb.Execute(failing)
	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED after one failure, got %s", cb.State())
	}

	_ = cb.Execute(failing)
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after two failures, got %s", cb.State())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitBreakerOpen) {
		t.Errorf("Expected ErrCircuitBreakerOpen, got %v", err)
	}
	if called {
		t.Error("Function should not run while breaker is open")
	}
}

func TestCircuitBreakerHalfOpenTrial(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, Cooldown: time.Minute}, newTestLogger())
	now := time.Now()
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errTransient })
	if cb.State() != StateOpen {
		t.Fatalf("Expected OPEN, got %s", cb.State())
	}

	now = now.Add(2 * time.Minute)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("Expected trial call to succeed, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED after successful trial call, got %s", cb.State())
	}
}

func TestBreakerRecordsOneOutcomePerRetriedCall(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2, Cooldown: time.Hour}, newTestLogger())
	r := NewRetryer(RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, newTestLogger())

	calls := 0
	failing := func(ctx context.Context) error {
		calls++
		return errTransient
	}

	_ = r.ExecuteWithCircuitBreaker(context.Background(), cb, failing)
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED after one exhausted call, got %s", cb.State())
	}

	_ = r.ExecuteWithCircuitBreaker(context.Background(), cb, failing)
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after two exhausted calls, got %s", cb.State())
	}

	calls = 0
	err := r.ExecuteWithCircuitBreaker(context.Background(), cb, failing)
	if calls != 0 {
		t.Errorf("Expected no attempts while open, got %d", calls)
	}
	if !errors.Is(err, ErrCircuitBreakerOpen) {
		t.Errorf("Expected ErrCircuitBreakerOpen, got %v", err)
	}
}

func TestBreakerIgnoresErrorsOutsideIsFailure(t *testing.T) {
	errBlocked := errors.New("blocked")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		Cooldown:    time.Hour,
		IsFailure:   func(err error) bool { return errors.Is(err, errBlocked) },
	}, newTestLogger())

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error { return errTransient })
	}
	if cb.State() != StateClosed {
		t.Errorf("Expected transient errors not to open the breaker, got %s", cb.State())
	}

	_ = cb.Execute(func() error { return errBlocked })
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after a counted failure, got %s", cb.State())
	}
}
