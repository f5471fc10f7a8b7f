package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edgard/recapbot/internal/resilience"
)

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "test",
		MaxFailures:   2,
		ResetInterval: time.Hour,
	})

	failing := errors.New("backend down")
	for range 2 {
		if err := cb.Execute(context.Background(), func(context.Context) error { return failing }); !errors.Is(err, failing) {
			t.Fatalf("Execute() error = %v, want %v", err, failing)
		}
	}

	if cb.State() != resilience.StateOpen {
		t.Fatalf("State() = %v, want %v", cb.State(), resilience.StateOpen)
	}

	called := false
	err := cb.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("operation ran while the circuit was open")
	}
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	t.Parallel()

	errEmpty := errors.New("empty answer")
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "test",
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return !errors.Is(err, errEmpty) },
	})

	for range 3 {
		_ = cb.Execute(context.Background(), func(context.Context) error { return errEmpty })
	}
	if cb.State() != resilience.StateClosed {
		t.Errorf("State() = %v, want %v", cb.State(), resilience.StateClosed)
	}
}
