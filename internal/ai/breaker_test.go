package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edgard/recapbot/internal/ai"
	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/internal/resilience"
)

func TestBreaker_OpensOnOutage(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "gemini",
		MaxFailures:   1,
		ResetInterval: time.Hour,
		IsFailure:     ai.CountsAsOutage,
		Logger:        discardLogger(),
	})
	calls := 0
	gen := ai.NewBreaker(ai.GeneratorFunc(func(context.Context, ai.Request) (string, error) {
		calls++
		return "", errors.New("connection refused")
	}), cb)

	_, _ = gen.Generate(context.Background(), ai.Request{Prompt: "x"})
	_, err := gen.Generate(context.Background(), ai.Request{Prompt: "x"})

	if calls != 1 {
		t.Errorf("backend called %d times, want 1", calls)
	}
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	if errs.Code(err) != errs.CodeBackend {
		t.Errorf("error code = %s, want %s", errs.Code(err), errs.CodeBackend)
	}
}

func TestBreaker_EmptyAnswersDoNotTrip(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "gemini",
		MaxFailures: 1,
		IsFailure:   ai.CountsAsOutage,
		Logger:      discardLogger(),
	})
	gen := ai.NewBreaker(ai.GeneratorFunc(func(context.Context, ai.Request) (string, error) {
		return "", errs.NewBackendError("blocked", ai.ErrNoAnswer)
	}), cb)

	for range 3 {
		_, _ = gen.Generate(context.Background(), ai.Request{Prompt: "x"})
	}
	if cb.State() != resilience.StateClosed {
		t.Errorf("State() = %v, want %v", cb.State(), resilience.StateClosed)
	}
}
