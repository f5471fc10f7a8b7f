package ai

import (
	"context"
	"errors"

	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/internal/resilience"
)

// Breaker runs a generator behind a circuit breaker so that a failing
// backend is not hammered by every incoming event.
type Breaker struct {
	next Generator
	cb   *resilience.CircuitBreaker
}

// NewBreaker wraps next with cb.
func NewBreaker(next Generator, cb *resilience.CircuitBreaker) *Breaker {
	return &Breaker{next: next, cb: cb}
}

// CountsAsOutage reports whether err indicates an unhealthy backend.
// Blocked or empty answers do not.
func CountsAsOutage(err error) bool {
	return !errors.Is(err, ErrNoAnswer) && !errors.Is(err, context.Canceled)
}

func (b *Breaker) Generate(ctx context.Context, req Request) (string, error) {
	var out string
	err := b.cb.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = b.next.Generate(ctx, req)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", errs.NewBackendError("backend temporarily unavailable", err)
	}
	return out, err
}
