package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
)

// DefaultAttempts is the number of tries the retry helper makes by default.
const DefaultAttempts = 3

// ErrExhaustedRetries is wrapped by the terminal error once every attempt failed.
var ErrExhaustedRetries = errors.New("retry attempts exhausted")

// RetryConfig configures Retry.
type RetryConfig struct {
	// Attempts is the total number of tries. Zero means DefaultAttempts.
	Attempts uint
	// OnRetry runs after every failed attempt that will be retried, with the
	// zero-based attempt number. Use it to refresh stale references.
	OnRetry func(attempt uint, err error)
}

// Permanent marks err as not worth retrying. Retry returns it immediately.
func Permanent(err error) error {
	return retry.Unrecoverable(err)
}

// Retry invokes fn until it succeeds or the attempts are used up, with no
// delay between tries. When every attempt fails the returned error wraps
// both ErrExhaustedRetries and the last failure.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = DefaultAttempts
	}

	var calls uint
	var permanent bool
	result, err := retry.DoWithData(
		func() (T, error) {
			calls++
			v, err := fn(ctx)
			if err != nil && !retry.IsRecoverable(err) {
				permanent = true
			}
			return v, err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if cfg.OnRetry != nil && n+1 < attempts && retry.IsRecoverable(err) {
				cfg.OnRetry(n, err)
			}
		}),
	)
	if err == nil {
		return result, nil
	}

	var zero T
	if permanent || ctx.Err() != nil || calls < attempts {
		return zero, err
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhaustedRetries, calls, err)
}
