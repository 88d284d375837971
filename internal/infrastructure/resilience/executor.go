package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Executor wraps outbound calls (object storage fetches, the speech
// service) with bounded retries and a circuit breaker per operation name.
// Retry policy lives here, next to the collaborator, not in the
// orchestrating use case.
type Executor struct {
	policy Policy

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(policy Policy) *Executor {
	return &Executor{
		policy:   policy.withDefaults(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Do runs fn, retrying with exponential backoff while retryable reports the
// error as transient. A nil retryable means no error is retried. Context
// cancellation stops retries immediately and never counts as a breaker
// failure.
func (e *Executor) Do(
	ctx context.Context,
	operation string,
	retryable func(error) bool,
	fn func(context.Context) error,
) error {
	if retryable == nil {
		retryable = func(error) bool { return false }
	}
	if !e.policy.BreakerEnabled {
		return e.retry(ctx, operation, retryable, fn)
	}

	breaker := e.breakerFor(operation)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.retry(ctx, operation, retryable, fn)
	})
	return err
}

func (e *Executor) retry(
	ctx context.Context,
	operation string,
	retryable func(error) bool,
	fn func(context.Context) error,
) error {
	backoff := e.policy.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || attempt == e.policy.MaxAttempts {
			return lastErr
		}

		slog.Warn("retrying operation",
			"operation", operation,
			"attempt", attempt,
			"backoff", backoff.String(),
			"error", lastErr,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
		backoff *= 2
		if backoff > e.policy.MaxBackoff {
			backoff = e.policy.MaxBackoff
		}
	}
	return lastErr
}

func (e *Executor) breakerFor(operation string) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}

	p := e.policy
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        operation,
		MaxRequests: p.BreakerProbeCalls,
		Timeout:     p.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < p.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= p.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			// A caller that gave up must not push the breaker open.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[operation] = breaker
	return breaker
}

// IsCircuitOpen reports whether err came from an open or saturated breaker
// rather than the wrapped operation itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
