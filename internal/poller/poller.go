// Package poller implements the generic deadline-bounded polling loop used to
// drive asynchronous provider jobs to a terminal state.
package poller

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a job fails to reach a terminal state before
// the configured deadline. Callers wrap it with a provider-specific message.
var ErrTimeout = errors.New("polling deadline exceeded")

// Fetch retrieves the current job snapshot. done reports whether the job has
// reached a terminal state; a Failed terminal state must be returned as err
// by the fetch itself so the loop stops either way.
type Fetch[T any] func(ctx context.Context) (value T, done bool, err error)

// Wait drives fetch until it reports done, fails, or the deadline elapses.
// The deadline is absolute, computed once at entry. A job that is already
// terminal on the first fetch returns without sleeping.
func Wait[T any](ctx context.Context, interval, timeout time.Duration, fetch Fetch[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for {
		value, done, err := fetch(ctx)
		if err != nil {
			return zero, err
		}
		if done {
			return value, nil
		}
		if time.Now().After(deadline) {
			return zero, ErrTimeout
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
