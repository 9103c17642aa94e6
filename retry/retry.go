// Package retry executes an operation with bounded attempts and a pluggable
// backoff strategy. Both store connection managers use it to dial.
package retry

import (
	"context"
	"errors"
	"time"
)

// Do runs the operation, retrying on failure per the options.
func Do(ctx context.Context, operation func() error, opts ...Option) error {
	_, err := DoWithData(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	}, opts...)
	return err
}

// DoWithData runs the operation and returns its result, retrying on failure.
// On exhaustion the returned error is a *MultiError aggregating every attempt.
func DoWithData[T any](ctx context.Context, operation func() (T, error), opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var result T
	var errs []error

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var err error
		result, err = operation()
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)

		if !cfg.condition.ShouldRetry(err, attempt) || attempt == cfg.maxAttempts {
			return result, &MultiError{Errors: errs, Attempts: attempt}
		}

		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err)
		}

		backoff := cfg.backoff.Next(attempt)

		// stop early when the context deadline cannot outlast the wait
		if deadline, ok := ctx.Deadline(); ok {
			if time.Until(deadline) < backoff {
				errs = append(errs, context.DeadlineExceeded)
				return result, &MultiError{Errors: errs, Attempts: attempt}
			}
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	return result, &MultiError{Errors: errs, Attempts: cfg.maxAttempts}
}

// Attempts reports how many attempts a failed Do/DoWithData made.
func Attempts(err error) int {
	var multi *MultiError
	if errors.As(err, &multi) {
		return multi.Attempts
	}
	return 0
}
