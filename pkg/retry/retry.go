// Package retry re-runs operations that fail with transient errors.
//
// Only errors marked with [Retryable] are retried; anything else is
// returned at once. Callers decide what counts as transient:
//
//	err := retry.Do(ctx, retry.Default, func() error {
//	    if err := client.Ping(ctx).Err(); err != nil {
//	        return retry.Retryable(err)
//	    }
//	    return nil
//	})
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy bounds a retry loop. The wait starts at Delay and doubles after
// each failed attempt.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Default makes 3 attempts, waiting 1s and then 2s.
var Default = Policy{Attempts: 3, Delay: time.Second}

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Do runs fn until it succeeds, returns an error that is not retryable, or
// p.Attempts is used up, in which case the last error is returned. It
// returns ctx.Err() if ctx is done while waiting.
func Do(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
