// Package retry implements the worker's connect-time backoff policy: up
// to 4 attempts, waiting 2^(attempt-1) seconds between them.
package retry

import (
	"context"
	"time"
)

// MaxAttempts is the number of attempts made before giving up.
const MaxAttempts = 4

// Backoff computes the delay before the given attempt (1-indexed).
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

// Connect retries fn up to MaxAttempts times, sleeping Backoff(attempt)
// between tries. Returns the last error if every attempt fails, or nil
// immediately on success. Honors ctx cancellation during the sleep.
func Connect(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := fn(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == MaxAttempts {
			break
		}

		timer := time.NewTimer(Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
