// Package utils holds small helpers shared by the workers.
package utils

import (
	"context"
	"time"
)

// timer is swapped in tests so a long pause can fire immediately.
var timer = time.After

// WaitFor pauses the caller for d. It gives up early with the context error
// once ctx is cancelled or its deadline passes. A non-positive d does not
// pause at all.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	select {
	case <-timer(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Backoff returns the delay before the given 1-based retry attempt. It grows
// linearly from base and never exceeds limit when limit is positive.
func Backoff(base, limit time.Duration, attempt int) time.Duration {
	if attempt < 1 || base <= 0 {
		return 0
	}

	d := base * time.Duration(attempt)
	if limit > 0 && d > limit {
		return limit
	}
	return d
}
