// Package retry provides bounded retry with fixed backoff for transient
// upstream failures. External API calls are the dominant failure source in
// the pipeline, so every HTTP client funnels requests through Do.
package retry

import (
	"context"
	"time"
)

// Do calls fn up to attempts times, sleeping delay between tries. It returns
// nil on the first success, the last error once attempts are exhausted, or
// the context error if ctx is cancelled while waiting.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
