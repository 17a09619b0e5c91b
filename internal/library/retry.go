package library

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds how often a failed fetch is retried before the store
// falls back. Delays double per attempt, capped at MaxDelay.
type RetryPolicy struct {
	Retries      int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy retries twice, starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries:      2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	delay := p.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// withRetry runs fetch up to p.Retries+1 times.
func withRetry[V any](ctx context.Context, p RetryPolicy, fetch func(context.Context) (V, error)) (V, error) {
	var zero V
	var lastErr error

	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(p.delay(attempt)):
			}
		}

		v, err := fetch(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	return zero, fmt.Errorf("after %d attempts: %w", p.Retries+1, lastErr)
}
