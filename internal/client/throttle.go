package client

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// #region throttled

// Throttled enforces a minimum delay between generation requests, keeping
// the loop polite toward rate-limited endpoints.
type Throttled struct {
	inner   Generator
	limiter *rate.Limiter
}

// NewThrottled wraps inner with a minimum inter-request delay. A
// non-positive delay disables throttling.
func NewThrottled(inner Generator, minDelay time.Duration) *Throttled {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if minDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(minDelay), 1)
	}
	return &Throttled{inner: inner, limiter: limiter}
}

// GenerateTurn waits for the limiter, then delegates.
func (t *Throttled) GenerateTurn(ctx context.Context, req Request) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("throttle wait: %w", err)
	}
	return t.inner.GenerateTurn(ctx, req)
}

// #endregion throttled
