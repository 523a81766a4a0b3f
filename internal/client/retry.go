package client

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// #region config

// RetryConfig tunes the retrying wrapper.
type RetryConfig struct {
	MaxRetries int           // extra attempts after the first failure
	BaseDelay  time.Duration // backoff grows linearly: base, 2*base, ...
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  5 * time.Second,
	}
}

// #endregion config

// #region retrying

// Retrying wraps a Generator with bounded, progressively backed-off
// retries. Exhausting the retry budget surfaces as a terminal failure for
// the turn; the loop driver ends the conversation on it.
type Retrying struct {
	inner  Generator
	config RetryConfig
	logger *zap.Logger
}

// NewRetrying wraps inner. logger may be nil.
func NewRetrying(inner Generator, config RetryConfig, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{inner: inner, config: config, logger: logger}
}

// GenerateTurn attempts the wrapped generator up to MaxRetries+1 times.
func (r *Retrying) GenerateTurn(ctx context.Context, req Request) (string, error) {
	var lastErr error
	attempts := r.config.MaxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := r.inner.GenerateTurn(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		wait := time.Duration(attempt) * r.config.BaseDelay
		r.logger.Warn("turn generation failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}

	return "", fmt.Errorf("generate turn after %d attempts: %w", attempts, lastErr)
}

// #endregion retrying
