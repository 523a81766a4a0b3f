package client

import (
	"context"
	"time"
)

// #region bounded

// Bounded caps each generation call with a per-call deadline.
type Bounded struct {
	inner   Generator
	timeout time.Duration
}

// NewBounded wraps inner so every call gets its own deadline. A
// non-positive timeout disables the cap.
func NewBounded(inner Generator, timeout time.Duration) *Bounded {
	return &Bounded{inner: inner, timeout: timeout}
}

// GenerateTurn implements Generator.
func (b *Bounded) GenerateTurn(ctx context.Context, req Request) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	return b.inner.GenerateTurn(ctx, req)
}

// #endregion bounded
