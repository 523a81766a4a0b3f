// Package client defines the model-client abstraction the controller
// consumes. Concrete transports to vendor endpoints live outside this
// repository; the controller only sees the Generator interface.
package client

import (
	"context"

	"github.com/danielpatrickdp/duologue/internal/conversation"
)

// #region request

// Request carries everything a participant needs to produce its next turn.
type Request struct {
	Prompt            string              // content prompt for this turn
	SystemInstruction string              // running instruction, directive already attached
	History           []conversation.Turn // prior turns, oldest first
	Role              conversation.Role   // role the participant plays
}

// #endregion request

// #region generator-interface

// Generator abstracts "produce the next turn". Implementations own their
// transport, timeouts, and vendor quirks.
type Generator interface {
	GenerateTurn(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to the Generator interface.
type Func func(ctx context.Context, req Request) (string, error)

// GenerateTurn implements Generator.
func (f Func) GenerateTurn(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// #endregion generator-interface
