package client

import (
	"context"
	"errors"
)

// ErrScriptExhausted is returned once a Scripted generator has replayed all
// of its canned replies.
var ErrScriptExhausted = errors.New("scripted generator: no replies left")

// #region scripted

// Scripted replays a fixed sequence of turn texts. Used by tests, fixture
// replays, and offline runs. Not safe for concurrent use; each conversation
// gets its own instance.
type Scripted struct {
	replies []string
	next    int
}

// NewScripted creates a generator that returns replies in order.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

// GenerateTurn returns the next canned reply, or ErrScriptExhausted.
func (s *Scripted) GenerateTurn(ctx context.Context, _ Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.replies) {
		return "", ErrScriptExhausted
	}
	reply := s.replies[s.next]
	s.next++
	return reply, nil
}

// Remaining reports how many canned replies are left.
func (s *Scripted) Remaining() int {
	return len(s.replies) - s.next
}

// #endregion scripted
