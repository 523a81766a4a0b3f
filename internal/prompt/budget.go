package prompt

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// #region token-counter

// TokenCounter estimates the token cost of a text fragment.
type TokenCounter interface {
	Count(text string) int
}

// #endregion token-counter

// #region tiktoken

// tiktokenCounter counts with a real BPE encoding.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter returns a counter backed by the named encoding
// (e.g. "cl100k_base"). Callers should fall back to EstimateCounter when
// the encoding cannot be loaded.
func NewTiktokenCounter(encoding string) (TokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &tiktokenCounter{enc: enc}, nil
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// #endregion tiktoken

// #region estimate

// EstimateCounter approximates tokens as runes/4. Good enough for history
// trimming when no encoding is available.
type EstimateCounter struct{}

func (EstimateCounter) Count(text string) int {
	n := len([]rune(text)) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// #endregion estimate
