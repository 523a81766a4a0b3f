package scoring

import (
	"context"
	"math"
	"strings"
)

// neutralScore is the defined fallback for metrics that cannot be computed
// (empty turn text, no prior turn, empty goal).
const neutralScore = 0.5

// #region scorer

// Scorer computes per-turn metric snapshots from raw text.
// Pure function of its inputs; scoring the same text twice with the same
// prior context yields identical snapshots.
type Scorer struct {
	embedder Embedder
	config   Config
}

// NewScorer creates a Scorer. embedder may be nil (coherence stays lexical).
func NewScorer(embedder Embedder, config Config) *Scorer {
	return &Scorer{embedder: embedder, config: config}
}

// #endregion scorer

// #region score

// Score computes all four metrics for a turn. priorText is the immediately
// preceding turn's text ("" for the opening turn); goalText is the stated
// conversation goal. Empty turn text scores neutral on every metric.
func (s *Scorer) Score(ctx context.Context, turnText, priorText, goalText string) Snapshot {
	trimmed := strings.TrimSpace(turnText)
	if trimmed == "" {
		return Snapshot{
			Coherence:       neutralScore,
			TopicSimilarity: neutralScore,
			Uncertainty:     neutralScore,
			ReasoningDepth:  neutralScore,
		}
	}

	return Snapshot{
		Coherence:       s.coherence(ctx, trimmed, strings.TrimSpace(priorText)),
		TopicSimilarity: s.topicSimilarity(trimmed, strings.TrimSpace(goalText)),
		Uncertainty:     s.uncertainty(trimmed),
		ReasoningDepth:  s.reasoningDepth(trimmed),
	}
}

// #endregion score

// #region coherence

// coherence scores lexical (or embedding) similarity between this turn and
// the preceding one. Returns exactly the neutral midpoint when there is no
// prior turn to compare against.
func (s *Scorer) coherence(ctx context.Context, turnText, priorText string) float32 {
	if priorText == "" {
		return neutralScore
	}

	if s.embedder != nil {
		if score, ok := s.embeddingSimilarity(ctx, turnText, priorText); ok {
			return score
		}
		// Embed failure degrades to the lexical path, never to an error.
	}

	a := tokenize(turnText)
	b := tokenize(priorText)
	if len(a) == 0 || len(b) == 0 {
		return neutralScore
	}
	shared := sharedTokens(a, b)
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return clamp(float32(shared) / float32(smaller))
}

func (s *Scorer) embeddingSimilarity(ctx context.Context, turnText, priorText string) (float32, bool) {
	turnEmb, err := s.embedder.Embed(ctx, turnText)
	if err != nil {
		return 0, false
	}
	priorEmb, err := s.embedder.Embed(ctx, priorText)
	if err != nil {
		return 0, false
	}
	return clamp(cosineSimilarity(turnEmb, priorEmb)), true
}

// #endregion coherence

// #region topic-similarity

// topicSimilarity scores token overlap between the turn and the goal text.
func (s *Scorer) topicSimilarity(turnText, goalText string) float32 {
	goal := tokenize(goalText)
	if len(goal) == 0 {
		return neutralScore
	}
	turn := tokenize(turnText)
	if len(turn) == 0 {
		return neutralScore
	}
	shared := sharedTokens(goal, turn)
	return clamp(float32(shared) / float32(len(goal)))
}

// #endregion topic-similarity

// #region uncertainty

// uncertainty scores hedging-language density, normalized to [0, 1].
func (s *Scorer) uncertainty(turnText string) float32 {
	lower := strings.ToLower(turnText)
	words := len(strings.Fields(lower))
	if words == 0 {
		return neutralScore
	}
	hits := phraseCount(lower, hedgeTerms)
	density := float32(hits) / float32(words)
	return clamp(density * s.config.HedgeScale)
}

// #endregion uncertainty

// #region reasoning-depth

// reasoningDepth scores structural-marker density, normalized to [0, 1].
func (s *Scorer) reasoningDepth(turnText string) float32 {
	lower := strings.ToLower(turnText)
	words := len(strings.Fields(lower))
	if words == 0 {
		return neutralScore
	}
	hits := phraseCount(lower, reasoningMarkers)
	density := float32(hits) / float32(words)
	return clamp(density * s.config.MarkerScale)
}

// #endregion reasoning-depth

// #region helpers

// cosineSimilarity computes cosine similarity between two vectors.
// Returns 0 for zero-length or mismatched vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}

// clamp restricts v to [0, 1].
func clamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
