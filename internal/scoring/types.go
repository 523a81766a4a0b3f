package scoring

import "context"

// #region metric

// Metric names one of the four per-turn quality dimensions.
type Metric string

const (
	MetricCoherence       Metric = "coherence"
	MetricTopicSimilarity Metric = "topic_similarity"
	MetricUncertainty     Metric = "uncertainty"
	MetricReasoningDepth  Metric = "reasoning_depth"
)

// Metrics lists all metrics in evaluation priority order.
var Metrics = []Metric{
	MetricCoherence,
	MetricTopicSimilarity,
	MetricUncertainty,
	MetricReasoningDepth,
}

// #endregion metric

// #region snapshot

// Snapshot holds one turn's metric values. All values are in [0, 1].
// Derived once per turn, never mutated after creation.
type Snapshot struct {
	Coherence       float32
	TopicSimilarity float32
	Uncertainty     float32
	ReasoningDepth  float32
}

// Value returns the named metric's value. Unknown metrics return 0.
func (s Snapshot) Value(m Metric) float32 {
	switch m {
	case MetricCoherence:
		return s.Coherence
	case MetricTopicSimilarity:
		return s.TopicSimilarity
	case MetricUncertainty:
		return s.Uncertainty
	case MetricReasoningDepth:
		return s.ReasoningDepth
	}
	return 0
}

// #endregion snapshot

// #region embedder-interface

// Embedder abstracts an embedding backend so the coherence path can be
// upgraded from lexical overlap to cosine similarity. May be nil.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// #endregion embedder-interface

// #region config

// Config holds tuning knobs for the lexical heuristics.
type Config struct {
	HedgeScale  float32 // multiplier applied to hedge-term density
	MarkerScale float32 // multiplier applied to reasoning-marker density
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HedgeScale:  8.0,
		MarkerScale: 10.0,
	}
}

// #endregion config
