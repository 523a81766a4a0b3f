// Package trigger decides whether a turn's metrics warrant an intervention
// and which category of corrective prompting it should take.
package trigger

import (
	"fmt"

	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/tracker"
)

// #region category

// Category classifies the degradation an intervention targets.
type Category string

const (
	CategoryRefocus  Category = "refocus"
	CategoryClarify  Category = "clarify"
	CategoryGround   Category = "ground"
	CategoryEvidence Category = "evidence"
	CategoryRedirect Category = "redirect"
	CategoryDeepen   Category = "deepen"
)

// Categories lists all known categories.
var Categories = []Category{
	CategoryRefocus, CategoryClarify, CategoryGround,
	CategoryEvidence, CategoryRedirect, CategoryDeepen,
}

// ParseCategory validates a category name from configuration.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown intervention category %q", s)
}

// #endregion category

// #region thresholds

// ThresholdSet maps each metric to its cutoff. Constant for the lifetime of
// a conversation. Coherence, topic similarity, and reasoning depth fire when
// strictly below their cutoff; uncertainty fires when strictly above.
type ThresholdSet struct {
	Coherence       float32
	TopicSimilarity float32
	Uncertainty     float32
	ReasoningDepth  float32
}

// DefaultThresholds returns sensible defaults.
func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Coherence:       0.3,
		TopicSimilarity: 0.25,
		Uncertainty:     0.6,
		ReasoningDepth:  0.15,
	}
}

func (t ThresholdSet) value(m scoring.Metric) float32 {
	switch m {
	case scoring.MetricCoherence:
		return t.Coherence
	case scoring.MetricTopicSimilarity:
		return t.TopicSimilarity
	case scoring.MetricUncertainty:
		return t.Uncertainty
	case scoring.MetricReasoningDepth:
		return t.ReasoningDepth
	}
	return 0
}

// Validate rejects cutoffs outside [0, 1].
func (t ThresholdSet) Validate() error {
	for _, m := range scoring.Metrics {
		v := t.value(m)
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold for %s out of range: %v", m, v)
		}
	}
	return nil
}

// #endregion thresholds

// #region category-map

// DefaultCategoryMap returns the metric → category mapping used when
// configuration does not override it.
func DefaultCategoryMap() map[scoring.Metric]Category {
	return map[scoring.Metric]Category{
		scoring.MetricCoherence:       CategoryRefocus,
		scoring.MetricTopicSimilarity: CategoryRedirect,
		scoring.MetricUncertainty:     CategoryClarify,
		scoring.MetricReasoningDepth:  CategoryDeepen,
	}
}

// #endregion category-map

// #region firing

// Firing records one breached threshold.
type Firing struct {
	Metric    scoring.Metric
	Category  Category
	Value     float32
	Threshold float32
}

// Result lists every fired category for a turn, in priority order
// (coherence > topic drift > uncertainty > depth). Only the top firing
// produces a directive; the rest are reported for logging.
type Result struct {
	Fired []Firing
}

// Top returns the highest-priority firing, if any.
func (r Result) Top() (Firing, bool) {
	if len(r.Fired) == 0 {
		return Firing{}, false
	}
	return r.Fired[0], true
}

// Categories returns the fired categories in priority order.
func (r Result) Categories() []Category {
	out := make([]Category, len(r.Fired))
	for i, f := range r.Fired {
		out[i] = f.Category
	}
	return out
}

// #endregion firing

// #region evaluator

// Evaluator compares snapshots against a fixed threshold set.
type Evaluator struct {
	thresholds ThresholdSet
	categories map[scoring.Metric]Category
	trendBias  float32
}

// NewEvaluator creates an evaluator. categories may be nil (defaults apply).
// trendBias tightens a metric's effective cutoff while its tracked trend is
// degrading; zero disables the bias.
func NewEvaluator(thresholds ThresholdSet, categories map[scoring.Metric]Category, trendBias float32) *Evaluator {
	if categories == nil {
		categories = DefaultCategoryMap()
	}
	return &Evaluator{
		thresholds: thresholds,
		categories: categories,
		trendBias:  trendBias,
	}
}

// Evaluate reports every category fired by the latest snapshot. trends may
// be nil when no window context is available. A value exactly at its cutoff
// never fires.
func (e *Evaluator) Evaluate(snap scoring.Snapshot, trends map[scoring.Metric]tracker.Trend) Result {
	var fired []Firing
	for _, m := range scoring.Metrics {
		cutoff := e.effectiveThreshold(m, trends)
		value := snap.Value(m)

		breached := value < cutoff
		if m == scoring.MetricUncertainty {
			// Inverted sense: high uncertainty is the undesirable direction.
			breached = value > cutoff
		}
		if !breached {
			continue
		}

		fired = append(fired, Firing{
			Metric:    m,
			Category:  e.categories[m],
			Value:     value,
			Threshold: cutoff,
		})
	}
	return Result{Fired: fired}
}

// effectiveThreshold tightens the cutoff while the metric is degrading.
// Uncertainty is left unbiased: its trend labels track raw value direction,
// so a "degrading" uncertainty trend is a falling (recovering) value.
func (e *Evaluator) effectiveThreshold(m scoring.Metric, trends map[scoring.Metric]tracker.Trend) float32 {
	cutoff := e.thresholds.value(m)
	if e.trendBias == 0 || trends == nil || m == scoring.MetricUncertainty {
		return cutoff
	}
	if trends[m] != tracker.TrendDegrading {
		return cutoff
	}
	return cutoff + e.trendBias
}

// #endregion evaluator
