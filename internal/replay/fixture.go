package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture. Optional
// sections override the pipeline defaults.
type Fixture struct {
	Description string               `json:"description"`
	Goal        string               `json:"goal"`
	Window      *FixtureWindow       `json:"window,omitempty"`
	Thresholds  *FixtureThresholds   `json:"thresholds,omitempty"`
	Scoring     *FixtureScoring      `json:"scoring,omitempty"`
	Categories  map[string]string    `json:"categories,omitempty"`
	Templates   map[string]string    `json:"templates,omitempty"`
	Turns       []FixtureTurn        `json:"turns"`
	Expected    []FixtureExpectation `json:"expected"`
}

// FixtureWindow mirrors tracker.Config plus the trend bias, with JSON tags.
type FixtureWindow struct {
	Capacity  int     `json:"capacity"`
	Epsilon   float32 `json:"epsilon"`
	TrendBias float32 `json:"trend_bias"`
}

// FixtureThresholds mirrors trigger.ThresholdSet with JSON tags.
type FixtureThresholds struct {
	Coherence       float32 `json:"coherence"`
	TopicSimilarity float32 `json:"topic_similarity"`
	Uncertainty     float32 `json:"uncertainty"`
	ReasoningDepth  float32 `json:"reasoning_depth"`
}

// FixtureScoring mirrors scoring.Config with JSON tags.
type FixtureScoring struct {
	HedgeScale  float32 `json:"hedge_scale"`
	MarkerScale float32 `json:"marker_scale"`
}

// FixtureTurn is one recorded turn.
type FixtureTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// FixtureExpectation captures the expected trigger outcome per turn.
type FixtureExpectation struct {
	Index             int      `json:"index"`
	Fired             []string `json:"fired"`
	DirectiveCategory string   `json:"directive_category"` // "" = undirected
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToReplayConfig converts the fixture's override sections to a ReplayConfig,
// layering them over the defaults.
func (f *Fixture) ToReplayConfig() (ReplayConfig, error) {
	config := DefaultReplayConfig()
	config.Goal = f.Goal
	if f.Window != nil {
		config.Tracker.Capacity = f.Window.Capacity
		config.Tracker.Epsilon = f.Window.Epsilon
		config.TrendBias = f.Window.TrendBias
	}
	if f.Thresholds != nil {
		config.Thresholds = trigger.ThresholdSet{
			Coherence:       f.Thresholds.Coherence,
			TopicSimilarity: f.Thresholds.TopicSimilarity,
			Uncertainty:     f.Thresholds.Uncertainty,
			ReasoningDepth:  f.Thresholds.ReasoningDepth,
		}
		if err := config.Thresholds.Validate(); err != nil {
			return config, fmt.Errorf("fixture thresholds: %w", err)
		}
	}
	if f.Scoring != nil {
		config.Scoring = scoring.Config{
			HedgeScale:  f.Scoring.HedgeScale,
			MarkerScale: f.Scoring.MarkerScale,
		}
	}
	for metricName, categoryName := range f.Categories {
		category, err := trigger.ParseCategory(categoryName)
		if err != nil {
			return config, fmt.Errorf("fixture categories: %w", err)
		}
		found := false
		for _, m := range scoring.Metrics {
			if string(m) == metricName {
				config.Categories[m] = category
				found = true
				break
			}
		}
		if !found {
			return config, fmt.Errorf("fixture categories: unknown metric %q", metricName)
		}
	}
	if len(f.Templates) > 0 {
		config.Templates = make(map[trigger.Category]string, len(f.Templates))
		for categoryName, text := range f.Templates {
			category, err := trigger.ParseCategory(categoryName)
			if err != nil {
				return config, fmt.Errorf("fixture templates: %w", err)
			}
			config.Templates[category] = text
		}
	}
	return config, nil
}

// Interactions converts the fixture's turns to replay interactions.
func (f *Fixture) Interactions() []Interaction {
	interactions := make([]Interaction, len(f.Turns))
	for i, turn := range f.Turns {
		interactions[i] = Interaction{
			Role: conversation.Role(turn.Role),
			Text: turn.Text,
		}
	}
	return interactions
}

// #endregion fixture-loader

// #region verify

// Mismatch describes one divergence between a replay run and a fixture's
// expectations.
type Mismatch struct {
	Index  int
	Reason string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("turn %d: %s", m.Index, m.Reason)
}

// Verify compares results against the fixture's expectations. Expectations
// index into the results; turns without an expectation are not checked.
func (f *Fixture) Verify(results []ReplayResult) []Mismatch {
	var mismatches []Mismatch
	for _, expected := range f.Expected {
		if expected.Index < 0 || expected.Index >= len(results) {
			mismatches = append(mismatches, Mismatch{
				Index:  expected.Index,
				Reason: fmt.Sprintf("no result at index %d (have %d turns)", expected.Index, len(results)),
			})
			continue
		}
		actual := results[expected.Index]
		if !sameCategories(expected.Fired, actual.Fired) {
			mismatches = append(mismatches, Mismatch{
				Index:  expected.Index,
				Reason: fmt.Sprintf("fired %v, want %v", actual.Fired, expected.Fired),
			})
		}
		if string(actual.DirectiveCategory) != expected.DirectiveCategory {
			mismatches = append(mismatches, Mismatch{
				Index:  expected.Index,
				Reason: fmt.Sprintf("directive category %q, want %q", actual.DirectiveCategory, expected.DirectiveCategory),
			})
		}
	}
	return mismatches
}

func sameCategories(want []string, got []trigger.Category) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != string(got[i]) {
			return false
		}
	}
	return true
}

// #endregion verify
