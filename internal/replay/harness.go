// Package replay re-runs recorded conversations through the scoring and
// trigger pipeline deterministically, with no generation backends involved.
package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/prompt"
	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/strategy"
	"github.com/danielpatrickdp/duologue/internal/tracker"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region types

// Interaction is a single recorded turn for replay.
type Interaction struct {
	Role conversation.Role
	Text string
}

// ReplayConfig bundles the pipeline settings for a replay run.
type ReplayConfig struct {
	Goal       string
	Tracker    tracker.Config
	Thresholds trigger.ThresholdSet
	TrendBias  float32
	Categories map[scoring.Metric]trigger.Category
	Templates  map[trigger.Category]string
	Scoring    scoring.Config
}

// DefaultReplayConfig returns the pipeline defaults for a replay run.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		Tracker:    tracker.DefaultConfig(),
		Thresholds: trigger.DefaultThresholds(),
		Categories: trigger.DefaultCategoryMap(),
		Scoring:    scoring.DefaultConfig(),
	}
}

// ReplayResult captures the pipeline outcome for one replayed turn.
type ReplayResult struct {
	Index             int
	Role              conversation.Role
	Snapshot          scoring.Snapshot
	Fired             []trigger.Category
	DirectiveCategory trigger.Category // "" when no directive was issued
	DirectiveText     string
}

// #endregion types

// #region replay

// Replay scores each interaction against its predecessor, derives trends over
// the rolling window, and evaluates triggers per turn. Replay always runs the
// lexical coherence path so results are reproducible across machines.
func Replay(interactions []Interaction, config ReplayConfig) ([]ReplayResult, error) {
	selector, err := strategy.NewSelector(config.Templates)
	if err != nil {
		return nil, fmt.Errorf("replay templates: %w", err)
	}

	scorer := scoring.NewScorer(nil, config.Scoring)
	window := tracker.NewWindow(config.Tracker)
	evaluator := trigger.NewEvaluator(config.Thresholds, config.Categories, config.TrendBias)
	topic := prompt.ExtractTopic(config.Goal)

	ctx := context.Background()
	results := make([]ReplayResult, 0, len(interactions))
	prior := ""
	for i, inter := range interactions {
		snap := scorer.Score(ctx, inter.Text, prior, config.Goal)
		window.Record(snap)
		// Evaluation starts at the second turn, matching the live loop.
		var outcome trigger.Result
		if i > 0 {
			outcome = evaluator.Evaluate(snap, window.Trends())
		}

		result := ReplayResult{
			Index:    i,
			Role:     inter.Role,
			Snapshot: snap,
			Fired:    outcome.Categories(),
		}
		if top, ok := outcome.Top(); ok {
			dir, selErr := selector.Select(top.Category, strategy.Context{
				Goal:         config.Goal,
				Topic:        topic,
				InitialTopic: topic,
				LastPoint:    inter.Text,
			})
			if selErr == nil {
				result.DirectiveCategory = dir.Category
				result.DirectiveText = dir.Text
			}
		}
		results = append(results, result)
		prior = inter.Text
	}
	return results, nil
}

// #endregion replay
