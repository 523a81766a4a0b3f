// Package driver runs the per-conversation control loop: generate a turn,
// score it, derive trends, evaluate triggers, and inject at most one
// directive into the next prompt.
package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/duologue/internal/client"
	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/prompt"
	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/strategy"
	"github.com/danielpatrickdp/duologue/internal/tracker"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region driver

// Parts bundles the collaborators a Driver needs. Store may be nil to
// disable persistence; Logger may be nil for silence.
type Parts struct {
	Generators map[conversation.Role]client.Generator
	Scorer     *scoring.Scorer
	Window     *tracker.Window
	Evaluator  *trigger.Evaluator
	Selector   *strategy.Selector
	Builder    *prompt.Builder
	Store      *conversation.Store
	Logger     *zap.Logger
}

// Driver owns one conversation from first turn to terminal state.
type Driver struct {
	config Config
	parts  Parts
	phase  Phase
}

// New builds a Driver. It errors when a participant role has no generator.
func New(config Config, parts Parts) (*Driver, error) {
	if config.MaxTurns < 1 {
		return nil, fmt.Errorf("driver: max turns must be at least 1, got %d", config.MaxTurns)
	}
	opener := conversation.Role(config.Opener)
	if opener == "" {
		opener = conversation.RoleHuman
		config.Opener = string(opener)
	}
	for _, role := range []conversation.Role{opener, opener.Other()} {
		if parts.Generators[role] == nil {
			return nil, fmt.Errorf("driver: no generator bound for role %q", role)
		}
	}
	if parts.Logger == nil {
		parts.Logger = zap.NewNop()
	}
	return &Driver{config: config, parts: parts, phase: PhaseAwaitingTurn}, nil
}

// Phase reports the driver's current state machine position.
func (d *Driver) Phase() Phase {
	return d.phase
}

// #endregion driver

// #region run

// Run executes the conversation until the turn limit or a generation
// failure. Generation failure is a terminal state recorded in the summary,
// not an error; the returned error covers persistence problems only.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	topic := prompt.ExtractTopic(d.config.Goal)
	summary := Summary{
		Interventions: make(map[trigger.Category]int),
	}

	if d.parts.Store != nil {
		id, err := d.parts.Store.CreateConversation(d.config.Goal, d.config.Mode)
		if err != nil {
			return summary, fmt.Errorf("create conversation: %w", err)
		}
		summary.ConversationID = id
	}

	var (
		history   []conversation.Turn
		directive string
		role      = conversation.Role(d.config.Opener)
	)

	for i := 0; i < d.config.MaxTurns; i++ {
		d.phase = PhaseAwaitingTurn
		req := d.parts.Builder.Build(role, d.config.Goal, history, directive)
		text, err := d.parts.Generators[role].GenerateTurn(ctx, req)
		if err != nil {
			d.phase = PhaseEnded
			summary.Turns = len(history)
			summary.FinalTrends = d.parts.Window.Trends()
			summary.EndReason = EndGenerationFailure
			summary.FailureReason = err.Error()
			d.parts.Logger.Error("generation failed, ending conversation",
				zap.Int("turn", i),
				zap.String("role", string(role)),
				zap.Error(err))
			if ferr := d.finish(summary); ferr != nil {
				return summary, ferr
			}
			return summary, nil
		}
		directive = ""

		d.phase = PhaseScoring
		prior := ""
		if len(history) > 0 {
			prior = history[len(history)-1].Text
		}
		snap := d.parts.Scorer.Score(ctx, text, prior, d.config.Goal)
		d.parts.Window.Record(snap)
		trends := d.parts.Window.Trends()

		d.phase = PhaseEvaluating
		// The opening turn establishes context; there is no prior turn to
		// have degraded from, so evaluation starts at the second turn.
		var result trigger.Result
		if i > 0 {
			result = d.parts.Evaluator.Evaluate(snap, trends)
		}

		turn := conversation.Turn{
			ID:        uuid.NewString(),
			Index:     i,
			Role:      role,
			Text:      text,
			CreatedAt: time.Now().UTC(),
		}
		rec := conversation.TurnRecord{
			Turn:     turn,
			Snapshot: snap,
			Fired:    result.Categories(),
		}

		if top, ok := result.Top(); ok {
			d.phase = PhaseDirecting
			dir, selErr := d.parts.Selector.Select(top.Category, strategy.Context{
				Goal:         d.config.Goal,
				Topic:        topic,
				InitialTopic: topic,
				LastPoint:    keyPoint(text),
			})
			if selErr != nil {
				// An unfillable template must not stall the loop; the
				// turn passes through undirected.
				d.parts.Logger.Warn("directive selection failed, passing turn through",
					zap.Int("turn", i),
					zap.String("category", string(top.Category)),
					zap.Error(selErr))
			} else {
				directive = dir.Text
				rec.DirectiveText = dir.Text
				summary.Interventions[top.Category]++
			}
		} else {
			d.phase = PhaseContinuing
		}

		if d.parts.Store != nil {
			if err := d.parts.Store.AppendTurn(summary.ConversationID, rec); err != nil {
				return summary, fmt.Errorf("append turn %d: %w", i, err)
			}
		}
		history = append(history, turn)

		d.parts.Logger.Info("turn scored",
			zap.Int("turn", i),
			zap.String("role", string(role)),
			zap.Float32("coherence", snap.Coherence),
			zap.Float32("topic_similarity", snap.TopicSimilarity),
			zap.Float32("uncertainty", snap.Uncertainty),
			zap.Float32("reasoning_depth", snap.ReasoningDepth),
			zap.Strings("fired", categoryNames(rec.Fired)),
			zap.Bool("directed", rec.DirectiveText != ""))

		role = role.Other()
	}

	d.phase = PhaseEnded
	summary.Turns = len(history)
	summary.FinalTrends = d.parts.Window.Trends()
	summary.EndReason = EndTurnLimit
	if err := d.finish(summary); err != nil {
		return summary, err
	}
	return summary, nil
}

func (d *Driver) finish(summary Summary) error {
	if d.parts.Store == nil {
		return nil
	}
	if err := d.parts.Store.Finish(summary.ConversationID, string(summary.EndReason)); err != nil {
		return fmt.Errorf("finish conversation: %w", err)
	}
	return nil
}

// #endregion run

// #region helpers

// keyPoint extracts the closing sentence of a turn for the {last_point}
// placeholder, capped so directives stay readable.
func keyPoint(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	last := trimmed
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if idx := strings.LastIndex(last, sep); idx >= 0 {
			last = last[idx+len(sep):]
		}
	}
	last = strings.TrimSpace(last)
	if last == "" {
		last = trimmed
	}
	const maxPoint = 160
	runes := []rune(last)
	if len(runes) > maxPoint {
		last = string(runes[:maxPoint]) + "..."
	}
	return last
}

func categoryNames(cats []trigger.Category) []string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

// #endregion helpers
