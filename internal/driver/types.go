package driver

import (
	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/tracker"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region phase

// Phase is the driver's position in its per-turn state machine.
type Phase string

const (
	PhaseAwaitingTurn Phase = "awaiting_turn"
	PhaseScoring      Phase = "scoring"
	PhaseEvaluating   Phase = "evaluating"
	PhaseDirecting    Phase = "directing"
	PhaseContinuing   Phase = "continuing"
	PhaseEnded        Phase = "ended"
)

// #endregion phase

// #region end-reason

// EndReason records why a conversation reached PhaseEnded.
type EndReason string

const (
	EndTurnLimit         EndReason = "turn_limit"
	EndGenerationFailure EndReason = "generation_failure"
)

// #endregion end-reason

// #region config

// Config holds the driver's per-conversation settings.
type Config struct {
	Goal     string
	Mode     string
	MaxTurns int
	Opener   string // role name producing the first turn; "" = human
}

// #endregion config

// #region summary

// Summary is the terminal report emitted when a conversation ends.
type Summary struct {
	ConversationID string
	Turns          int
	FinalTrends    map[scoring.Metric]tracker.Trend
	Interventions  map[trigger.Category]int
	EndReason      EndReason
	FailureReason  string // populated on generation failure
}

// TotalInterventions sums interventions across categories.
func (s Summary) TotalInterventions() int {
	total := 0
	for _, n := range s.Interventions {
		total += n
	}
	return total
}

// #endregion summary
