// Package prompt assembles generation requests: role-aware system
// instructions, directive attachment, role-swapped history for the
// human-role participant, and token-budgeted history trimming.
package prompt

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/duologue/internal/client"
	"github.com/danielpatrickdp/duologue/internal/conversation"
)

// #region modes

const (
	ModeHumanAI = "human-ai" // one side plays a human expert, the other an assistant
	ModeAIAI    = "ai-ai"    // both sides play peers exploring the goal
)

// KnownMode reports whether mode names a supported conversation mode.
func KnownMode(mode string) bool {
	return mode == ModeHumanAI || mode == ModeAIAI
}

// #endregion modes

// #region config

// Config holds prompt-assembly knobs.
type Config struct {
	Mode        string
	TokenBudget int // max history tokens per request; 0 disables trimming
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mode:        ModeHumanAI,
		TokenBudget: 4096,
	}
}

// #endregion config

// #region builder

// Builder assembles client.Requests for either participant.
type Builder struct {
	config  Config
	counter TokenCounter
}

// NewBuilder creates a Builder. counter may be nil (rune estimate applies).
func NewBuilder(config Config, counter TokenCounter) *Builder {
	if counter == nil {
		counter = EstimateCounter{}
	}
	return &Builder{config: config, counter: counter}
}

// Build produces the next generation request for role. directive is the
// rendered intervention for this turn boundary ("" when none); it is
// attached to the system instruction, never persisted in state.
func (b *Builder) Build(role conversation.Role, goal string, history []conversation.Turn, directive string) client.Request {
	instruction := b.systemInstruction(role, goal)
	if directive != "" {
		instruction += "\n\n" + directive
	}

	return client.Request{
		Prompt:            b.contentPrompt(goal, history),
		SystemInstruction: instruction,
		History:           b.visibleHistory(role, history),
		Role:              role,
	}
}

// #endregion builder

// #region system-instruction

func (b *Builder) systemInstruction(role conversation.Role, goal string) string {
	if role == conversation.RoleHuman && b.config.Mode != "" {
		return fmt.Sprintf(
			"You are a human expert exploring the following topic with an AI counterpart: %s. "+
				"Never refer to yourself as an AI. Contribute your own reasoning and challenge weak claims; "+
				"do not simply agree. Keep the exchange on topic and break out of loops on already-resolved points.",
			goal,
		)
	}
	return fmt.Sprintf(
		"You are a thoughtful expert discussing: %s. "+
			"Think step by step, make your reasoning explicit, and engage directly with your counterpart's latest points.",
		goal,
	)
}

// #endregion system-instruction

// #region content-prompt

// contentPrompt is the counterpart's latest turn, or the goal itself for
// the opening turn.
func (b *Builder) contentPrompt(goal string, history []conversation.Turn) string {
	if len(history) == 0 {
		return goal
	}
	return history[len(history)-1].Text
}

// #endregion content-prompt

// #region history

// visibleHistory returns the history as the participant should see it,
// trimmed to the token budget (oldest first). In human-ai mode the
// human-role participant sees the roles mirrored, so the endpoint playing
// the human treats its own past turns as the "assistant" side.
func (b *Builder) visibleHistory(role conversation.Role, history []conversation.Turn) []conversation.Turn {
	trimmed := b.trim(history)

	if b.config.Mode != ModeHumanAI || role != conversation.RoleHuman {
		return trimmed
	}

	mirrored := make([]conversation.Turn, len(trimmed))
	for i, turn := range trimmed {
		turn.Role = turn.Role.Other()
		mirrored[i] = turn
	}
	return mirrored
}

// trim drops the oldest turns until the history fits the budget. The most
// recent turn is always kept.
func (b *Builder) trim(history []conversation.Turn) []conversation.Turn {
	if b.config.TokenBudget <= 0 || len(history) == 0 {
		return append([]conversation.Turn(nil), history...)
	}

	total := 0
	// Walk backwards so the newest turns claim the budget first.
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := b.counter.Count(history[i].Text)
		if total+cost > b.config.TokenBudget && start < len(history) {
			break
		}
		total += cost
		start = i
	}
	return append([]conversation.Turn(nil), history[start:]...)
}

// #endregion history

// #region topic

// ExtractTopic pulls the core topic out of a goal string, mirroring the
// "Topic:"/"GOAL:" conventions of configured prompts.
func ExtractTopic(goal string) string {
	trimmed := strings.TrimSpace(goal)
	for _, marker := range []string{"Topic:", "TOPIC:", "GOAL:", "Goal:"} {
		if idx := strings.Index(trimmed, marker); idx >= 0 {
			rest := trimmed[idx+len(marker):]
			if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
				rest = rest[:nl]
			}
			if topic := strings.TrimSpace(rest); topic != "" {
				return topic
			}
		}
	}
	return trimmed
}

// #endregion topic
