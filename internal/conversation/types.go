package conversation

import (
	"time"

	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region role

// Role identifies which side of the conversation produced a turn.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == RoleHuman {
		return RoleAssistant
	}
	return RoleHuman
}

// #endregion role

// #region turn

// Turn is one produced utterance, immutable once recorded.
type Turn struct {
	ID        string
	Index     int
	Role      Role
	Text      string
	CreatedAt time.Time
}

// #endregion turn

// #region turn-record

// TurnRecord pairs a turn with its metric snapshot and any intervention the
// controller attached to the following turn's prompt. This is the per-turn
// output surface consumed by logging and rendering.
type TurnRecord struct {
	Turn
	Snapshot      scoring.Snapshot
	Fired         []trigger.Category // every breached category, priority order
	DirectiveText string             // rendered directive, "" when none
}

// DirectiveCategory returns the category whose directive was generated,
// or "" when the turn passed through undirected.
func (r TurnRecord) DirectiveCategory() trigger.Category {
	if r.DirectiveText == "" || len(r.Fired) == 0 {
		return ""
	}
	return r.Fired[0]
}

// #endregion turn-record
