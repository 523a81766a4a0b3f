// Command inspect browses a conversation database: recent conversations,
// per-turn metrics, and the interventions log.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/duologue/internal/conversation"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to conversations.db")
	conversationID := flag.String("conversation", "", "show one conversation's turns")
	last := flag.Int("last", 20, "list N most recent conversations")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/conversations.db [--conversation id] [--last N] [--json]")
		os.Exit(2)
	}

	store, err := conversation.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *conversationID != "" {
		err = runDetailMode(store, *conversationID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ConversationID string `json:"conversation_id"`
	Goal           string `json:"goal"`
	Mode           string `json:"mode"`
	CreatedAt      string `json:"created_at"`
	EndReason      string `json:"end_reason,omitempty"`
}

func runListMode(store *conversation.Store, last int, jsonOut bool) error {
	rows, err := store.Conversations(last)
	if err != nil {
		return err
	}

	out := make([]listRow, len(rows))
	for i, r := range rows {
		out[i] = listRow{
			ConversationID: r.ConversationID,
			Goal:           truncate(r.Goal, 48),
			Mode:           r.Mode,
			CreatedAt:      r.CreatedAt.Format(time.RFC3339),
			EndReason:      r.EndReason,
		}
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("%-38s %-20s %-10s %-12s %s\n", "conversation", "created", "mode", "end", "goal")
	for _, r := range out {
		end := r.EndReason
		if end == "" {
			end = "(open)"
		}
		fmt.Printf("%-38s %-20s %-10s %-12s %s\n", r.ConversationID, r.CreatedAt, r.Mode, end, r.Goal)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOut struct {
	Conversation  conversation.Row            `json:"conversation"`
	Turns         []turnRow                   `json:"turns"`
	Interventions []conversation.Intervention `json:"interventions,omitempty"`
}

type turnRow struct {
	Index           int      `json:"index"`
	Role            string   `json:"role"`
	Text            string   `json:"text"`
	Coherence       float32  `json:"coherence"`
	TopicSimilarity float32  `json:"topic_similarity"`
	Uncertainty     float32  `json:"uncertainty"`
	ReasoningDepth  float32  `json:"reasoning_depth"`
	Fired           []string `json:"fired,omitempty"`
	Directive       string   `json:"directive,omitempty"`
}

func runDetailMode(store *conversation.Store, conversationID string, jsonOut bool) error {
	row, err := store.Conversation(conversationID)
	if err != nil {
		return err
	}
	turns, err := store.Turns(conversationID)
	if err != nil {
		return err
	}
	interventions, err := store.Interventions(conversationID)
	if err != nil {
		return err
	}

	out := detailOut{Conversation: row, Interventions: interventions}
	for _, rec := range turns {
		fired := make([]string, len(rec.Fired))
		for i, cat := range rec.Fired {
			fired[i] = string(cat)
		}
		out.Turns = append(out.Turns, turnRow{
			Index:           rec.Index,
			Role:            string(rec.Role),
			Text:            rec.Text,
			Coherence:       rec.Snapshot.Coherence,
			TopicSimilarity: rec.Snapshot.TopicSimilarity,
			Uncertainty:     rec.Snapshot.Uncertainty,
			ReasoningDepth:  rec.Snapshot.ReasoningDepth,
			Fired:           fired,
			Directive:       rec.DirectiveText,
		})
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Conversation %s\nGoal: %s\nMode: %s\n", row.ConversationID, row.Goal, row.Mode)
	if row.EndReason != "" {
		fmt.Printf("Ended: %s (%s)\n", row.EndReason, row.EndedAt.Format(time.RFC3339))
	}
	fmt.Println()

	fmt.Printf("%-5s %-10s %-6s %-6s %-6s %-6s %s\n", "turn", "role", "coh", "topic", "unc", "depth", "text")
	for _, t := range out.Turns {
		fmt.Printf("%-5d %-10s %-6.2f %-6.2f %-6.2f %-6.2f %s\n",
			t.Index, t.Role, t.Coherence, t.TopicSimilarity, t.Uncertainty, t.ReasoningDepth, truncate(t.Text, 60))
		if t.Directive != "" {
			fmt.Printf("      directive: %s\n", truncate(t.Directive, 80))
		}
	}

	if len(interventions) > 0 {
		fmt.Printf("\nInterventions:\n")
		for _, iv := range interventions {
			fmt.Printf("  turn %-3d %-10s %s\n", iv.TurnIndex, iv.Category, truncate(iv.Directive, 70))
		}
	}
	return nil
}

// #endregion detail-mode

// #region helpers

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// #endregion helpers
