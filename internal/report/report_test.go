package report

import (
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region report-tests

func sampleTranscript() Transcript {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return Transcript{
		Conversation: conversation.Row{
			ConversationID: "c-1",
			Goal:           "Discuss battery storage economics",
			Mode:           "human-ai",
			CreatedAt:      now,
			EndReason:      "turn_limit",
		},
		Turns: []conversation.TurnRecord{
			{
				Turn: conversation.Turn{
					ID: "t-0", Index: 0, Role: conversation.RoleHuman,
					Text: "Storage costs keep falling.", CreatedAt: now,
				},
				Snapshot: scoring.Snapshot{Coherence: 0.5, TopicSimilarity: 0.8, Uncertainty: 0.1, ReasoningDepth: 0.4},
			},
			{
				Turn: conversation.Turn{
					ID: "t-1", Index: 1, Role: conversation.RoleAssistant,
					Text: "Unrelated <script>alert(1)</script> aside.", CreatedAt: now,
				},
				Snapshot:      scoring.Snapshot{Coherence: 0.1, TopicSimilarity: 0.1, Uncertainty: 0.2, ReasoningDepth: 0.1},
				Fired:         []trigger.Category{trigger.CategoryRefocus},
				DirectiveText: "Let's maintain focus on the topic.",
			},
		},
		Interventions: []conversation.Intervention{
			{TurnIndex: 1, Category: trigger.CategoryRefocus, Directive: "Let's maintain focus on the topic."},
		},
	}
}

func TestRender_ContainsTurnsMetricsAndDirectives(t *testing.T) {
	var sb strings.Builder
	if err := Render(&sb, sampleTranscript()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := sb.String()

	for _, want := range []string{
		"Discuss battery storage economics",
		"Storage costs keep falling.",
		"coherence 50%",
		"topic 80%",
		"Directive issued:",
		"Let&#39;s maintain focus on the topic.",
		"turn_limit",
		"2 turns, 1 directed.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestRender_EscapesTurnText(t *testing.T) {
	var sb strings.Builder
	if err := Render(&sb, sampleTranscript()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(sb.String(), "<script>alert(1)</script>") {
		t.Error("turn text was not HTML-escaped")
	}
}

func TestLoad_RoundTripsStore(t *testing.T) {
	store, err := conversation.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	id, err := store.CreateConversation("Discuss grid economics", "human-ai")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	rec := conversation.TurnRecord{
		Turn: conversation.Turn{
			ID: "t-0", Index: 0, Role: conversation.RoleHuman,
			Text: "Opening point.", CreatedAt: time.Now().UTC(),
		},
		Snapshot:      scoring.Snapshot{Coherence: 0.5, TopicSimilarity: 0.5, Uncertainty: 0.2, ReasoningDepth: 0.3},
		Fired:         []trigger.Category{trigger.CategoryClarify},
		DirectiveText: "Request specific clarification.",
	}
	if err := store.AppendTurn(id, rec); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if err := store.Finish(id, "turn_limit"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	transcript, err := Load(store, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if transcript.Conversation.Goal != "Discuss grid economics" {
		t.Errorf("goal = %q", transcript.Conversation.Goal)
	}
	if len(transcript.Turns) != 1 || len(transcript.Interventions) != 1 {
		t.Fatalf("turns = %d, interventions = %d, want 1 and 1", len(transcript.Turns), len(transcript.Interventions))
	}

	var sb strings.Builder
	if err := Render(&sb, transcript); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(sb.String(), "Opening point.") {
		t.Error("rendered transcript missing stored turn text")
	}
}

func TestLoad_UnknownConversation(t *testing.T) {
	store, err := conversation.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := Load(store, "nope"); err == nil {
		t.Fatal("expected error for unknown conversation")
	}
}

// #endregion report-tests
