// Package report renders stored conversations as standalone HTML
// transcripts with per-turn metrics and the interventions log.
package report

import (
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/danielpatrickdp/duologue/internal/conversation"
)

// #region data

// Transcript is the template input for one conversation.
type Transcript struct {
	Conversation  conversation.Row
	Turns         []conversation.TurnRecord
	Interventions []conversation.Intervention
}

// Directed reports how many turns drew a directive.
func (t Transcript) Directed() int {
	return len(t.Interventions)
}

// Load pulls a full transcript for one conversation out of the store.
func Load(store *conversation.Store, conversationID string) (Transcript, error) {
	row, err := store.Conversation(conversationID)
	if err != nil {
		return Transcript{}, err
	}

	turns, err := store.Turns(conversationID)
	if err != nil {
		return Transcript{}, fmt.Errorf("load turns: %w", err)
	}
	interventions, err := store.Interventions(conversationID)
	if err != nil {
		return Transcript{}, fmt.Errorf("load interventions: %w", err)
	}
	return Transcript{
		Conversation:  row,
		Turns:         turns,
		Interventions: interventions,
	}, nil
}

// #endregion data

// #region template

var transcriptTemplate = template.Must(template.New("transcript").Funcs(template.FuncMap{
	"pct": func(v float32) string {
		return fmt.Sprintf("%.0f%%", v*100)
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Transcript {{.Conversation.ConversationID}}</title>
<style>
body { font-family: Georgia, serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; color: #1d1d1f; }
header { border-bottom: 2px solid #1d1d1f; margin-bottom: 1.5rem; padding-bottom: 0.75rem; }
.goal { font-style: italic; color: #444; }
.turn { margin: 1.25rem 0; padding: 0.75rem 1rem; border-left: 4px solid #bbb; }
.turn.human { border-left-color: #2a6f97; background: #f4f8fb; }
.turn.assistant { border-left-color: #6a994e; background: #f6faf4; }
.turn.directed { border-left-color: #bc4749; }
.role { font-weight: bold; text-transform: capitalize; }
.metrics { font-size: 0.85rem; color: #555; margin-top: 0.5rem; }
.metrics span { margin-right: 1rem; }
.directive { margin-top: 0.5rem; padding: 0.5rem; background: #fdf0f0; font-size: 0.9rem; }
table { border-collapse: collapse; margin-top: 1rem; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; font-size: 0.9rem; }
footer { margin-top: 2rem; font-size: 0.85rem; color: #666; }
</style>
</head>
<body>
<header>
<h1>Conversation transcript</h1>
<p class="goal">{{.Conversation.Goal}}</p>
<p>Mode: {{.Conversation.Mode}} &middot; Started {{.Conversation.CreatedAt.Format "2006-01-02 15:04:05"}}{{if .Conversation.EndReason}} &middot; Ended: {{.Conversation.EndReason}}{{end}}</p>
</header>

{{range .Turns}}
<div class="turn {{.Role}}{{if .DirectiveText}} directed{{end}}">
<span class="role">{{.Role}}</span> &middot; turn {{.Index}}
<p>{{.Text}}</p>
<div class="metrics">
<span>coherence {{pct .Snapshot.Coherence}}</span>
<span>topic {{pct .Snapshot.TopicSimilarity}}</span>
<span>uncertainty {{pct .Snapshot.Uncertainty}}</span>
<span>depth {{pct .Snapshot.ReasoningDepth}}</span>
</div>
{{if .DirectiveText}}<div class="directive"><strong>Directive issued:</strong> {{.DirectiveText}}</div>{{end}}
</div>
{{end}}

{{if .Interventions}}
<h2>Interventions</h2>
<table>
<tr><th>Turn</th><th>Category</th><th>Directive</th></tr>
{{range .Interventions}}
<tr><td>{{.TurnIndex}}</td><td>{{.Category}}</td><td>{{.Directive}}</td></tr>
{{end}}
</table>
{{end}}

<footer>{{len .Turns}} turns, {{.Directed}} directed.</footer>
</body>
</html>
`))

// #endregion template

// #region render

// Render writes the HTML transcript to w.
func Render(w io.Writer, transcript Transcript) error {
	if err := transcriptTemplate.Execute(w, transcript); err != nil {
		return fmt.Errorf("render transcript: %w", err)
	}
	return nil
}

// RenderFile writes the HTML transcript to path.
func RenderFile(path string, transcript Transcript) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()
	if err := Render(f, transcript); err != nil {
		return err
	}
	return f.Close()
}

// #endregion render
