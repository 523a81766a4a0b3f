// Command replay re-runs a recorded fixture through the scoring and
// trigger pipeline and verifies the expected outcomes. Exits nonzero when
// any expectation diverges.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/duologue/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	jsonOut := flag.Bool("json", false, "output results as JSON instead of a table")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--json]")
		os.Exit(2)
	}

	f, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	config, err := f.ToReplayConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	results, err := replay.Replay(f.Interactions(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		printJSON(results)
	} else {
		printTable(f, results)
	}

	mismatches := f.Verify(results)
	for _, m := range mismatches {
		fmt.Fprintf(os.Stderr, "MISMATCH %s\n", m)
	}
	if len(mismatches) > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d expectations failed\n", len(mismatches), len(f.Expected))
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%d expectations verified\n", len(f.Expected))
}

// #endregion main

// #region output

type resultRow struct {
	Index             int      `json:"index"`
	Role              string   `json:"role"`
	Coherence         float32  `json:"coherence"`
	TopicSimilarity   float32  `json:"topic_similarity"`
	Uncertainty       float32  `json:"uncertainty"`
	ReasoningDepth    float32  `json:"reasoning_depth"`
	Fired             []string `json:"fired"`
	DirectiveCategory string   `json:"directive_category,omitempty"`
}

func toRow(r replay.ReplayResult) resultRow {
	fired := make([]string, len(r.Fired))
	for i, cat := range r.Fired {
		fired[i] = string(cat)
	}
	return resultRow{
		Index:             r.Index,
		Role:              string(r.Role),
		Coherence:         r.Snapshot.Coherence,
		TopicSimilarity:   r.Snapshot.TopicSimilarity,
		Uncertainty:       r.Snapshot.Uncertainty,
		ReasoningDepth:    r.Snapshot.ReasoningDepth,
		Fired:             fired,
		DirectiveCategory: string(r.DirectiveCategory),
	}
}

func printJSON(results []replay.ReplayResult) {
	rows := make([]resultRow, len(results))
	for i, r := range results {
		rows[i] = toRow(r)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(rows)
}

func printTable(f *replay.Fixture, results []replay.ReplayResult) {
	if f.Description != "" {
		fmt.Println(f.Description)
	}
	fmt.Printf("%-5s %-10s %-6s %-6s %-6s %-6s %-30s %s\n",
		"turn", "role", "coh", "topic", "unc", "depth", "fired", "directive")
	for _, r := range results {
		row := toRow(r)
		fmt.Printf("%-5d %-10s %-6.2f %-6.2f %-6.2f %-6.2f %-30v %s\n",
			row.Index, row.Role, row.Coherence, row.TopicSimilarity,
			row.Uncertainty, row.ReasoningDepth, row.Fired, row.DirectiveCategory)
	}
}

// #endregion output
