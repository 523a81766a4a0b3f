// Command fixture-export converts a stored conversation into a replay
// fixture, with the recorded trigger outcomes as the fixture's
// expectations. Useful for freezing a live session into a regression test.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to conversations.db")
	conversationID := flag.String("conversation", "", "conversation to export")
	out := flag.String("out", "", "output fixture path (default: stdout)")
	flag.Parse()

	if *dbPath == "" || *conversationID == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/conversations.db --conversation id [--out fixture.json]")
		os.Exit(2)
	}

	store, err := conversation.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fixture, err := export(store, *conversationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fixture); err != nil {
		fmt.Fprintf(os.Stderr, "write fixture: %v\n", err)
		os.Exit(1)
	}
	if *out != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d turns)\n", *out, len(fixture.Turns))
	}
}

// #endregion main

// #region export

// export builds a fixture whose expectations mirror what the pipeline
// recorded when the conversation ran.
func export(store *conversation.Store, conversationID string) (*replay.Fixture, error) {
	row, err := store.Conversation(conversationID)
	if err != nil {
		return nil, err
	}
	turns, err := store.Turns(conversationID)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, fmt.Errorf("conversation %s has no turns", conversationID)
	}

	fixture := &replay.Fixture{
		Description: fmt.Sprintf("Exported from conversation %s.", conversationID),
		Goal:        row.Goal,
	}
	for _, rec := range turns {
		fixture.Turns = append(fixture.Turns, replay.FixtureTurn{
			Role: string(rec.Role),
			Text: rec.Text,
		})
		fired := make([]string, len(rec.Fired))
		for i, cat := range rec.Fired {
			fired[i] = string(cat)
		}
		fixture.Expected = append(fixture.Expected, replay.FixtureExpectation{
			Index:             rec.Index,
			Fired:             fired,
			DirectiveCategory: string(rec.DirectiveCategory()),
		})
	}
	return fixture, nil
}

// #endregion export
