// Command report renders a stored conversation as a standalone HTML
// transcript.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/report"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to conversations.db")
	conversationID := flag.String("conversation", "", "conversation to render")
	out := flag.String("out", "transcript.html", "output HTML path")
	flag.Parse()

	if *dbPath == "" || *conversationID == "" {
		fmt.Fprintln(os.Stderr, "usage: report --db path/to/conversations.db --conversation id [--out transcript.html]")
		os.Exit(2)
	}

	store, err := conversation.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	transcript, err := report.Load(store, *conversationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := report.RenderFile(*out, transcript); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d turns, %d directed)\n", *out, len(transcript.Turns), transcript.Directed())
}

// #endregion main
