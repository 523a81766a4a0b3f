// Command controller runs one adaptive conversation loop from a YAML
// config. Replies come from script files or interactively from stdin, so
// the scoring and directive pipeline can be exercised without a model
// backend attached.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/danielpatrickdp/duologue/internal/client"
	"github.com/danielpatrickdp/duologue/internal/config"
	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/driver"
	"github.com/danielpatrickdp/duologue/internal/logging"
	"github.com/danielpatrickdp/duologue/internal/report"
	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to controller YAML config")
	humanScript := flag.String("human-script", "", "file with one human reply per line (default: stdin)")
	assistantScript := flag.String("assistant-script", "", "file with one assistant reply per line (default: stdin)")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	logFile := flag.String("log-file", "", "log to a rotated file instead of stderr")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: controller --config path/to/config.yaml [--human-script file] [--assistant-script file]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{Level: *logLevel, File: *logFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var store *conversation.Store
	if cfg.Store.Path != "" {
		store, err = conversation.NewStore(cfg.Store.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	stdin := bufio.NewScanner(os.Stdin)
	generators := map[conversation.Role]client.Generator{}
	for role, path := range map[conversation.Role]string{
		conversation.RoleHuman:     *humanScript,
		conversation.RoleAssistant: *assistantScript,
	} {
		gen, err := generatorFor(role, path, stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		generators[role] = gen
	}

	d, err := driver.FromConfig(cfg, generators, nil, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wire controller: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Goal: %s\nMode: %s, %d turns\n\n", cfg.Goal, cfg.Mode, cfg.Turns)

	summary, err := d.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}
	printSummary(summary)

	if cfg.Report.Path != "" && store != nil && summary.ConversationID != "" {
		transcript, err := report.Load(store, summary.ConversationID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load transcript: %v\n", err)
			os.Exit(1)
		}
		if err := report.RenderFile(cfg.Report.Path, transcript); err != nil {
			fmt.Fprintf(os.Stderr, "render report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Transcript written to %s\n", cfg.Report.Path)
	}
}

// #endregion main

// #region generators

// generatorFor builds a scripted generator from a reply file, or an
// interactive one reading from stdin.
func generatorFor(role conversation.Role, path string, stdin *bufio.Scanner) (client.Generator, error) {
	if path == "" {
		return &stdinGenerator{role: role, scanner: stdin}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s script: %w", role, err)
	}
	var replies []string
	for _, line := range strings.Split(string(raw), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			replies = append(replies, line)
		}
	}
	if len(replies) == 0 {
		return nil, fmt.Errorf("%s script %s has no replies", role, path)
	}
	return client.NewScripted(replies...), nil
}

// stdinGenerator prompts the operator for each turn. Both roles may share
// one scanner; the driver alternates strictly so reads never interleave.
type stdinGenerator struct {
	role    conversation.Role
	scanner *bufio.Scanner
}

func (g *stdinGenerator) GenerateTurn(ctx context.Context, req client.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.SystemInstruction != "" {
		fmt.Printf("-- %s instruction --\n%s\n", g.role, req.SystemInstruction)
	}
	fmt.Printf("[%s] %s\n%s> ", g.role, req.Prompt, g.role)
	if !g.scanner.Scan() {
		if err := g.scanner.Err(); err != nil {
			return "", fmt.Errorf("read %s turn: %w", g.role, err)
		}
		return "", fmt.Errorf("input closed while awaiting %s turn", g.role)
	}
	return strings.TrimSpace(g.scanner.Text()), nil
}

// #endregion generators

// #region summary

func printSummary(summary driver.Summary) {
	fmt.Printf("\nConversation ended: %s", summary.EndReason)
	if summary.FailureReason != "" {
		fmt.Printf(" (%s)", summary.FailureReason)
	}
	fmt.Printf("\nTurns: %d\n", summary.Turns)
	if summary.ConversationID != "" {
		fmt.Printf("Conversation ID: %s\n", summary.ConversationID)
	}

	if len(summary.Interventions) == 0 {
		fmt.Println("Interventions: none")
	} else {
		fmt.Printf("Interventions: %d\n", summary.TotalInterventions())
		categories := make([]string, 0, len(summary.Interventions))
		for cat := range summary.Interventions {
			categories = append(categories, string(cat))
		}
		sort.Strings(categories)
		for _, cat := range categories {
			fmt.Printf("  %-10s %d\n", cat, summary.Interventions[trigger.Category(cat)])
		}
	}

	fmt.Println("Final trends:")
	for _, metric := range scoring.Metrics {
		fmt.Printf("  %-18s %s\n", metric, summary.FinalTrends[metric])
	}
}

// #endregion summary
