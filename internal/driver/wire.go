package driver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/duologue/internal/client"
	"github.com/danielpatrickdp/duologue/internal/config"
	"github.com/danielpatrickdp/duologue/internal/conversation"
	"github.com/danielpatrickdp/duologue/internal/prompt"
	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/strategy"
	"github.com/danielpatrickdp/duologue/internal/tracker"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region wiring

// FromConfig assembles a Driver from a validated configuration. Generators
// are wrapped with retry and pacing per the client settings. An embedder may
// be nil; coherence then falls back to lexical overlap.
func FromConfig(cfg config.Config, generators map[conversation.Role]client.Generator, embedder scoring.Embedder, store *conversation.Store, logger *zap.Logger) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	categories, err := cfg.CategoryMap()
	if err != nil {
		return nil, err
	}
	selector, err := strategy.NewSelector(cfg.TemplateOverrides())
	if err != nil {
		return nil, err
	}

	counter, err := tokenCounter(cfg.Prompt.Encoding)
	if err != nil {
		logger.Warn("token encoding unavailable, using estimate", zap.Error(err))
		counter = prompt.EstimateCounter{}
	}

	wrapped := make(map[conversation.Role]client.Generator, len(generators))
	for role, gen := range generators {
		g := gen
		if timeout := cfg.Client.Timeout.Std(); timeout > 0 {
			g = client.NewBounded(g, timeout)
		}
		g = client.NewRetrying(g, cfg.RetryConfig(), logger)
		if minDelay := cfg.Client.MinDelay.Std(); minDelay > 0 {
			g = client.NewThrottled(g, minDelay)
		}
		wrapped[role] = g
	}

	return New(Config{
		Goal:     cfg.Goal,
		Mode:     cfg.Mode,
		MaxTurns: cfg.Turns,
	}, Parts{
		Generators: wrapped,
		Scorer:     scoring.NewScorer(embedder, cfg.ScorerConfig()),
		Window:     tracker.NewWindow(cfg.TrackerConfig()),
		Evaluator:  trigger.NewEvaluator(cfg.ThresholdSet(), categories, cfg.Window.TrendBias),
		Selector:   selector,
		Builder:    prompt.NewBuilder(cfg.PromptBuilderConfig(), counter),
		Store:      store,
		Logger:     logger,
	})
}

func tokenCounter(encoding string) (prompt.TokenCounter, error) {
	if encoding == "" {
		return prompt.EstimateCounter{}, nil
	}
	counter, err := prompt.NewTiktokenCounter(encoding)
	if err != nil {
		return nil, fmt.Errorf("token counter for encoding %q: %w", encoding, err)
	}
	return counter, nil
}

// #endregion wiring
