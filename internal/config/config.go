// Package config loads and validates the YAML run configuration. All
// validation happens at load time; a conversation never starts with a
// partially valid configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/duologue/internal/client"
	"github.com/danielpatrickdp/duologue/internal/prompt"
	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/strategy"
	"github.com/danielpatrickdp/duologue/internal/tracker"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

// #region config-types

// Config is the full run configuration for one conversation.
type Config struct {
	Goal  string `yaml:"goal"`
	Mode  string `yaml:"mode"`
	Turns int    `yaml:"turns"`

	Window     WindowConfig      `yaml:"window"`
	Thresholds ThresholdConfig   `yaml:"thresholds"`
	Categories map[string]string `yaml:"categories"` // metric name → category name
	Templates  map[string]string `yaml:"templates"`  // category name → template text
	Scoring    ScoringConfig     `yaml:"scoring"`
	Client     ClientConfig      `yaml:"client"`
	Prompt     PromptConfig      `yaml:"prompt"`
	Store      StoreConfig       `yaml:"store"`
	Report     ReportConfig      `yaml:"report"`
}

// WindowConfig tunes the metric window and trend derivation.
type WindowConfig struct {
	Capacity  int     `yaml:"capacity"`
	Epsilon   float32 `yaml:"epsilon"`
	TrendBias float32 `yaml:"trend_bias"`
}

// ThresholdConfig holds the per-metric cutoffs.
type ThresholdConfig struct {
	Coherence       float32 `yaml:"coherence"`
	TopicSimilarity float32 `yaml:"topic_similarity"`
	Uncertainty     float32 `yaml:"uncertainty"`
	ReasoningDepth  float32 `yaml:"reasoning_depth"`
}

// ScoringConfig tunes the lexical heuristics.
type ScoringConfig struct {
	HedgeScale  float32 `yaml:"hedge_scale"`
	MarkerScale float32 `yaml:"marker_scale"`
}

// Duration wraps time.Duration so YAML values like "30s" decode directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ClientConfig tunes the generation wrappers.
type ClientConfig struct {
	MaxRetries int      `yaml:"max_retries"`
	RetryDelay Duration `yaml:"retry_delay"`
	MinDelay   Duration `yaml:"min_delay"`
	Timeout    Duration `yaml:"timeout"`
}

// PromptConfig tunes prompt assembly.
type PromptConfig struct {
	TokenBudget int    `yaml:"token_budget"`
	Encoding    string `yaml:"encoding"` // tiktoken encoding name, "" = estimate
}

// StoreConfig points at the transcript database.
type StoreConfig struct {
	Path string `yaml:"path"` // "" disables persistence
}

// ReportConfig points at the HTML transcript output.
type ReportConfig struct {
	Path string `yaml:"path"` // "" disables rendering
}

// #endregion config-types

// #region defaults

// Default returns a fully populated configuration with built-in templates.
func Default() Config {
	trackerDefaults := tracker.DefaultConfig()
	scorerDefaults := scoring.DefaultConfig()
	retryDefaults := client.DefaultRetryConfig()
	promptDefaults := prompt.DefaultConfig()
	thresholds := trigger.DefaultThresholds()

	return Config{
		Mode:  prompt.ModeHumanAI,
		Turns: 8,
		Window: WindowConfig{
			Capacity: trackerDefaults.Capacity,
			Epsilon:  trackerDefaults.Epsilon,
		},
		Thresholds: ThresholdConfig{
			Coherence:       thresholds.Coherence,
			TopicSimilarity: thresholds.TopicSimilarity,
			Uncertainty:     thresholds.Uncertainty,
			ReasoningDepth:  thresholds.ReasoningDepth,
		},
		Scoring: ScoringConfig{
			HedgeScale:  scorerDefaults.HedgeScale,
			MarkerScale: scorerDefaults.MarkerScale,
		},
		Client: ClientConfig{
			MaxRetries: retryDefaults.MaxRetries,
			RetryDelay: Duration(retryDefaults.BaseDelay),
			MinDelay:   Duration(2 * time.Second),
			Timeout:    Duration(30 * time.Second),
		},
		Prompt: PromptConfig{
			TokenBudget: promptDefaults.TokenBudget,
		},
	}
}

// #endregion defaults

// #region load

// Load reads path, layers it over Default, and validates. Unknown YAML
// fields are rejected.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes raw YAML over the defaults and validates.
func Parse(raw []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// #endregion load

// #region validate

// Validate rejects any invalid value. Called once at load; runs never see
// a partially valid configuration.
func (c *Config) Validate() error {
	if c.Goal == "" {
		return fmt.Errorf("config: goal is required")
	}
	if !prompt.KnownMode(c.Mode) {
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.Turns < 1 {
		return fmt.Errorf("config: turns must be at least 1, got %d", c.Turns)
	}
	if c.Window.Capacity < 2 {
		return fmt.Errorf("config: window capacity must be at least 2, got %d", c.Window.Capacity)
	}
	if c.Window.Epsilon < 0 || c.Window.TrendBias < 0 {
		return fmt.Errorf("config: window epsilon and trend_bias must be non-negative")
	}
	if err := c.ThresholdSet().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.CategoryMap(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := strategy.NewSelector(c.TemplateOverrides()); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Client.MaxRetries < 0 {
		return fmt.Errorf("config: max_retries must be non-negative")
	}
	return nil
}

// #endregion validate

// #region conversions

// ThresholdSet converts to the evaluator's threshold set.
func (c *Config) ThresholdSet() trigger.ThresholdSet {
	return trigger.ThresholdSet{
		Coherence:       c.Thresholds.Coherence,
		TopicSimilarity: c.Thresholds.TopicSimilarity,
		Uncertainty:     c.Thresholds.Uncertainty,
		ReasoningDepth:  c.Thresholds.ReasoningDepth,
	}
}

// CategoryMap converts the configured metric → category names, layered
// over the defaults. Unknown metric or category names are errors.
func (c *Config) CategoryMap() (map[scoring.Metric]trigger.Category, error) {
	out := trigger.DefaultCategoryMap()
	for metricName, categoryName := range c.Categories {
		metric, err := parseMetric(metricName)
		if err != nil {
			return nil, err
		}
		category, err := trigger.ParseCategory(categoryName)
		if err != nil {
			return nil, err
		}
		out[metric] = category
	}
	return out, nil
}

// TemplateOverrides converts configured template texts to typed keys.
// Category validity is checked by strategy.NewSelector.
func (c *Config) TemplateOverrides() map[trigger.Category]string {
	if len(c.Templates) == 0 {
		return nil
	}
	out := make(map[trigger.Category]string, len(c.Templates))
	for name, text := range c.Templates {
		out[trigger.Category(name)] = text
	}
	return out
}

// TrackerConfig converts to the window configuration.
func (c *Config) TrackerConfig() tracker.Config {
	return tracker.Config{
		Capacity: c.Window.Capacity,
		Epsilon:  c.Window.Epsilon,
	}
}

// ScorerConfig converts to the scorer configuration.
func (c *Config) ScorerConfig() scoring.Config {
	return scoring.Config{
		HedgeScale:  c.Scoring.HedgeScale,
		MarkerScale: c.Scoring.MarkerScale,
	}
}

// RetryConfig converts to the retrying-generator configuration.
func (c *Config) RetryConfig() client.RetryConfig {
	return client.RetryConfig{
		MaxRetries: c.Client.MaxRetries,
		BaseDelay:  c.Client.RetryDelay.Std(),
	}
}

// PromptBuilderConfig converts to the prompt-builder configuration.
func (c *Config) PromptBuilderConfig() prompt.Config {
	return prompt.Config{
		Mode:        c.Mode,
		TokenBudget: c.Prompt.TokenBudget,
	}
}

func parseMetric(name string) (scoring.Metric, error) {
	for _, m := range scoring.Metrics {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", name)
}

// #endregion conversions
