package config

import (
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/duologue/internal/scoring"
	"github.com/danielpatrickdp/duologue/internal/trigger"
)

const validYAML = `
goal: "Discuss the design of write-ahead logs"
mode: ai-ai
turns: 6
window:
  capacity: 4
  epsilon: 0.03
  trend_bias: 0.05
thresholds:
  coherence: 0.55
  topic_similarity: 0.3
  uncertainty: 0.65
  reasoning_depth: 0.2
categories:
  uncertainty: ground
templates:
  refocus: "Stay with {topic} until it is resolved."
client:
  max_retries: 3
  retry_delay: 2s
  min_delay: 500ms
  timeout: 45s
prompt:
  token_budget: 2048
store:
  path: transcripts.db
`

func TestParse_ValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Turns != 6 {
		t.Errorf("turns: got %d", cfg.Turns)
	}
	if cfg.Window.Capacity != 4 {
		t.Errorf("capacity: got %d", cfg.Window.Capacity)
	}
	if cfg.Thresholds.Coherence != 0.55 {
		t.Errorf("coherence threshold: got %v", cfg.Thresholds.Coherence)
	}
	if cfg.Client.RetryDelay.Std() != 2*time.Second {
		t.Errorf("retry delay: got %v", cfg.Client.RetryDelay.Std())
	}
	if cfg.Client.MinDelay.Std() != 500*time.Millisecond {
		t.Errorf("min delay: got %v", cfg.Client.MinDelay.Std())
	}

	cats, err := cfg.CategoryMap()
	if err != nil {
		t.Fatal(err)
	}
	if cats[scoring.MetricUncertainty] != trigger.CategoryGround {
		t.Errorf("uncertainty category: got %q", cats[scoring.MetricUncertainty])
	}
	// Unconfigured metrics keep their defaults.
	if cats[scoring.MetricCoherence] != trigger.CategoryRefocus {
		t.Errorf("coherence category: got %q", cats[scoring.MetricCoherence])
	}
}

func TestParse_DefaultsApplyWhenOmitted(t *testing.T) {
	cfg, err := Parse([]byte("goal: something worth discussing\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Turns != def.Turns {
		t.Errorf("turns default: got %d, want %d", cfg.Turns, def.Turns)
	}
	if cfg.Window.Capacity != def.Window.Capacity {
		t.Errorf("capacity default: got %d", cfg.Window.Capacity)
	}
	if cfg.Mode != def.Mode {
		t.Errorf("mode default: got %q", cfg.Mode)
	}
}

func TestParse_FailsFast(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing-goal", "turns: 3\n", "goal"},
		{"bad-mode", "goal: g\nmode: telepathy\n", "mode"},
		{"zero-turns", "goal: g\nturns: 0\n", "turns"},
		{"tiny-window", "goal: g\nwindow:\n  capacity: 1\n", "capacity"},
		{"threshold-range", "goal: g\nthresholds:\n  coherence: 1.3\n", "out of range"},
		{"unknown-metric", "goal: g\ncategories:\n  sentiment: refocus\n", "unknown metric"},
		{"unknown-category", "goal: g\ncategories:\n  coherence: escalate\n", "unknown intervention category"},
		{"bad-template-placeholder", "goal: g\ntemplates:\n  refocus: \"use {subject}\"\n", "placeholder"},
		{"unknown-field", "goal: g\nwibble: 7\n", "wibble"},
		{"bad-duration", "goal: g\nclient:\n  retry_delay: soon\n", "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
