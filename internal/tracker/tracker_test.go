package tracker

import (
	"testing"

	"github.com/danielpatrickdp/duologue/internal/scoring"
)

func coherenceSnap(v float32) scoring.Snapshot {
	return scoring.Snapshot{Coherence: v, TopicSimilarity: 0.5, Uncertainty: 0.5, ReasoningDepth: 0.5}
}

func TestWindow_CapacityFIFO(t *testing.T) {
	w := NewWindow(Config{Capacity: 3, Epsilon: 0.02})

	for _, v := range []float32{0.1, 0.2, 0.3, 0.4, 0.5} {
		w.Record(coherenceSnap(v))
		if w.Len() > 3 {
			t.Fatalf("window exceeded capacity: %d", w.Len())
		}
	}

	snaps := w.Snapshots()
	if len(snaps) != 3 {
		t.Fatalf("len: got %d, want 3", len(snaps))
	}
	// Oldest entries (0.1, 0.2) evicted first.
	if snaps[0].Coherence != 0.3 || snaps[2].Coherence != 0.5 {
		t.Errorf("unexpected window contents: %+v", snaps)
	}
}

func TestWindow_TrendRequiresTwoSnapshots(t *testing.T) {
	w := NewWindow(DefaultConfig())

	if got := w.Trend(scoring.MetricCoherence); got != TrendStable {
		t.Errorf("empty window: got %q, want stable", got)
	}

	w.Record(coherenceSnap(0.9))
	if got := w.Trend(scoring.MetricCoherence); got != TrendStable {
		t.Errorf("single snapshot: got %q, want stable", got)
	}
}

func TestWindow_TrendClassification(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
		want   Trend
	}{
		{"degrading", []float32{0.9, 0.8, 0.4, 0.3}, TrendDegrading},
		{"improving", []float32{0.2, 0.3, 0.7, 0.8}, TrendImproving},
		{"flat", []float32{0.5, 0.5, 0.5, 0.5}, TrendStable},
		{"within-epsilon", []float32{0.50, 0.50, 0.51, 0.51}, TrendStable},
		{"odd-count-degrading", []float32{0.9, 0.5, 0.2}, TrendDegrading},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(Config{Capacity: 5, Epsilon: 0.02})
			for _, v := range tt.values {
				w.Record(coherenceSnap(v))
			}
			if got := w.Trend(scoring.MetricCoherence); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWindow_TrendsCoverAllMetrics(t *testing.T) {
	w := NewWindow(DefaultConfig())
	w.Record(scoring.Snapshot{Coherence: 0.9, TopicSimilarity: 0.2, Uncertainty: 0.1, ReasoningDepth: 0.5})
	w.Record(scoring.Snapshot{Coherence: 0.3, TopicSimilarity: 0.8, Uncertainty: 0.1, ReasoningDepth: 0.5})

	trends := w.Trends()
	if len(trends) != len(scoring.Metrics) {
		t.Fatalf("got %d trends, want %d", len(trends), len(scoring.Metrics))
	}
	if trends[scoring.MetricCoherence] != TrendDegrading {
		t.Errorf("coherence: got %q, want degrading", trends[scoring.MetricCoherence])
	}
	if trends[scoring.MetricTopicSimilarity] != TrendImproving {
		t.Errorf("topic similarity: got %q, want improving", trends[scoring.MetricTopicSimilarity])
	}
	if trends[scoring.MetricUncertainty] != TrendStable {
		t.Errorf("uncertainty: got %q, want stable", trends[scoring.MetricUncertainty])
	}
}

func TestWindow_MinimumCapacityRaised(t *testing.T) {
	w := NewWindow(Config{Capacity: 0, Epsilon: 0.02})
	w.Record(coherenceSnap(0.9))
	w.Record(coherenceSnap(0.1))
	if w.Len() != 2 {
		t.Errorf("len: got %d, want 2", w.Len())
	}
	if got := w.Trend(scoring.MetricCoherence); got != TrendDegrading {
		t.Errorf("got %q, want degrading", got)
	}
}
