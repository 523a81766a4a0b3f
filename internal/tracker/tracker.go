// Package tracker maintains a bounded window of recent metric snapshots and
// derives per-metric trends from it.
package tracker

import "github.com/danielpatrickdp/duologue/internal/scoring"

// #region trend

// Trend classifies the direction of a metric over the tracked window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDegrading Trend = "degrading"
)

// #endregion trend

// #region config

// Config holds the window tuning knobs.
type Config struct {
	Capacity int     // max snapshots kept; oldest evicted first
	Epsilon  float32 // half-mean difference below this counts as stable
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity: 5,
		Epsilon:  0.02,
	}
}

// #endregion config

// #region window

// Window is a capacity-bounded FIFO of metric snapshots for one
// conversation. Not safe for concurrent use; each conversation owns its own.
type Window struct {
	config    Config
	snapshots []scoring.Snapshot
}

// NewWindow creates an empty window. A capacity under 2 is raised to 2 so
// a trend can always be derived once enough turns arrive.
func NewWindow(config Config) *Window {
	if config.Capacity < 2 {
		config.Capacity = 2
	}
	return &Window{config: config}
}

// Record appends a snapshot, evicting the oldest entry when full.
func (w *Window) Record(snap scoring.Snapshot) {
	w.snapshots = append(w.snapshots, snap)
	if len(w.snapshots) > w.config.Capacity {
		w.snapshots = w.snapshots[1:]
	}
}

// Len returns the number of snapshots currently held.
func (w *Window) Len() int {
	return len(w.snapshots)
}

// Snapshots returns a copy of the window contents, oldest first.
func (w *Window) Snapshots() []scoring.Snapshot {
	out := make([]scoring.Snapshot, len(w.snapshots))
	copy(out, w.snapshots)
	return out
}

// #endregion window

// #region trend-derivation

// Trend compares the mean of the window's first half against its second
// half (the middle element of an odd window falls in the second half).
// Fewer than 2 snapshots always yields TrendStable.
func (w *Window) Trend(m scoring.Metric) Trend {
	n := len(w.snapshots)
	if n < 2 {
		return TrendStable
	}

	half := n / 2
	earlier := w.mean(m, 0, half)
	later := w.mean(m, half, n)

	diff := later - earlier
	switch {
	case diff < -w.config.Epsilon:
		return TrendDegrading
	case diff > w.config.Epsilon:
		return TrendImproving
	}
	return TrendStable
}

// Trends returns the trend for every metric.
func (w *Window) Trends() map[scoring.Metric]Trend {
	out := make(map[scoring.Metric]Trend, len(scoring.Metrics))
	for _, m := range scoring.Metrics {
		out[m] = w.Trend(m)
	}
	return out
}

func (w *Window) mean(m scoring.Metric, from, to int) float32 {
	var sum float32
	for i := from; i < to; i++ {
		sum += w.snapshots[i].Value(m)
	}
	return sum / float32(to-from)
}

// #endregion trend-derivation
