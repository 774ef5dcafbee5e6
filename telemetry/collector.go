// Package telemetry provides population tracking, bookmarking, metrics and tracing.
package telemetry

import "github.com/pthm-cable/clusters/components"

// Collector accumulates proximity pass stats within tick windows and
// produces WindowStats.
type Collector struct {
	windowDurationTicks int32

	// Current window tracking
	windowStartTick int32

	// Counters for current window
	passes         int
	spawned        int
	culledIsolated int
	culledCrowded  int
	pairs          int
	comparisons    int
	peakBodies     int
}

// NewCollector creates a new stats collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: int32(windowTicks),
	}
}

// ObservePass records one proximity pass.
func (c *Collector) ObservePass(s components.PassStats) {
	c.passes++
	c.spawned += s.Spawned
	c.culledIsolated += s.CulledIsolated
	c.culledCrowded += s.CulledCrowded
	c.pairs += s.Pairs
	c.comparisons += s.Comparisons
	if s.Bodies > c.peakBodies {
		c.peakBodies = s.Bodies
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// bodies is the live body count and weights the current body weights.
func (c *Collector) Flush(currentTick int32, bodies int, weights []float64) WindowStats {
	var meanPairs float64
	if c.passes > 0 {
		meanPairs = float64(c.pairs) / float64(c.passes)
	}
	ws := ComputeWeightStats(weights)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Passes:          c.passes,

		Bodies:     bodies,
		PeakBodies: max(c.peakBodies, bodies),

		Spawned:        c.spawned,
		CulledIsolated: c.culledIsolated,
		CulledCrowded:  c.culledCrowded,
		MeanPairs:      meanPairs,
		Comparisons:    c.comparisons,

		WeightMean: ws.Mean,
		WeightStd:  ws.Std,
		WeightP10:  ws.P10,
		WeightP50:  ws.P50,
		WeightP90:  ws.P90,
		WeightMax:  ws.Max,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.passes = 0
	c.spawned = 0
	c.culledIsolated = 0
	c.culledCrowded = 0
	c.pairs = 0
	c.comparisons = 0
	c.peakBodies = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
