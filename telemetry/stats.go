package telemetry

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`
	Passes          int   `csv:"passes"`

	// Population at window end
	Bodies     int `csv:"bodies"`
	PeakBodies int `csv:"peak_bodies"`

	// Population churn during window
	Spawned        int     `csv:"spawned"`
	CulledIsolated int     `csv:"culled_isolated"`
	CulledCrowded  int     `csv:"culled_crowded"`
	MeanPairs      float64 `csv:"mean_pairs"`
	Comparisons    int     `csv:"comparisons"`

	// Weight distribution (sampled at window end)
	WeightMean float64 `csv:"weight_mean"`
	WeightStd  float64 `csv:"weight_std"`
	WeightP10  float64 `csv:"weight_p10"`
	WeightP50  float64 `csv:"weight_p50"`
	WeightP90  float64 `csv:"weight_p90"`
	WeightMax  float64 `csv:"weight_max"`
}

// Culled returns the total bodies removed during the window.
func (s WindowStats) Culled() int {
	return s.CulledIsolated + s.CulledCrowded
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution summarises a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
	Max           float64
}

// ComputeWeightStats calculates mean, standard deviation, percentiles and
// maximum. Empty input yields the zero Distribution.
func ComputeWeightStats(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	var d Distribution
	if n == 1 {
		d.Mean = values[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	}
	d.Max = floats.Max(values)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)
	return d
}

// MarshalLogObject implements zapcore.ObjectMarshaler for structured logging.
func (s WindowStats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt32("window_start", s.WindowStartTick)
	enc.AddInt32("window_end", s.WindowEndTick)
	enc.AddInt("passes", s.Passes)
	enc.AddInt("bodies", s.Bodies)
	enc.AddInt("peak_bodies", s.PeakBodies)
	enc.AddInt("spawned", s.Spawned)
	enc.AddInt("culled_isolated", s.CulledIsolated)
	enc.AddInt("culled_crowded", s.CulledCrowded)
	enc.AddFloat64("mean_pairs", s.MeanPairs)
	enc.AddInt("comparisons", s.Comparisons)
	enc.AddFloat64("weight_mean", s.WeightMean)
	enc.AddFloat64("weight_std", s.WeightStd)
	enc.AddFloat64("weight_p10", s.WeightP10)
	enc.AddFloat64("weight_p50", s.WeightP50)
	enc.AddFloat64("weight_p90", s.WeightP90)
	enc.AddFloat64("weight_max", s.WeightMax)
	return nil
}

// LogStats logs the window stats.
func (s WindowStats) LogStats(log *zap.Logger) {
	log.Info("stats", zap.Inline(s))
}
