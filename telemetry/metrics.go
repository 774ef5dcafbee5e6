package telemetry

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pthm-cable/clusters/components"
)

// Metrics bundles the Prometheus metrics of a running simulation.
type Metrics struct {
	gatherer prometheus.Gatherer

	Bodies        prometheus.Gauge
	NeighbourPair prometheus.Gauge
	Spawned       prometheus.Counter
	Culled        *prometheus.CounterVec
	Passes        prometheus.Counter
	FrameSeconds  prometheus.Histogram
}

// NewMetrics registers simulation metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	bodies, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clusters_bodies",
		Help: "Live bodies after the latest proximity pass.",
	}), "clusters_bodies")
	if err != nil {
		return nil, err
	}
	pairs, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clusters_neighbour_pairs",
		Help: "Neighbour pairs recorded by the latest proximity pass.",
	}), "clusters_neighbour_pairs")
	if err != nil {
		return nil, err
	}
	spawned, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clusters_spawned_total",
		Help: "Bodies spawned next to too-close pairs.",
	}), "clusters_spawned_total")
	if err != nil {
		return nil, err
	}
	culled, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clusters_culled_total",
		Help: "Bodies culled, labeled by reason (isolated or crowded).",
	}, []string{"reason"}), "clusters_culled_total")
	if err != nil {
		return nil, err
	}
	passes, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clusters_passes_total",
		Help: "Proximity passes run.",
	}), "clusters_passes_total")
	if err != nil {
		return nil, err
	}
	frames, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "clusters_frame_seconds",
		Help:    "Wall time of one update, event and paint cycle.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.025, 0.05, 0.1, 0.25},
	}), "clusters_frame_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:      gatherer,
		Bodies:        bodies,
		NeighbourPair: pairs,
		Spawned:       spawned,
		Culled:        culled,
		Passes:        passes,
		FrameSeconds:  frames,
	}, nil
}

// ObservePass updates the metrics from one proximity pass.
func (m *Metrics) ObservePass(s components.PassStats) {
	if m == nil {
		return
	}
	m.Passes.Inc()
	m.Bodies.Set(float64(s.Survivors))
	m.NeighbourPair.Set(float64(s.Pairs))
	m.Spawned.Add(float64(s.Spawned))
	m.Culled.WithLabelValues("isolated").Add(float64(s.CulledIsolated))
	m.Culled.WithLabelValues("crowded").Add(float64(s.CulledCrowded))
}

// ObserveFrame records the duration of one frame.
func (m *Metrics) ObserveFrame(d time.Duration) {
	if m == nil {
		return
	}
	m.FrameSeconds.Observe(d.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register registers c, returning the already registered collector of the
// same type when one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
