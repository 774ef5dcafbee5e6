// Package game drives the simulation: seeding, the per-frame pass order,
// and the graphics, terminal and headless front ends.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/pthm-cable/clusters/camera"
	"github.com/pthm-cable/clusters/components"
	"github.com/pthm-cable/clusters/config"
	"github.com/pthm-cable/clusters/event"
	"github.com/pthm-cable/clusters/registry"
	"github.com/pthm-cable/clusters/renderer"
	"github.com/pthm-cable/clusters/systems"
	"github.com/pthm-cable/clusters/telemetry"
)

// ErrQuit is returned by Frame once a quit event has been delivered.
var ErrQuit = errors.New("quit requested")

// Options configures a Game instance.
type Options struct {
	Seed      int64              // RNG seed; 0 uses the current time
	LogStats  bool               // Log window stats and perf on every flush
	OutputDir string             // Directory for CSV output (empty = none)
	Metrics   *telemetry.Metrics // Prometheus metrics (nil = disabled)

	// Called with every flushed stats window
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config
	log *zap.Logger
	rng *rand.Rand

	reg     *registry.Registry
	ctrl    *systems.Controller
	sampler *systems.Sampler
	phases  *systems.SystemRegistry

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	metrics          *telemetry.Metrics
	logStats         bool
	statsCallback    func(telemetry.WindowStats)

	// Graphics front end
	camera                    *camera.Camera
	pending                   []event.Event
	screenWidth, screenHeight float32

	// State
	tick   int32
	paused bool
	quit   bool
	seed   int64
}

// NewGame seeds a population from cfg and installs the proximity controller.
func NewGame(cfg *config.Config, opts Options, log *zap.Logger) (*Game, error) {
	if log == nil {
		log = zap.NewNop()
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		cfg:              cfg,
		log:              log,
		rng:              rand.New(rand.NewSource(seed)),
		seed:             seed,
		reg:              registry.New(log),
		phases:           systems.NewSystemRegistry(),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		metrics:          opts.Metrics,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
	}
	g.reg.Handle(components.KindBody, systems.BodyBehavior{})

	template := bodyTemplate(cfg)
	ctrl, err := systems.NewController(g.reg, cfg.Proximity, template, g.rng, log)
	if err != nil {
		return nil, err
	}
	ctrl.SetObserver(systems.PassObserverFunc(g.observePass))
	g.ctrl = ctrl

	b := cfg.Seeding.Bounds
	bounds := components.Rect{X: float64(b.X), Y: float64(b.Y), W: float64(b.W), H: float64(b.H)}
	g.sampler = systems.NewSampler(bounds, cfg.Seeding.MinDistance, cfg.Seeding.MaxAttempts, g.rng)
	if _, err := systems.SeedBodies(g.reg, g.sampler, cfg.Seeding.Count, template); err != nil {
		g.reg.Shutdown()
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.reg.Shutdown()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		log.Warn("failed to write config snapshot", zap.Error(err))
	}

	log.Info("simulation seeded",
		zap.Int64("seed", seed),
		zap.Int("bodies", g.reg.BodyCount()),
		zap.Float64("min_threshold", cfg.Proximity.MinThreshold),
		zap.Float64("max_threshold", cfg.Proximity.MaxThreshold),
	)
	return g, nil
}

func bodyTemplate(cfg *config.Config) components.Body {
	return components.Body{
		Width:  float32(cfg.Body.Width),
		Height: float32(cfg.Body.Height),
		Color:  cfg.Derived.BodyColor,
	}
}

// observePass feeds every controller pass into the collectors.
func (g *Game) observePass(stats components.PassStats) {
	g.collector.ObservePass(stats)
	g.metrics.ObservePass(stats)
}

// Frame runs one tick in driver order: update pass, event pass, clear,
// paint pass. Presenting the canvas is left to the caller.
// Updates are skipped while paused; events and paint still run.
func (g *Game) Frame(ctx context.Context, events []event.Event, canvas renderer.Canvas) error {
	if g.quit {
		return ErrQuit
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := telemetry.Tracer().Start(ctx, "frame")
	defer span.End()
	span.SetAttributes(
		attribute.Int("tick", int(g.tick)),
		attribute.Int("bodies", g.reg.BodyCount()),
		attribute.Int("events", len(events)),
	)

	start := time.Now()
	g.perfCollector.StartTick()

	updated := !g.paused
	if updated {
		g.perfCollector.StartPhase(telemetry.PhaseUpdate)
		if err := g.update(ctx); err != nil {
			g.perfCollector.EndTick()
			span.RecordError(err)
			span.SetStatus(codes.Error, "update failed")
			return err
		}
	}

	g.perfCollector.StartPhase(telemetry.PhaseEvents)
	for _, ev := range events {
		g.handleEvent(ev)
	}

	g.perfCollector.StartPhase(telemetry.PhasePaint)
	if canvas != nil {
		canvas.Clear()
		g.reg.DispatchPaint(canvas)
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	if updated {
		g.tick++
		g.flushTelemetry()
	}
	g.perfCollector.EndTick()
	g.metrics.ObserveFrame(time.Since(start))

	if g.quit {
		return ErrQuit
	}
	return nil
}

// update runs the registry update pass under its own span.
func (g *Game) update(ctx context.Context) error {
	_, span := telemetry.Tracer().Start(ctx, "update")
	defer span.End()

	if err := g.reg.DispatchUpdate(); err != nil {
		return fmt.Errorf("tick %d: %w", g.tick, err)
	}
	last := g.ctrl.LastPass()
	span.SetAttributes(
		attribute.Int("pairs", last.Pairs),
		attribute.Int("spawned", last.Spawned),
		attribute.Int("culled", last.Culled()),
	)
	return nil
}

// handleEvent applies driver-level events and forwards every event to
// listening entities.
func (g *Game) handleEvent(ev event.Event) {
	switch ev.Kind {
	case event.KindQuit:
		g.quit = true
	case event.KindPause:
		g.paused = !g.paused
		g.log.Debug("pause toggled", zap.Bool("paused", g.paused), zap.Int32("tick", g.tick))
	}
	g.reg.DispatchEvent(ev)
}

// Unload flushes outputs and removes every entity.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		g.log.Warn("failed to close output files", zap.Error(err))
	}
	g.reg.Shutdown()
}

// Tick returns the number of completed update passes.
func (g *Game) Tick() int32 {
	return g.tick
}

// Paused reports whether updates are suspended.
func (g *Game) Paused() bool {
	return g.paused
}

// Quit reports whether a quit event has been delivered.
func (g *Game) Quit() bool {
	return g.quit
}

// Seed returns the RNG seed in use.
func (g *Game) Seed() int64 {
	return g.seed
}

// Registry exposes the entity registry.
func (g *Game) Registry() *registry.Registry {
	return g.reg
}

// Controller exposes the proximity controller.
func (g *Game) Controller() *systems.Controller {
	return g.ctrl
}

// LinksVisible reports whether neighbour links are painted.
func (g *Game) LinksVisible() bool {
	n := g.reg.Node(g.ctrl.Entity())
	return n != nil && n.CanPaint
}
