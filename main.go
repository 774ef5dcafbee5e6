package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pthm-cable/clusters/config"
	"github.com/pthm-cable/clusters/game"
	"github.com/pthm-cable/clusters/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "graphics", "Front end: graphics, terminal or headless")
	logStats := flag.Bool("log-stats", false, "Log window stats and perf on every flush")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty = disabled)")
	trace := flag.Bool("trace", false, "Export frame spans to stdout")

	flag.Parse()

	log, err := newLogger(*logLevel, *mode, *outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, runOptions{
		configPath:  *configPath,
		mode:        *mode,
		logStats:    *logStats,
		outputDir:   *outputDir,
		seed:        *seed,
		maxTicks:    *maxTicks,
		metricsAddr: *metricsAddr,
		trace:       *trace,
	}); err != nil {
		log.Error("simulation failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

type runOptions struct {
	configPath  string
	mode        string
	logStats    bool
	outputDir   string
	seed        int64
	maxTicks    int
	metricsAddr string
	trace       bool
}

func run(log *zap.Logger, opts runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	traceCfg := telemetry.TracingConfig{
		Enabled:     opts.trace,
		ServiceName: "clusters",
	}
	if opts.trace && opts.mode == "terminal" {
		// tcell owns stdout; spans go to the output dir or nowhere
		traceCfg.Enabled = false
		if opts.outputDir != "" {
			f, err := createOutputFile(opts.outputDir, "trace.jsonl")
			if err != nil {
				return err
			}
			defer f.Close()
			traceCfg.Enabled = true
			traceCfg.Writer = f
		} else {
			log.Warn("tracing needs -output-dir in terminal mode; disabled")
		}
	}
	shutdownTracing, err := telemetry.InitTracing(ctx, traceCfg, log)
	if err != nil {
		return err
	}
	defer telemetry.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	var metrics *telemetry.Metrics
	if opts.metricsAddr != "" {
		metrics, err = telemetry.NewMetrics(prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		srv := serveMetrics(opts.metricsAddr, metrics, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	g, err := game.NewGame(cfg, game.Options{
		Seed:      opts.seed,
		LogStats:  opts.logStats,
		OutputDir: opts.outputDir,
		Metrics:   metrics,
	}, log)
	if err != nil {
		return err
	}
	defer g.Unload()

	switch opts.mode {
	case "headless":
		return g.RunHeadless(ctx, opts.maxTicks)
	case "terminal":
		return g.RunTerminal(ctx, opts.maxTicks)
	case "graphics":
		return g.RunGraphics(ctx, opts.maxTicks)
	}
	return fmt.Errorf("unknown mode %q", opts.mode)
}

// newLogger builds a JSON production logger on stderr. Terminal mode owns
// the tty, so its logs go to a file in outputDir, or nowhere without one.
func newLogger(level, mode, outputDir string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	outputs := []string{"stderr"}
	if mode == "terminal" {
		if outputDir == "" {
			return zap.NewNop(), nil
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
		outputs = []string{filepath.Join(outputDir, "clusters.log")}
	}

	cfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      outputs,
		ErrorOutputPaths: outputs,
		DisableCaller:    true,
	}
	return cfg.Build()
}

func createOutputFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return f, nil
}

func serveMetrics(addr string, metrics *telemetry.Metrics, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server exited", zap.Error(err))
		}
	}()

	log.Info("serving Prometheus metrics", zap.String("addr", addr))
	return srv
}
