package game

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/clusters/config"
	"github.com/pthm-cable/clusters/event"
	"github.com/pthm-cable/clusters/renderer"
	"github.com/pthm-cable/clusters/systems"
	"github.com/pthm-cable/clusters/telemetry"
)

func newTestGame(t *testing.T, mutate func(*config.Config), opts Options) *Game {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	g, err := NewGame(cfg, opts, nil)
	require.NoError(t, err)
	t.Cleanup(g.Unload)
	return g
}

// ---------- construction ----------

func TestNewGame_SeedsPopulation(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	assert.Equal(t, 50, g.Registry().BodyCount())
	assert.Equal(t, 51, g.Registry().Len(), "bodies plus the controller")
	assert.Equal(t, int64(7), g.Seed())
	assert.True(t, g.LinksVisible())
	assert.Equal(t, int32(0), g.Tick())
}

func TestNewGame_RejectsThresholds(t *testing.T) {
	cfg := config.Default()
	cfg.Proximity.MinThreshold = 200
	cfg.Proximity.MaxThreshold = 200

	_, err := NewGame(cfg, Options{Seed: 1}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfiguration)
}

func TestNewGame_SamplingExhausted(t *testing.T) {
	cfg := config.Default()
	cfg.Seeding.Bounds = config.RectConfig{X: 0, Y: 0, W: 10, H: 10}
	cfg.Seeding.Count = 5
	cfg.Seeding.MaxAttempts = 50

	_, err := NewGame(cfg, Options{Seed: 1}, nil)
	assert.ErrorIs(t, err, systems.ErrSamplingExhausted)
}

// ---------- frame ----------

func TestFrame_PaintsEveryBodyAndLink(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	var canvas renderer.Recorder

	require.NoError(t, g.Frame(context.Background(), nil, &canvas))
	assert.Equal(t, int32(1), g.Tick())
	assert.Equal(t, 50, g.Controller().LastPass().Bodies)

	prox := g.Registry().Proximity(g.Controller().Entity())
	require.NotNil(t, prox)
	bodies := g.Registry().BodyCount()
	assert.Len(t, canvas.Rects(), bodies)
	assert.Len(t, canvas.Lines(), bodies+len(prox.Pairs), "one weight tick per body plus one line per pair")
}

func TestFrame_ClearsCanvas(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	var canvas renderer.Recorder

	require.NoError(t, g.Frame(context.Background(), nil, &canvas))
	require.NoError(t, g.Frame(context.Background(), nil, &canvas))
	assert.Len(t, canvas.Rects(), g.Registry().BodyCount(), "only the latest frame is kept")
}

func TestFrame_ToggleLinks(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	var canvas renderer.Recorder

	toggle := []event.Event{{Kind: event.KindToggleLinks}}
	require.NoError(t, g.Frame(context.Background(), toggle, &canvas))
	assert.False(t, g.LinksVisible())
	assert.Len(t, canvas.Lines(), g.Registry().BodyCount())

	require.NoError(t, g.Frame(context.Background(), toggle, &canvas))
	assert.True(t, g.LinksVisible())
}

func TestFrame_PauseSkipsUpdates(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	var canvas renderer.Recorder
	ctx := context.Background()

	// The pause lands after this frame's update
	require.NoError(t, g.Frame(ctx, []event.Event{{Kind: event.KindPause}}, &canvas))
	assert.True(t, g.Paused())
	assert.Equal(t, int32(1), g.Tick())

	bodies := g.Registry().BodyCount()
	require.NoError(t, g.Frame(ctx, nil, &canvas))
	assert.Equal(t, int32(1), g.Tick())
	assert.Equal(t, bodies, g.Registry().BodyCount())
	assert.Len(t, canvas.Rects(), bodies, "paused frames still paint")

	require.NoError(t, g.Frame(ctx, []event.Event{{Kind: event.KindPause}}, &canvas))
	assert.False(t, g.Paused())
	require.NoError(t, g.Frame(ctx, nil, &canvas))
	assert.Equal(t, int32(2), g.Tick())
}

func TestFrame_Quit(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	var canvas renderer.Recorder

	err := g.Frame(context.Background(), []event.Event{{Kind: event.KindQuit}}, &canvas)
	assert.ErrorIs(t, err, ErrQuit)
	assert.True(t, g.Quit())
	assert.NotEmpty(t, canvas.Rects(), "the quitting frame completes")

	tick := g.Tick()
	assert.ErrorIs(t, g.Frame(context.Background(), nil, &canvas), ErrQuit)
	assert.Equal(t, tick, g.Tick())
}

func TestFrame_ContextCanceled(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, g.Frame(ctx, nil, nil), context.Canceled)
	assert.Equal(t, int32(0), g.Tick())
}

// ---------- telemetry ----------

func TestFrame_FlushesTelemetryWindows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var windows []telemetry.WindowStats

	cfg := config.Default()
	cfg.Telemetry.StatsWindow = 5
	g, err := NewGame(cfg, Options{
		Seed:          3,
		OutputDir:     dir,
		StatsCallback: func(ws telemetry.WindowStats) { windows = append(windows, ws) },
	}, nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, g.Frame(context.Background(), nil, nil))
	}
	g.Unload()

	require.Len(t, windows, 2)
	assert.Equal(t, int32(5), windows[0].WindowEndTick)
	assert.Equal(t, int32(10), windows[1].WindowEndTick)
	assert.Equal(t, 5, windows[0].Passes)
	assert.Equal(t, 50, windows[0].PeakBodies)

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 3)
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dir, "bookmarks.csv"))
}

// ---------- drivers ----------

func TestRunHeadless_StopsAtMaxTicks(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	require.NoError(t, g.RunHeadless(context.Background(), 3))
	assert.LessOrEqual(t, g.Tick(), int32(3))
	if g.Tick() < 3 {
		assert.Zero(t, g.Registry().BodyCount(), "an early stop means the population died out")
	}
}

func TestRunHeadless_StopsOnCancel(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, g.RunHeadless(ctx, 0))
	assert.Equal(t, int32(0), g.Tick())
}

func TestRunTerminal_QuitKey(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) { c.Screen.TargetFPS = 500 }, Options{})

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, g.runTerminal(ctx, screen, 0))
	assert.True(t, g.Quit())
}

func TestRunTerminal_MaxTicks(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) { c.Screen.TargetFPS = 500 }, Options{})

	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, g.runTerminal(ctx, screen, 2))
	assert.Equal(t, int32(2), g.Tick())
}
