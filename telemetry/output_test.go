package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/clusters/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	require.NoError(t, err)
	assert.Nil(t, om)

	// Nil manager is a no-op
	assert.NoError(t, om.WriteTelemetry(WindowStats{}))
	assert.NoError(t, om.WriteBookmark(Bookmark{}))
	assert.NoError(t, om.Close())
	assert.Equal(t, "", om.Dir())
}

func TestOutputManager_WritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	require.NoError(t, err)

	require.NoError(t, om.WriteConfig(config.Default()))
	require.NoError(t, om.WriteTelemetry(WindowStats{WindowEndTick: 600, Bodies: 42, Spawned: 3}))
	require.NoError(t, om.WriteTelemetry(WindowStats{WindowEndTick: 1200, Bodies: 40}))
	require.NoError(t, om.WritePerf(PerfStats{PhasePct: map[string]float64{PhaseUpdate: 80}}, 600))
	require.NoError(t, om.WriteBookmark(Bookmark{Type: BookmarkExtinction, Tick: 1200, Description: "gone"}))
	require.NoError(t, om.Close())

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "one header and two rows")
	assert.True(t, strings.HasPrefix(lines[0], "window_end,passes,bodies,"))
	assert.True(t, strings.HasPrefix(lines[1], "600,0,42,"))

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(perf), "update_pct")

	bookmarks, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(bookmarks), "extinction,1200,gone")

	_, err = config.Load(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err, "written config loads back")
}
