package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20.0, cfg.Proximity.MinThreshold)
	assert.Equal(t, 200.0, cfg.Proximity.MaxThreshold)
	assert.Equal(t, 50, cfg.Seeding.Count)
	assert.Equal(t, 30.0, cfg.Seeding.MinDistance)
	assert.Equal(t, 6, cfg.Proximity.MaxWeight)
	assert.Equal(t, 0.08, cfg.Proximity.Step)
	assert.False(t, cfg.Proximity.CompareSpawnedSamePass)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, cfg.Derived.BodyColor)
}

func TestLoadMergesUserFile(t *testing.T) {
	path := writeFile(t, `
proximity:
  min_threshold: 10
  max_threshold: 90
body:
  color: "#ff0000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Proximity.MinThreshold)
	assert.Equal(t, 90.0, cfg.Proximity.MaxThreshold)
	// Untouched fields keep their defaults
	assert.Equal(t, 50, cfg.Seeding.Count)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, cfg.Derived.BodyColor)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"thresholds equal", "proximity: {min_threshold: 50, max_threshold: 50}"},
		{"thresholds inverted", "proximity: {min_threshold: 300, max_threshold: 200}"},
		{"negative count", "seeding: {count: -1}"},
		{"zero attempts", "seeding: {max_attempts: 0}"},
		{"bad color", `body: {color: "not-a-color"}`},
		{"zero body", "body: {width: 0}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfiguration)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Proximity.MaxThreshold = 150

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 150.0, loaded.Proximity.MaxThreshold)
	assert.Equal(t, cfg.Seeding, loaded.Seeding)
}
