package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_TerminalWithoutOutputDirDiscards(t *testing.T) {
	log, err := newLogger("debug", "terminal", "")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewLogger_TerminalWritesToOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	log, err := newLogger("info", "terminal", dir)
	require.NoError(t, err)

	log.Warn("terminal resized")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "clusters.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "terminal resized")
}

func TestNewLogger_HeadlessLevel(t *testing.T) {
	log, err := newLogger("warn", "headless", "")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = newLogger("loud", "headless", "")
	assert.Error(t, err)
}

func TestCreateOutputFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	f, err := createOutputFile(dir, "trace.jsonl")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, filepath.Join(dir, "trace.jsonl"))
}
