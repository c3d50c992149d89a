package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestNewWithWriter_FiltersByLevel verifies the level option is honored on the console core.
func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, c, err := NewWithWriter(Options{Level: "warn"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("k", "v"))
	require.NoError(t, c.Close())

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
	require.Contains(t, out, "webkvm.")
}

// TestNewWithWriter_BadLevelDefaultsToInfo verifies unknown levels fall back to info.
func TestNewWithWriter_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, c, err := NewWithWriter(Options{Level: "loud"}, zapcore.AddSync(&buf))
	require.NoError(t, err)
	logger.Debug("debug line")
	logger.Info("info line")
	require.NoError(t, c.Close())

	require.NotContains(t, buf.String(), "debug line")
	require.Contains(t, buf.String(), "info line")
}

// TestNewWithWriter_File verifies JSON records are written to the log file.
func TestNewWithWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webkvm.log")
	var buf bytes.Buffer
	logger, c, err := NewWithWriter(Options{Level: "info", File: path, MaxSizeMB: 1}, zapcore.AddSync(&buf))
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"to file"`)
}
