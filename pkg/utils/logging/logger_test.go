package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_SplitsLevelsBetweenConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	dir := filepath.Join(t.TempDir(), "logs")

	logger, path, err := New(Options{Env: "test", Dir: dir, Console: zapcore.AddSync(&console)})
	require.NoError(t, err)

	logger.Debug("bucket sizes", zap.Int("buckets", 2))
	logger.Info("solve finished", zap.Uint64("found", 3))
	require.NoError(t, logger.Sync())

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "test_"))

	assert.Contains(t, console.String(), "solve finished")
	assert.NotContains(t, console.String(), "bucket sizes")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "bucket sizes", entry["msg"])
	assert.Equal(t, "test", entry["env"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_Verbose(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := New(Options{Dir: t.TempDir(), Verbose: true, Console: zapcore.AddSync(&console)})
	require.NoError(t, err)

	logger.Debug("node budget", zap.Uint64("limit", 10))
	require.NoError(t, logger.Sync())
	assert.Contains(t, console.String(), "node budget")
}

func TestNew_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, _, err := New(Options{Dir: filepath.Join(file, "logs")})
	assert.Error(t, err)
}
