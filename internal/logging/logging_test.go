package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inbox-triage/internal/model"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	log, err := New(model.LogConfig{File: path, Level: "info"}, false)
	require.NoError(t, err)

	log.Info("emails loaded")
	log.Debug("hidden at info")
	_ = log.Sync()

	out := readLog(t, path)
	assert.Contains(t, out, `"msg":"emails loaded"`)
	assert.Contains(t, out, `"logger":"inbox-triage"`)
	assert.NotContains(t, out, "hidden at info")
}

func TestNew_DebugFlagOverridesLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(model.LogConfig{File: path, Level: "error"}, true)
	require.NoError(t, err)

	log.Debug("request sent")
	_ = log.Sync()

	assert.Contains(t, readLog(t, path), "request sent")
}

func TestNew_InvalidLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	_, err := New(model.LogConfig{File: path, Level: "loud"}, false)
	assert.Error(t, err)
}

func TestNew_EmptyFileIsNop(t *testing.T) {
	log, err := New(model.LogConfig{}, false)
	require.NoError(t, err)
	log.Info("goes nowhere")
}
