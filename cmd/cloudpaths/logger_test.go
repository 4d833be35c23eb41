package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/cloudpaths/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanout_RespectsEachLevel(t *testing.T) {
	var debug, info bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}
	log := slog.New(h).With("run_id", "abc")

	log.Debug("curve skipped")
	log.Info("batch complete", "paths", 120)

	assert.Contains(t, debug.String(), "curve skipped")
	assert.Contains(t, debug.String(), "batch complete")
	assert.NotContains(t, info.String(), "curve skipped")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(info.Bytes(), &rec))
	assert.Equal(t, "abc", rec["run_id"])
	assert.Equal(t, float64(120), rec["paths"])
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetupLogger_WritesRotatedFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "cloudpaths.log")
	cfg := config.Default().Log
	cfg.File = path

	closeLog := setupLogger(cfg)
	slog.Info("cloudpaths starting", "model", "branching")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"cloudpaths starting"`)
}
