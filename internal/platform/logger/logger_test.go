package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "production")

	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Info("session started", "session_id", "s1")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "session started", line["msg"])
	assert.Equal(t, "votegate", line["service"])
	assert.Equal(t, "s1", line["session_id"])
}

func TestLocalLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "LOCAL")
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))
}
