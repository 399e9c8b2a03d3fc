package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, levelName, formatName string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(levelName, formatName)
	SetOutput(&buf)
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), "level %q", name)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "warn", "text")

	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "error 4")
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t, "info", "json")

	Info("scored %d properties", 12)

	line := strings.TrimSpace(buf.String())
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &rec))
	assert.Equal(t, "scored 12 properties", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestDebugIncludesSource(t *testing.T) {
	buf := capture(t, "debug", "text")

	Debug("with source")

	assert.Contains(t, buf.String(), "logger_test.go")
}

func TestCurrentFollowsInit(t *testing.T) {
	capture(t, "warn", "json")
	assert.False(t, current().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, current().Enabled(context.Background(), slog.LevelWarn))

	capture(t, "debug", "text")
	assert.True(t, current().Enabled(context.Background(), slog.LevelDebug))
}
