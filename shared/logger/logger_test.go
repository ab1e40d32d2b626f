package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, level, format string) (*Logger, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	logger, err := New(&Config{
		Level:      level,
		Format:     format,
		TimeFormat: time.RFC3339,
		writer:     output,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	return logger, output
}

func TestNewJSONFormat(t *testing.T) {
	logger, output := newTestLogger(t, "debug", "json")

	logger.Debug("test debug message", slog.String("key", "value"))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &logEntry))

	assert.Equal(t, "DEBUG", logEntry["level"])
	assert.Equal(t, "test debug message", logEntry["msg"])
	assert.Equal(t, "value", logEntry["key"])
	assert.Contains(t, logEntry, "time")
}

func TestNewLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		filtered func(l *Logger)
		logged   func(l *Logger)
		wantMsg  string
	}{
		{
			name:     "info filters debug",
			level:    "info",
			filtered: func(l *Logger) { l.Debug("debug message") },
			logged:   func(l *Logger) { l.Info("info message") },
			wantMsg:  "info message",
		},
		{
			name:     "warn filters info",
			level:    "warn",
			filtered: func(l *Logger) { l.Info("info message") },
			logged:   func(l *Logger) { l.Warn("warn message") },
			wantMsg:  "warn message",
		},
		{
			name:     "error filters warn",
			level:    "error",
			filtered: func(l *Logger) { l.Warn("warn message") },
			logged:   func(l *Logger) { l.Error("error message") },
			wantMsg:  "error message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, output := newTestLogger(t, tt.level, "json")

			tt.filtered(logger)
			tt.logged(logger)

			lines := strings.Split(strings.TrimSpace(output.String()), "\n")
			require.Len(t, lines, 1)

			var logEntry map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(lines[0]), &logEntry))
			assert.Equal(t, tt.wantMsg, logEntry["msg"])
		})
	}
}

func TestNewConsoleFormat(t *testing.T) {
	for _, format := range []string{"console", "text"} {
		t.Run(format, func(t *testing.T) {
			logger, output := newTestLogger(t, "info", format)

			logger.Info("console test")

			// tint abbreviates the level to "INF"
			assert.Contains(t, output.String(), "INF")
			assert.Contains(t, output.String(), "console test")
		})
	}
}

func TestNewWithSource(t *testing.T) {
	output := &bytes.Buffer{}
	logger, err := New(&Config{
		Level:        "info",
		Format:       "json",
		EnableSource: true,
		writer:       output,
	})
	require.NoError(t, err)

	logger.Info("message with source")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &logEntry))

	assert.Contains(t, logEntry, "source")
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestLoggerWith(t *testing.T) {
	logger, output := newTestLogger(t, "info", "json")

	logger.With(slog.String("service", "api")).Info("operation complete")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &logEntry))

	assert.Equal(t, "api", logEntry["service"])
	assert.Equal(t, "operation complete", logEntry["msg"])
}

func TestLoggerWithGroup(t *testing.T) {
	logger, output := newTestLogger(t, "info", "json")

	logger.WithGroup("pipeline").Info("test message", slog.String("key", "value"))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &logEntry))

	require.Contains(t, logEntry, "pipeline")
	group := logEntry["pipeline"].(map[string]interface{})
	assert.Equal(t, "value", group["key"])
}

func TestLoggerWithAttrs(t *testing.T) {
	logger, output := newTestLogger(t, "info", "json")

	logger.WithAttrs(slog.String("job_id", "12345")).Info("test message")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(output.Bytes(), &logEntry))

	assert.Equal(t, "12345", logEntry["job_id"])
}
