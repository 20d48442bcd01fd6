package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidofinance/blockview/internal/env"
)

func Test_parseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{name: "debug", level: "debug", want: slog.LevelDebug},
		{name: "warn upper", level: "WARN", want: slog.LevelWarn},
		{name: "error", level: "Error", want: slog.LevelError},
		{name: "unknown falls back to info", level: "verbose", want: slog.LevelInfo},
		{name: "empty", level: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLevel(tt.level); got != tt.want {
				t.Errorf("parseLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_newHandler_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := slog.New(newHandler(buf, "json", slog.LevelInfo))

	log.Debug("hidden")
	log.Info("block fetched", slog.Int64("number", 42))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "block fetched", line["msg"])
	assert.EqualValues(t, 42, line["number"])
}

func TestNew_LocalSkipsSentry(t *testing.T) {
	log, client, err := New(&env.AppConfig{Env: LocalEnv, LogLevel: "INFO", SentryDSN: "https://key@sentry.invalid/1"})
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.Nil(t, client)
}
