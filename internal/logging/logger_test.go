package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdb/askdb/internal/config"
)

func newTestLogger(t *testing.T, level, format string) (*Logger, *bytes.Buffer) {
	t.Helper()

	logger, err := NewLogger(config.LoggingConfig{Level: level, Format: format, Output: "stderr"})
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	logger.output = buf

	return logger, buf
}

func TestLogLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(t, "warn", "text")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Errorf("error %s", "message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestJSONFormat(t *testing.T) {
	logger, buf := newTestLogger(t, "info", "json")

	logger.WithField("request_id", "abc123").Info("query executed")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "query executed", entry.Message)
	assert.Equal(t, "abc123", entry.Fields["request_id"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestWithErrorAndFields(t *testing.T) {
	logger, buf := newTestLogger(t, "debug", "text")

	logger.WithFields(map[string]interface{}{"kind": "postgres"}).
		Error("execution failed", errors.New("connection reset"))

	out := buf.String()
	assert.Contains(t, out, "execution failed")
	assert.Contains(t, out, "kind=postgres")
	assert.Contains(t, out, "error=connection reset")
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	logger, buf := newTestLogger(t, "info", "text")

	_ = logger.WithField("child", "only")
	logger.Info("parent message")

	assert.NotContains(t, buf.String(), "child=only")
}

func TestInvalidOutput(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "syslog"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log output")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, WarnLevel, parseLogLevel("WARNING"))
	assert.Equal(t, InfoLevel, parseLogLevel("unknown"))
}
