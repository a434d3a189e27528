package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("trade applied", zap.String("launch_id", "l1"))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "trade applied", entry["msg"])
	assert.Equal(t, "l1", entry["launch_id"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry["caller"], "logging/logger_test.go")
}

func TestNewWithWriter_DevelopmentDefaultsToDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(Config{Development: true, Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Debug("visible")
	require.NoError(t, logger.Sync())
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "visible")
}

func TestNewWithWriter_Invalid(t *testing.T) {
	_, err := NewWithWriter(Config{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewWithWriter(Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
