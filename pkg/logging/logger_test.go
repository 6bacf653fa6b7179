package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.Debug("capture scheduled", "trigger", "daily")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "capture scheduled", record["msg"])
	require.Equal(t, "daily", record["trigger"])
	require.Equal(t, "DEBUG", record["level"])
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	require.Zero(t, buf.Len())

	logger.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNewRejectsUnknownOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)

	_, err = New(Options{Format: "xml"})
	require.Error(t, err)
}
