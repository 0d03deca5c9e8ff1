package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		"DEBUG ":  logrus.DebugLevel,
		"warn":    logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"error":   logrus.ErrorLevel,
		"info":    logrus.InfoLevel,
		"":        logrus.InfoLevel,
		"verbose": logrus.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	log := New(Options{Level: "error", Debug: true, Output: &bytes.Buffer{}})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNew_JSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{JSON: true, Output: &buf})
	log.WithField("owner", "w3c").Info("collected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "collected", entry["msg"])
	assert.Equal(t, "w3c", entry["owner"])
}

func TestNew_TextFormatterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf})
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
