package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, false, "warn")
	require.NoError(t, err)

	log.Info().Msg("dropped")
	log.Warn().Str("operation", "create_hospital").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "hospitalcore", entry["service"])
	assert.Equal(t, "create_hospital", entry["operation"])
	assert.Contains(t, entry, "time")
}

func TestNewConsoleLoggerInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, true, "")
	require.NoError(t, err)
	log.Debug().Msg("below default level")
	log.Info().Msg("seeded")
	assert.NotContains(t, buf.String(), "below default level")
	assert.Contains(t, buf.String(), "seeded")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(nil, false, "chatty")
	require.ErrorContains(t, err, "parse log level")
}
