package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{name: "empty uses default", level: "", expected: DefaultLevel},
		{name: "debug", level: "debug", expected: zerolog.DebugLevel},
		{name: "upper case", level: "ERROR", expected: zerolog.ErrorLevel},
		{name: "unknown uses default", level: "loud", expected: DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(&bytes.Buffer{}, tt.level, false)
			assert.Equal(t, tt.expected, logger.GetLevel())
		})
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", false)

	logger.Info().Str("path", "/listings/").Msg("request")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request", rec["message"])
	assert.Equal(t, "/listings/", rec["path"])
	assert.Equal(t, "info", rec["level"])
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", false)

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
