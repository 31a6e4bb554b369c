package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentTagsJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Format: "json"}) })

	logger := Component("resolver")
	logger.Warn().Int("dropped_segments", 1).Msg("schedule truncated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "resolver", line["component"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "schedule truncated", line["message"])
	assert.EqualValues(t, 1, line["dropped_segments"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "error", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Format: "json"}) })

	logger := Component("test")
	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"DEBUG":    zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"off":      zerolog.Disabled,
		"nonsense": zerolog.InfoLevel,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "input %q", input)
	}
}

func TestConsoleFormatForBuffers(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, useConsole("auto", &buf))
	assert.True(t, useConsole("console", &buf))
	assert.False(t, useConsole("json", &buf))
}
