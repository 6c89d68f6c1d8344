package logging

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"disabled", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "warn")
	require.NoError(t, err)

	logger.Info().Msg("dropped")
	logger.Warn().Int("iteration", 3).Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.EqualValues(t, 3, line["iteration"])
	assert.Contains(t, line, "time")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty", true)
	assert.Error(t, err)
}
