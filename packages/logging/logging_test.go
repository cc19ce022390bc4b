package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"trace", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatText, ParseFormat("xml"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	logger.Debug("hidden")
	logger.Info("shown", "request", "req_1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"request":"req_1"`)
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	logger := rec.Logger().With("component", "test")

	logger.Info("first")
	logger.Error("second", "error", errors.New("boom"))

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "test", entries[0].Attrs["component"])
	assert.Equal(t, LevelError, entries[1].Level)
	assert.EqualError(t, entries[1].Attrs["error"].(error), "boom")
	assert.Equal(t, []string{"second"}, rec.Messages(LevelWarn))

	rec.Reset()
	assert.Empty(t, rec.Entries())
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	logger := NewRecorder().Logger()
	assert.Same(t, logger, OrNop(logger))
}
