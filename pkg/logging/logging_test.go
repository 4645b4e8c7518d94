package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
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
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"DEBUG", LevelDebug},
		{"Warning", LevelWarn},
		{"dEbUg", LevelDebug},
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
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"text", FormatText},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFormat(tt.input))
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})

	logger.Debug("hidden")
	logger.Info("server started", "port", 3000)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "server started", entry["msg"])
	assert.EqualValues(t, 3000, entry["port"])
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mockrest.log")
	var console bytes.Buffer

	logger, closer, err := NewWithFile(Config{Level: LevelInfo, Format: FormatText, Output: &console, File: path})
	require.NoError(t, err)

	logger.Info("hello", "resource", "users")
	require.NoError(t, closer.Close())

	assert.Contains(t, console.String(), "resource=users")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"resource":"users"`)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatText, Output: &buf})

	ctx := WithContext(context.Background(), logger.With("requestId", "abc"))
	FromContext(ctx).Info("handled")

	assert.Contains(t, buf.String(), "requestId=abc")
	assert.NotNil(t, FromContext(context.Background()))
}

func TestParseStrict(t *testing.T) {
	lvl, err := ParseLevelStrict("WARN")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	_, err = ParseLevelStrict("loud")
	assert.Error(t, err)

	f, err := ParseFormatStrict("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormatStrict("xml")
	assert.Error(t, err)
}
