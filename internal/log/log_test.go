package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "raw: %s", line)
		out = append(out, entry)
	}
	return out
}

func TestInfoWritesJSONWithKeyValues(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, LevelInfo)

	Info("content loaded", "kind", "messages", "count", 12)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "content loaded", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "messages", entries[0]["kind"])
	assert.EqualValues(t, 12, entries[0]["count"])
	assert.Contains(t, entries[0], "time")
}

func TestErrorPrependsErr(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, LevelInfo)

	Error("ics fetch failed", errors.New("boom"), "id", "parish")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, "boom", entries[0]["err"])
	assert.Equal(t, "parish", entries[0]["id"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, LevelInfo)

	Debug("hidden")
	assert.Empty(t, buf.String())

	SetLevel(LevelDebug)
	Debug("shown")
	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestOddKeyValueIgnored(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, LevelInfo)

	Info("odd", "a", 1, "dangling")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "dangling")
	assert.NotContains(t, entries[0], "!BADKEY")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
