package monitoring_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/davidvella/dumpsort/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := monitoring.NewLogger("sorter", &buf, monitoring.INFO)

	l.Log(monitoring.DEBUG, "run_spilled", "dropped", nil)
	l.Log(monitoring.INFO, "range_sorted", "sorted range", map[string]any{"lines": 3})
	l.Log(monitoring.ERROR, "range_failed", "boom", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var entry monitoring.LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "sorter", entry.Component)
	assert.Equal(t, "range_sorted", entry.EventType)
	assert.Equal(t, "sorted range", entry.Message)
	assert.Equal(t, 3.0, entry.Details["lines"])
	assert.False(t, entry.Timestamp.IsZero())

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "ERROR", entry.Level)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want monitoring.LogLevel
	}{
		{"debug", monitoring.DEBUG},
		{"WARN", monitoring.WARN},
		{"error", monitoring.ERROR},
		{"info", monitoring.INFO},
		{"bogus", monitoring.INFO},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, monitoring.ParseLevel(tt.in))
		})
	}
	assert.Equal(t, "UNKNOWN", monitoring.LogLevel(42).String())
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		monitoring.Nop().Log(monitoring.ERROR, "x", "y", map[string]any{"a": 1})
	})
}
