// Package monitoring writes structured log events as one JSON object per
// line.
package monitoring

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Component string         `json:"component"`
	EventType string         `json:"event_type"`
	Details   map[string]any `json:"details,omitempty"`
}

type Logger interface {
	Log(level LogLevel, eventType string, message string, details map[string]any)
}

type logger struct {
	component string
	minLevel  LogLevel
	mu        sync.Mutex
	enc       *json.Encoder
}

// NewLogger returns a Logger for component that writes entries at minLevel
// or above to w.
func NewLogger(component string, w io.Writer, minLevel LogLevel) Logger {
	return &logger{
		component: component,
		minLevel:  minLevel,
		enc:       json.NewEncoder(w),
	}
}

func (l *logger) Log(level LogLevel, eventType string, message string, details map[string]any) {
	if level < l.minLevel {
		return
	}
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   message,
		Component: l.component,
		EventType: eventType,
		Details:   details,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	//nolint:errcheck // logging never fails the caller.
	l.enc.Encode(entry)
}

type nop struct{}

func (nop) Log(LogLevel, string, string, map[string]any) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nop{}
}

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name, in any case, to a LogLevel. Unknown names
// map to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}
