// Package log provides structured event logging.
// Events are appended as JSON lines to log.jsonl through zerolog.
package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event type constants.
const (
	EventSessionRestored  = "session_restored"
	EventLoginSucceeded   = "login_succeeded"
	EventLoginFailed      = "login_failed"
	EventSignupSucceeded  = "signup_succeeded"
	EventSignupFailed     = "signup_failed"
	EventLogout           = "logout"
	EventAuthExpired      = "auth_expired"
	EventRequestFailed    = "request_failed"
	EventViewActivated    = "view_activated"
	EventStaleLoadDropped = "stale_load_discarded"
)

const logFile = "log.jsonl"

// LogEvent represents a single structured event written to the log.
type LogEvent struct {
	Time       time.Time `json:"time"`
	Level      string    `json:"level,omitempty"`
	Event      string    `json:"event"`
	View       string    `json:"view,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path,omitempty"`
	Status     int       `json:"status,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// Logger writes append-only JSONL events to a log file.
// A nil *Logger discards everything.
type Logger struct {
	path string
	zl   zerolog.Logger

	mu sync.Mutex
	f  *os.File
}

// NewLogger creates a Logger that writes to log.jsonl inside dir.
// Creates dir if it does not already exist. Does not truncate an existing log file.
func NewLogger(dir string, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, logFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return &Logger{
		path: path,
		zl:   zerolog.New(f).Level(lvl),
		f:    f,
	}, nil
}

// NewWriterLogger creates a Logger that writes to w. ReadAll is unavailable.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w)}
}

// Close closes the underlying log file.
func (l *Logger) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.f.Close()
	l.f = nil
	return err
}

// Append writes a single LogEvent as one JSON line.
// If event.Time is the zero value, it is set to time.Now().UTC().
// Events carrying an Error are written at warn level, view changes at debug.
func (l *Logger) Append(event LogEvent) error {
	if l == nil {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var ev *zerolog.Event
	switch {
	case event.Error != "":
		ev = l.zl.Warn()
	case event.Event == EventViewActivated:
		ev = l.zl.Debug()
	default:
		ev = l.zl.Info()
	}
	if ev == nil {
		// filtered by level
		return nil
	}

	ev = ev.Time(zerolog.TimestampFieldName, event.Time).Str("event", event.Event)
	if event.View != "" {
		ev = ev.Str("view", event.View)
	}
	if event.Phone != "" {
		ev = ev.Str("phone", event.Phone)
	}
	if event.Method != "" {
		ev = ev.Str("method", event.Method)
	}
	if event.Path != "" {
		ev = ev.Str("path", event.Path)
	}
	if event.Status != 0 {
		ev = ev.Int("status", event.Status)
	}
	if event.RequestID != "" {
		ev = ev.Str("request_id", event.RequestID)
	}
	if event.DurationMs != 0 {
		ev = ev.Int64("duration_ms", event.DurationMs)
	}
	if event.Error != "" {
		ev = ev.Str("error", event.Error)
	}
	ev.Msg(event.Message)

	return nil
}

// ReadAll reads and parses all events from the log file.
// Returns an empty slice (not an error) if the file does not exist.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	if l == nil || l.path == "" {
		return []LogEvent{}, nil
	}
	return ReadFile(l.path)
}

// ReadFile parses the JSONL log at path.
func ReadFile(path string) ([]LogEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []LogEvent{}, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event LogEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("parse log line %d: %w", lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	return events, nil
}

// Path returns the log file path, or "" for writer-backed loggers.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
