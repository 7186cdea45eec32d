// Package logging configures the process-wide structured logger. Everything
// goes to the log file as JSON lines; the console only shows warnings unless
// debug output is enabled.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.Mutex
	logFile *os.File
	logger  = newLogger(os.Stderr, nil, zerolog.WarnLevel)
)

// levelFilter drops events below min before they reach w.
type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f levelFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f levelFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}

func newLogger(console io.Writer, file io.Writer, consoleLevel zerolog.Level) zerolog.Logger {
	writers := []io.Writer{
		levelFilter{
			w:   zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339},
			min: consoleLevel,
		},
	}
	if file != nil {
		writers = append(writers, file)
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// Init opens (or creates) the log file at logPath and routes all log events
// to it. An empty path keeps console-only logging.
func Init(logPath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	consoleLevel := zerolog.WarnLevel
	if debug {
		consoleLevel = zerolog.DebugLevel
	}

	if logPath == "" {
		logger = newLogger(os.Stderr, nil, consoleLevel)
		return nil
	}

	if dir := filepath.Dir(logPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = file
	logger = newLogger(os.Stderr, logFile, consoleLevel)
	return nil
}

// Close flushes and releases the log file, reverting to console-only logging.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	logger = newLogger(os.Stderr, nil, zerolog.WarnLevel)
	err := logFile.Close()
	logFile = nil
	return err
}

func current() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// LogEvent records an informational event.
func LogEvent(format string, args ...any) {
	l := current()
	l.Info().Msg(fmt.Sprintf(format, args...))
}

// Debug records a debug-level event.
func Debug(format string, args ...any) {
	l := current()
	l.Debug().Msg(fmt.Sprintf(format, args...))
}

// Warn records a warning.
func Warn(format string, args ...any) {
	l := current()
	l.Warn().Msg(fmt.Sprintf(format, args...))
}

// LogRequest records a payload crossing the backend boundary.
func LogRequest(direction, host, model string, payload any) {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	hostValue := strings.TrimSpace(host)
	if hostValue == "" {
		hostValue = "unknown"
	}
	modelValue := strings.TrimSpace(model)
	if modelValue == "" {
		modelValue = "unknown"
	}
	l := current()
	l.Debug().
		Str("direction", dir).
		Str("host", hostValue).
		Str("model", modelValue).
		Str("payload", formatPayload(payload)).
		Msg("backend traffic")
}

func formatPayload(payload any) string {
	switch v := payload.(type) {
	case nil:
		return "null"
	case string:
		if strings.TrimSpace(v) == "" {
			return `""`
		}
		return v
	case []byte:
		if len(v) == 0 {
			return "[]"
		}
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
