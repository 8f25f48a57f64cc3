package logger

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Config contains logger configuration options
type Config struct {
	// Level is one of debug, info, warn, error; anything else means info
	Level string
	// JSON selects the JSON handler, otherwise text
	JSON bool
	// Output defaults to os.Stderr
	Output    io.Writer
	AddSource bool
}

func DefaultConfig() Config {
	return Config{
		Level:  "info",
		JSON:   true,
		Output: os.Stderr,
	}
}

// FromSettings builds a Config from the LOG_LEVEL and LOG_FORMAT values
func FromSettings(level, format string) Config {
	cfg := DefaultConfig()
	if level != "" {
		cfg.Level = level
	}
	cfg.JSON = !strings.EqualFold(format, "text")
	return cfg
}

// ParseLevel maps a level name to its slog level
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger wraps slog for structured logging
type Logger struct {
	*slog.Logger
}

var global atomic.Pointer[Logger]

// New creates a logger and makes it the global one if none is set yet
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(config.Level),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	l := &Logger{Logger: slog.New(handler)}
	global.CompareAndSwap(nil, l)
	return l
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func SetGlobal(l *Logger) {
	global.Store(l)
}

// GetGlobal returns the global logger, creating a default one on first use
func GetGlobal() *Logger {
	if l := global.Load(); l != nil {
		return l
	}
	global.CompareAndSwap(nil, New(DefaultConfig()))
	return global.Load()
}

// LogError logs err under the "error" key
func (l *Logger) LogError(err error, msg string, args ...any) {
	l.Error(msg, append([]any{"error", err.Error()}, args...)...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	if requestID == "" {
		return l
	}
	return l.With("request_id", requestID)
}

func (l *Logger) WithUserID(userID string) *Logger {
	if userID == "" {
		return l
	}
	return l.With("user_id", userID)
}

// LogRequest logs a finished HTTP request; server errors at error level,
// client errors at warn
func (l *Logger) LogRequest(method, path string, status int, latency time.Duration) {
	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}
	l.Log(context.Background(), level, "request completed",
		"method", method,
		"path", path,
		"status", status,
		"latency_ms", latency.Milliseconds(),
	)
}
