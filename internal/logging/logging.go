// Package logging holds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	once          sync.Once
	defaultLogger *slog.Logger
)

// ResetForTests lets a test call Init again. Do not use outside tests.
func ResetForTests() {
	mu.Lock()
	defer mu.Unlock()
	once = sync.Once{}
	defaultLogger = nil
}

// Init sets up the global logger. Only the first call has an effect.
// format is "json" or "text" (default).
func Init(level slog.Level, output io.Writer, format string) {
	mu.Lock()
	defer mu.Unlock()
	once.Do(func() {
		opts := &slog.HandlerOptions{Level: level}
		var h slog.Handler
		if strings.EqualFold(format, "json") {
			h = slog.NewJSONHandler(output, opts)
		} else {
			h = slog.NewTextHandler(output, opts)
		}
		defaultLogger = slog.New(h)
		slog.SetDefault(defaultLogger)
	})
}

// GetLogger returns the global logger, falling back to stderr at info level
// when Init has not run.
func GetLogger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	once.Do(func() {
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	})
	return defaultLogger
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
