// Package logger provides leveled logging with support for debug, info, warn, and error levels.
// It keeps a printf-style API on top of log/slog so call sites stay terse while the
// output can be switched between JSON and text handlers.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	mu            sync.RWMutex
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	level         = new(slog.LevelVar)
	format        = "text"
	output        io.Writer = os.Stderr
)

// ParseLevel converts a level name to slog.Level. Unrecognized names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Init initializes the default logger with the specified level and format ("json" or "text").
func Init(levelName string, formatName string) {
	mu.Lock()
	defer mu.Unlock()

	level.Set(ParseLevel(levelName))
	format = strings.ToLower(formatName)
	rebuild()
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	rebuild()
}

// rebuild must be called with mu held.
func rebuild() {
	opts := &slog.HandlerOptions{Level: level, AddSource: level.Level() == slog.LevelDebug}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = slog.NewTextHandler(output, opts)
	}
	defaultLogger = slog.New(h)
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

func log(l slog.Level, msgFormat string, args ...interface{}) {
	lg := current()
	ctx := context.Background()
	if !lg.Enabled(ctx, l) {
		return
	}
	// Skip runtime.Callers, log and the exported wrapper.
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), l, fmt.Sprintf(msgFormat, args...), pcs[0])
	_ = lg.Handler().Handle(ctx, r)
}

// Debug logs a message at debug level
func Debug(format string, args ...interface{}) {
	log(slog.LevelDebug, format, args...)
}

// Info logs a message at info level
func Info(format string, args ...interface{}) {
	log(slog.LevelInfo, format, args...)
}

// Warn logs a message at warn level
func Warn(format string, args ...interface{}) {
	log(slog.LevelWarn, format, args...)
}

// Error logs a message at error level
func Error(format string, args ...interface{}) {
	log(slog.LevelError, format, args...)
}

// Fatal logs a message at error level and exits
func Fatal(format string, args ...interface{}) {
	log(slog.LevelError, "FATAL: "+format, args...)
	os.Exit(1)
}
