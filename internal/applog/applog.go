// Package applog provides the process-wide structured logger.
//
// Verbosity is gated the same way the rest of this codebase gates optional
// diagnostics: an environment variable raises the level, everything else
// stays quiet. VOSHD_DEBUG=1 raises the level to slog.LevelDebug.
package applog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu  sync.Mutex
	cur *slog.Logger
)

// Init installs the process-wide logger, writing to w at the given level.
// Call once from main; subsequent calls replace the logger (used by tests
// that want to capture output).
func Init(w *os.File, level slog.Level) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	cur = slog.New(h)
	return cur
}

// Default returns the process-wide logger, initializing a conservative
// default (Info level to stderr) if Init was never called.
func Default() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if cur == nil {
		level := slog.LevelInfo
		if os.Getenv("VOSHD_DEBUG") != "" {
			level = slog.LevelDebug
		}
		cur = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	return cur
}

// LevelFromFlag maps the CLI's --log flag value to a slog.Level.
// Unrecognized values fall back to Info.
func LevelFromFlag(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
