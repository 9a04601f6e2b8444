// Package logging provides the process-wide slog registry.
//
// Handlers are built once; repeat lookups for the same component name
// return the same logger, so components can call Logger freely without
// duplicating output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu      sync.Mutex
	once    sync.Once
	handler slog.Handler
	loggers = map[string]*slog.Logger{}
)

// Setup configures the shared handler. The first call wins; later calls
// are no-ops, matching the one-time-init guard the rest of the code
// relies on. When logFile is non-empty, records go to both stderr and
// the file.
func Setup(level string, logFile string) error {
	var setupErr error
	once.Do(func() {
		var w io.Writer = os.Stderr
		if logFile != "" {
			if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
				setupErr = err
				return
			}
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				setupErr = err
				return
			}
			w = io.MultiWriter(os.Stderr, f)
		}

		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	})
	return setupErr
}

// Logger returns the shared logger for a component. The same name always
// yields the same logger instance.
func Logger(name string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}

	h := handler
	if h == nil {
		h = slog.Default().Handler()
	}
	l := slog.New(h).With("component", name)
	loggers[name] = l
	return l
}

func parseLevel(level string) slog.Level {
	switch level {
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
