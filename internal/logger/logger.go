// Package logger configures the structured logger shared by all components.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a configured level name to a slog level. Unknown names
// fall back to info and report ok=false.
func ParseLevel(name string) (level slog.Level, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup builds a text or JSON logger writing to w (stderr when nil) and
// installs it as the slog default.
func Setup(levelName, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level, ok := ParseLevel(levelName)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	log := slog.New(handler)
	if !ok {
		log.Warn("invalid log level configured, using default level",
			"configured_level", levelName,
			"default_level", "info")
	}

	slog.SetDefault(log)
	return log
}

// Discard returns a logger that drops everything, for tests and for
// frontends that own the terminal.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
