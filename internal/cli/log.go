package cli

import (
	"io"
	"log/slog"
)

// LogLevel maps the verbosity flags to a log level. Quiet wins over any
// verbosity.
func LogLevel(verbose int, quiet bool) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose > 0:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger writing to w at the level selected by
// the verbosity flags.
func NewLogger(w io.Writer, verbose int, quiet bool) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LogLevel(verbose, quiet),
	}))
}
