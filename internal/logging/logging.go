package logging

import (
	"io"
	"log/slog"
	"os"
)

func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// New returns the process logger. Debug mode lowers the level and adds
// source locations; output is always structured text on stderr so the
// HTTP responses stay the only thing on stdout-adjacent channels.
func New(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	return slog.New(handler)
}
