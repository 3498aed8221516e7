package logging

import (
	"io"
	"log/slog"
	"os"
)

var (
	// Logger is the process-wide structured logger.
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	// Verbose is true once Setup enabled debug records.
	Verbose bool

	level slog.LevelVar
)

// Setup replaces Logger. Records go to w, or stderr when w is nil, as text or
// JSON lines. Debug records are dropped unless verbose.
func Setup(verbose, jsonOutput bool, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}

	Verbose = verbose
	level.Set(slog.LevelInfo)
	if verbose {
		level.Set(slog.LevelDebug)
	}

	opts := &slog.HandlerOptions{Level: &level}
	if jsonOutput {
		Logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		Logger = slog.New(slog.NewTextHandler(w, opts))
	}
	slog.SetDefault(Logger)
}

func Debug(msg string, args ...any) { Logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { Logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { Logger.Warn(msg, args...) }
func Error(msg string, args ...any) { Logger.Error(msg, args...) }

// With returns a child of the current Logger carrying args on every record.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
