// Package logger configures the structured logging used by the translator and
// the crosslang command.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}

	return "info"
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}

	return LevelInfo, fmt.Errorf("unknown log level %q", name)
}

type Config struct {
	Level     LogLevel
	Format    string // "text" or "json"
	Output    io.Writer
	AddSource bool
}

func DefaultConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: "text",
		Output: os.Stderr,
	}
}

// New builds a logger from cfg without touching the default logger.
func New(cfg Config) (*slog.Logger, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(handler), nil
}

// Init builds a logger from cfg and installs it as the slog default.
func Init(cfg Config) (*slog.Logger, error) {
	l, err := New(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(l)
	return l, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Debug(msg string, args ...any) {
	slog.Default().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	slog.Default().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	slog.Default().Warn(msg, args...)
}


// Translation helpers

// LogPhase logs the start of a pipeline stage.
func LogPhase(l *slog.Logger, stage string) {
	l.Debug("starting stage", "stage", stage)
}

// LogPhaseComplete logs the end of a pipeline stage.
func LogPhaseComplete(l *slog.Logger, stage string, args ...any) {
	l.Debug("completed stage", append([]any{"stage", stage}, args...)...)
}

// LogFailure logs the stage that stopped a translation.
func LogFailure(l *slog.Logger, stage string, err error) {
	l.Warn("translation failed", "stage", stage, "error", err)
}

// LogWarning logs one recovered problem.
func LogWarning(l *slog.Logger, kind string, line, column int, msg string) {
	l.Debug("translation warning",
		"kind", kind,
		"line", line,
		"column", column,
		"message", msg)
}
