// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/matt-FFFFFF/consoletext/internal/logfanout"
)

type loggerKey struct{}

// Format selects the log output format.
type Format string

const (
	// FormatPretty is the colourised console format.
	FormatPretty Format = "pretty"
	// FormatJSON is slog's JSON format.
	FormatJSON Format = "json"
	// FormatCharm is the charmbracelet/log format.
	FormatCharm Format = "charm"
)

// ErrUnknownFormat is returned for an unrecognised log format.
var ErrUnknownFormat = errors.New("unknown log format")

// LevelVar holds the level shared by all loggers built by this package.
var LevelVar = &slog.LevelVar{}

// DefaultLogger is used when a context carries no logger. It writes pretty output to stderr so
// that it never mixes with console lines written to stdout.
var DefaultLogger = slog.New(NewPrettyHandler(&slog.HandlerOptions{
	Level: LevelVar,
},
	WithAutoColour(os.Stderr),
	WithDestinationWriter(os.Stderr),
))

// JSONLogger writes JSON records to stderr.
var JSONLogger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
	Level: LevelVar,
}))

func init() {
	LevelVar.Set(logLevelFromEnv())
}

// New returns a context carrying logger, or DefaultLogger when logger is nil.
func New(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		logger = DefaultLogger
	}

	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the logger from the context, or the default logger if not found.
func Logger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok || logger == nil {
		return DefaultLogger
	}

	return logger
}

// NewLogger builds a logger writing format to w at the shared level.
// When hub is not nil every record at or above the shared level is also published to it.
func NewLogger(format Format, w io.Writer, hub *logfanout.Hub) (*slog.Logger, error) {
	var h slog.Handler

	switch format {
	case FormatPretty, "":
		h = NewPrettyHandler(&slog.HandlerOptions{Level: LevelVar}, WithAutoColour(w), WithDestinationWriter(w))
	case FormatJSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LevelVar})
	case FormatCharm:
		h = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(LevelVar.Level()),
			ReportTimestamp: true,
			TimeFormat:      TimeFormat,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if hub != nil {
		h = logfanout.NewHandler(hub, h, LevelVar)
	}

	return slog.New(h), nil
}

// NewForTUI returns a context whose logger writes plain text to w and publishes to hub.
// Nothing is written to the terminal, which belongs to the TUI while it runs.
func NewForTUI(ctx context.Context, w io.Writer, hub *logfanout.Hub) context.Context {
	h := NewPrettyHandler(&slog.HandlerOptions{Level: LevelVar}, WithDestinationWriter(w))

	return New(ctx, slog.New(logfanout.NewHandler(hub, h, LevelVar)))
}

// Info logs an info message with the given context.
func Info(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Info(msg, args...)
}

// Debug logs a debug message with the given context.
func Debug(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Debug(msg, args...)
}

// Warn logs a warning message with the given context.
func Warn(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Warn(msg, args...)
}

// Error logs an error message with the given context.
func Error(ctx context.Context, msg string, args ...any) {
	Logger(ctx).Error(msg, args...)
}

// LevelEnvVar returns the name of the environment variable holding the log level.
func LevelEnvVar() string {
	exec, _ := os.Executable()
	exec = filepath.Base(exec)
	exec = strings.TrimSuffix(exec, ".exe")
	exec = strings.ReplaceAll(exec, "-", "_")

	return strings.ToUpper(exec) + "_LOG_LEVEL"
}

func logLevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv(LevelEnvVar()))
}

// ParseLevel converts DEBUG, INFO, WARN and ERROR (any case) to a level.
// Anything else is WARN.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
