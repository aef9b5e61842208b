// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate holds what the root command prepares for its subcommands:
// the effective configuration and the log fan-out hub.
// The root Before hook builds it from the global flags and stores it in the context.
package cmdstate

import (
	"context"
	"io"
	"os"

	"github.com/matt-FFFFFF/consoletext/internal/config"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/logfanout"
	"github.com/urfave/cli/v3"
)

const (
	ConfigFlag           = "config"
	EncodingFlag         = "encoding"
	ReplacePolicyFlag    = "replace-policy"
	MaxLineLengthFlag    = "max-line-length"
	TruncationMarkerFlag = "truncation-marker"
	HistoryFlag          = "history"
	FlushPartialFlag     = "flush-partial"
	HostFlag             = "host"
	PortFlag             = "port"
	LogFormatFlag        = "log-format"
	LogLevelFlag         = "log-level"

	configEnvVar = "CONSOLETEXT_CONFIG"
)

// State is shared by all subcommands.
type State struct {
	Config *config.Config
	Hub    *logfanout.Hub
}

type ctxKey struct{}

// With returns a context carrying s.
func With(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// From returns the state stored in ctx, or one holding the default configuration.
func From(ctx context.Context) *State {
	if s, ok := ctx.Value(ctxKey{}).(*State); ok && s != nil {
		return s
	}

	return &State{Config: config.Default()}
}

// Flags returns the global flags. They apply to every subcommand.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c"},
			Usage: "Configuration file (.yaml, .yml, .toml or .hcl). " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources.",
			Sources:   cli.EnvVars(configEnvVar),
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:    EncodingFlag,
			Aliases: []string{"e"},
			Usage:   "Text encoding of the byte stream, e.g. utf-8, windows-1252, shift_jis, 932 or platform",
		},
		&cli.StringFlag{
			Name:  ReplacePolicyFlag,
			Usage: "When a line replaces the previous one: 'cr' (any carriage return) or 'pending' (only CR before another terminator)",
		},
		&cli.IntFlag{
			Name:  MaxLineLengthFlag,
			Usage: "Force a line break after this many bytes, 0 for no limit",
		},
		&cli.StringFlag{
			Name:  TruncationMarkerFlag,
			Usage: "Text appended to lines broken at the maximum length",
		},
		&cli.IntFlag{
			Name:  HistoryFlag,
			Usage: "Number of lines kept for the TUI and event server",
		},
		&cli.BoolFlag{
			Name:  FlushPartialFlag,
			Usage: "Emit unterminated trailing text when the stream ends",
		},
		&cli.StringFlag{
			Name:  HostFlag,
			Usage: "Event server host used by attach",
		},
		&cli.IntFlag{
			Name:    PortFlag,
			Aliases: []string{"p"},
			Usage:   "Event server port",
		},
		&cli.StringFlag{
			Name:  LogFormatFlag,
			Usage: "Log format: pretty, json or charm",
		},
		&cli.StringFlag{
			Name:    LogLevelFlag,
			Aliases: []string{"l"},
			Usage:   "Log level: debug, info, warn or error",
			Sources: cli.EnvVars(ctxlog.LevelEnvVar()),
		},
	}
}

// Before loads the configuration, applies flag overrides and installs the logger.
func Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg := config.Default()

	if src := cmd.String(ConfigFlag); src != "" {
		if err := cfg.LoadFile(ctx, src); err != nil {
			return ctx, cli.Exit(err.Error(), 1)
		}
	}

	Override(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}

	if lvl := cmd.String(LogLevelFlag); lvl != "" {
		ctxlog.LevelVar.Set(ctxlog.ParseLevel(lvl))
	}

	hub := logfanout.NewHub()

	logger, err := ctxlog.NewLogger(cfg.LogFormat, ErrWriter(cmd), hub)
	if err != nil {
		return ctx, cli.Exit(err.Error(), 1)
	}

	ctx = ctxlog.New(ctx, logger)

	ctxlog.Debug(ctx, "effective configuration", "encoding", cfg.Encoding, "replace_policy", cfg.ReplacePolicy,
		"history", cfg.History, "launch", cfg.Launch)

	return With(ctx, &State{Config: cfg, Hub: hub}), nil
}

// Override copies the global flags that were set on the command line into cfg.
func Override(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet(EncodingFlag) {
		cfg.Encoding = cmd.String(EncodingFlag)
	}

	if cmd.IsSet(ReplacePolicyFlag) {
		cfg.ReplacePolicy = cmd.String(ReplacePolicyFlag)
	}

	if cmd.IsSet(MaxLineLengthFlag) {
		cfg.MaxLineLength = cmd.Int(MaxLineLengthFlag)
	}

	if cmd.IsSet(TruncationMarkerFlag) {
		cfg.TruncationMarker = cmd.String(TruncationMarkerFlag)
	}

	if cmd.IsSet(HistoryFlag) {
		cfg.History = cmd.Int(HistoryFlag)
	}

	if cmd.IsSet(FlushPartialFlag) {
		cfg.FlushPartial = cmd.Bool(FlushPartialFlag)
	}

	if cmd.IsSet(HostFlag) {
		cfg.Host = cmd.String(HostFlag)
	}

	if cmd.IsSet(PortFlag) {
		cfg.Port = cmd.Int(PortFlag)
	}

	if cmd.IsSet(LogFormatFlag) {
		cfg.LogFormat = ctxlog.Format(cmd.String(LogFormatFlag))
	}
}

// Writer returns the root command's output writer, os.Stdout if none is set.
func Writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}

// ErrWriter returns the root command's error writer, os.Stderr if none is set.
func ErrWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}

	return os.Stderr
}

// Reader returns the root command's input reader, os.Stdin if none is set.
func Reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}

	return os.Stdin
}
