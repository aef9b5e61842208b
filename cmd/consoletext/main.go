// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the consoletext command-line application.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/matt-FFFFFF/consoletext"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/attach"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/cmdstate"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/config"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/df"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/feed"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/replay"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/run"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Name:    "consoletext",
	Version: consoletext.Version + " (" + consoletext.Commit + ")",
	Usage:   "consoletext run -- ./build.sh",
	Description: `consoletext turns the raw output of console programs into lines. Output ending
in a carriage return, as written by progress bars and spinners, replaces the line it
belongs to instead of piling up.

Run a program and render its output, replay a captured log, attach to a program
served elsewhere, or type bytes by hand to see how they are split.`,
	Flags:  cmdstate.Flags(),
	Before: cmdstate.Before,
	Commands: []*cli.Command{
		run.RunCmd,
		replay.ReplayCmd,
		attach.AttachCmd,
		feed.FeedCmd,
		config.ConfigCmd,
		df.DfCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	// The first signal reaches the child through the terminal's process group; a repeat cancels.
	go signalbroker.Watch(ctx, sigCh, cancel, nil)

	err := RootCmd.Run(ctx, os.Args)
	if err == nil {
		os.Exit(0)
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode())
	}

	ctxlog.Logger(ctx).Error("command failed", "error", err)
	os.Exit(1)
}
