// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the run subcommand.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/cmdstate"
	"github.com/matt-FFFFFF/consoletext/internal/config"
	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/matt-FFFFFF/consoletext/internal/runner"
	"github.com/matt-FFFFFF/consoletext/internal/server"
	"github.com/matt-FFFFFF/consoletext/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	tuiFlag          = "tui"
	serveFlag        = "serve"
	exitOnDoneFlag   = "exit-on-done"
	labelFlag        = "label"
	cwdFlag          = "cwd"
	envFlag          = "env"
	envFileFlag      = "env-file"
	successCodesFlag = "success-exit-codes"
	sourcePrefixFlag = "source-prefix"
	noColourFlag     = "no-color"
	cliExitStr       = ""
)

// ErrInvalidEnv is returned for an --env value that is not KEY=VALUE.
var ErrInvalidEnv = errors.New("environment variable must be KEY=VALUE")

// RunCmd runs a program and renders its output line by line.
var RunCmd = &cli.Command{
	Name:      "run",
	Usage:     "Run a program and render its output",
	ArgsUsage: "-- <program> [args...]",
	Description: `Run a program, splitting its stdout and stderr into lines as they arrive.
Output that ends in a carriage return (progress bars, spinners) replaces the previous line
instead of adding a new one.

With --tui the output is shown in a full screen, scrollable view. With --serve, or launch: server
in the configuration, the lines and events are also served over HTTP for 'consoletext attach'.`,
	Flags:  flags(),
	Action: actionFunc,
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    tuiFlag,
			Aliases: []string{"t", "interactive"},
			Usage:   "Run with interactive Terminal User Interface (TUI)",
		},
		&cli.BoolFlag{
			Name:    serveFlag,
			Aliases: []string{"s"},
			Usage:   "Serve lines and events over HTTP while the program runs",
		},
		&cli.BoolFlag{
			Name:  exitOnDoneFlag,
			Usage: "Close the TUI as soon as the program finishes",
		},
		&cli.StringFlag{
			Name:  labelFlag,
			Usage: "Label shown for the program, defaults to the program name",
		},
		&cli.StringFlag{
			Name:      cwdFlag,
			Usage:     "Working directory of the program",
			TakesFile: true,
		},
		&cli.StringSliceFlag{
			Name:  envFlag,
			Usage: "Set an environment variable KEY=VALUE, may be repeated",
		},
		&cli.StringSliceFlag{
			Name:      envFileFlag,
			Usage:     "Load environment variables from a dotenv file, may be repeated",
			TakesFile: true,
		},
		&cli.IntSliceFlag{
			Name:  successCodesFlag,
			Usage: "Exit codes that count as success",
			Value: []int{0},
		},
		&cli.BoolFlag{
			Name:  sourcePrefixFlag,
			Usage: "Prefix each line with the program label",
		},
		&cli.BoolFlag{
			Name:  noColourFlag,
			Usage: "Disable colour output",
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	state := cmdstate.From(ctx)
	cfg := state.Config

	command, err := buildCommand(cmd, cfg)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	launch := cfg.Launch
	if cmd.Bool(serveFlag) {
		launch = config.LaunchServer
	}

	if launch == config.LaunchClient {
		logger.Error("launch type 'client' cannot run a program, use 'consoletext attach'")
		return cli.Exit(cliExitStr, 1)
	}

	screen := console.NewScreen(cfg.History, cfg.Policy())

	var sink progress.Reporter = progress.Direct(screen)

	if launch == config.LaunchServer {
		b := server.NewBroadcaster(screen)
		defer b.Close()

		srv := server.New(ctx, cfg.ListenAddress(), b)

		go func() {
			if err := srv.Run(); err != nil {
				logger.Error("event server stopped", "error", err)
			}
		}()

		defer srv.Shutdown() //nolint:errcheck

		logger.Info(fmt.Sprintf("Serving events on http://%s", cfg.Address()))

		sink = b
	}

	var res *runner.Result

	if cmd.Bool(tuiFlag) {
		res, err = runTUI(ctx, cmd, state, screen, command, sink)
		if err != nil {
			logger.Error(fmt.Sprintf("TUI execution error: %s", err.Error()), "error", err)
		}
	} else {
		res = runPrinter(ctx, cmd, cfg, command, sink)
	}

	if res.OK() {
		return nil
	}

	code := res.ExitCode
	if code <= 0 {
		code = 1
	}

	return cli.Exit(cliExitStr, code)
}

func runTUI(
	ctx context.Context,
	cmd *cli.Command,
	state *cmdstate.State,
	screen *console.Screen,
	command *runner.Command,
	sink progress.Reporter,
) (*runner.Result, error) {
	ctxlog.Info(ctx, "Starting interactive TUI mode...")

	buf := new(bytes.Buffer)
	// Logs go to the buffer and the TUI footer while the TUI owns the terminal.
	tuiCtx := ctxlog.NewForTUI(ctx, buf, state.Hub)

	opts := []tui.Option{tui.WithTitle(command.Label)}
	if cmd.Bool(exitOnDoneFlag) {
		opts = append(opts, tui.WithExitOnDone())
	}

	res, err := tui.NewRunner(screen, state.Hub, opts...).Run(tuiCtx, command, sink)

	buf.WriteTo(cmdstate.ErrWriter(cmd)) //nolint:errcheck

	printSummary(cmdstate.Writer(cmd), res)

	return res, err
}

func runPrinter(
	ctx context.Context,
	cmd *cli.Command,
	cfg *config.Config,
	command *runner.Command,
	sink progress.Reporter,
) *runner.Result {
	var opts []console.PrinterOption

	if cmd.Bool(sourcePrefixFlag) {
		opts = append(opts, console.WithSourcePrefix())
	}

	if cmd.Bool(noColourFlag) {
		opts = append(opts, console.WithColour(false))
	}

	p := console.NewPrinter(cmdstate.Writer(cmd), cfg.Policy(), opts...)

	res := command.Run(ctx, progress.Tee(sink, progress.Direct(p)))

	if err := p.Close(); err != nil {
		ctxlog.Warn(ctx, "failed to write output", "error", err)
	}

	return res
}

// buildCommand turns the arguments and configuration into a runner command.
func buildCommand(cmd *cli.Command, cfg *config.Config) (*runner.Command, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, errors.New("please specify the program to run, e.g. consoletext run -- ping localhost")
	}

	env := make(map[string]string, len(cfg.Env))
	for k, v := range cfg.Env {
		env[k] = v
	}

	for _, kv := range cmd.StringSlice(envFlag) {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEnv, kv)
		}

		env[k] = v
	}

	label := cmd.String(labelFlag)
	if label == "" {
		label = args[0]
	}

	return &runner.Command{
		Label:              label,
		Path:               args[0],
		Args:               args[1:],
		Cwd:                cmd.String(cwdFlag),
		Env:                env,
		EnvFiles:           append(append([]string{}, cfg.EnvFiles...), cmd.StringSlice(envFileFlag)...),
		SuccessExitCodes:   cmd.IntSlice(successCodesFlag),
		CaptureLimit:       cfg.CaptureLimit,
		FlushPartial:       cfg.FlushPartial,
		ReassemblerOptions: cfg.ReassemblerOptions(),
	}, nil
}

func printSummary(w io.Writer, res *runner.Result) {
	if res == nil {
		return
	}

	status := res.Status.String()
	if res.Error != nil {
		status = fmt.Sprintf("%s: %s", status, res.Error)
	}

	fmt.Fprintf(w, "%s %s (exit code %d)\n", res.Label, status, res.ExitCode) //nolint:errcheck
}
