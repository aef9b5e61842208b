// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package attach contains the attach subcommand, the client side of 'consoletext run --serve'.
package attach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/cmdstate"
	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/server"
	"github.com/urfave/cli/v3"
)

const (
	saveFlag         = "save"
	sourcePrefixFlag = "source-prefix"
	noColourFlag     = "no-color"
	cliExitStr       = ""
)

// AttachCmd renders the output of a program run elsewhere with 'consoletext run --serve'.
var AttachCmd = &cli.Command{
	Name:      "attach",
	Usage:     "Attach to a running event server and render its output",
	ArgsUsage: "[url]",
	Description: `Connect to the event server started by 'consoletext run --serve' and render the
lines it has seen so far, followed by live output until the program ends.

The URL defaults to http://<host>:<port> from the configuration and global flags.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      saveFlag,
			Usage:     "Also write the raw event stream to this file",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  sourcePrefixFlag,
			Usage: "Prefix each line with its source",
		},
		&cli.BoolFlag{
			Name:  noColourFlag,
			Usage: "Disable colour output",
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	cfg := cmdstate.From(ctx).Config

	url := cmd.Args().First()
	if url == "" {
		url = "http://" + cfg.Address()
	}

	if !strings.Contains(url, "://") {
		url = "http://" + url
	}

	var raw io.Writer

	if name := cmd.String(saveFlag); name != "" {
		f, err := os.Create(name)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to create output file %s: %s", name, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		defer f.Close() //nolint:errcheck

		raw = f
	}

	var opts []console.PrinterOption

	if cmd.Bool(sourcePrefixFlag) {
		opts = append(opts, console.WithSourcePrefix())
	}

	if cmd.Bool(noColourFlag) {
		opts = append(opts, console.WithColour(false))
	}

	p := console.NewPrinter(cmdstate.Writer(cmd), cfg.Policy(), opts...)

	logger.Info("attaching", "url", url)

	err := server.Attach(ctx, url, p, raw)

	if cerr := p.Close(); cerr != nil {
		logger.Warn("failed to write output", "error", cerr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}
