// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package df contains the df subcommand, which shows the free space of the volumes holding paths.
package df

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/cmdstate"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/diskspace"
	"github.com/matt-FFFFFF/consoletext/internal/display"
	"github.com/urfave/cli/v3"
)

const cliExitStr = ""

// querier is replaced in tests.
var querier diskspace.Querier = diskspace.System{}

// DfCmd reports disk usage for each path given, or the working directory.
var DfCmd = &cli.Command{
	Name:      "df",
	Usage:     "Show free disk space for the volumes holding the given paths",
	ArgsUsage: "[path...]",
	Action:    actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	err := Render(cmdstate.Writer(cmd), querier, paths)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, diskspace.ErrUnsupported):
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 2) //nolint:mnd
	default:
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}
}

// Render writes a table with one row per path.
// Every path is queried before anything is written, so a failure produces no partial table.
func Render(w io.Writer, q diskspace.Querier, paths []string) error {
	usages := make([]diskspace.Usage, 0, len(paths))

	for _, p := range paths {
		u, err := q.Usage(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}

		usages = append(usages, u)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Path", "Total", "Used", "Available", "Use%"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight}, //nolint:mnd
		{Number: 3, Align: text.AlignRight}, //nolint:mnd
		{Number: 4, Align: text.AlignRight}, //nolint:mnd
		{Number: 5, Align: text.AlignRight}, //nolint:mnd
	})

	for _, u := range usages {
		tw.AppendRow(table.Row{
			u.Path,
			display.Bytes(u.Total),
			display.Bytes(u.Used()),
			display.Bytes(u.Available),
			percent(u),
		})
	}

	tw.Render()

	return nil
}

func percent(u diskspace.Usage) string {
	if u.Total == 0 {
		return "-"
	}

	return fmt.Sprintf("%.0f%%", float64(u.Used())*100/float64(u.Total)) //nolint:mnd
}
