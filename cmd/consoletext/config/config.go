// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config contains the config subcommand.
package config

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/cmdstate"
	"github.com/urfave/cli/v3"
)

// ConfigCmd prints the effective configuration, after the config file and global flags are applied.
var ConfigCmd = &cli.Command{
	Name:  "config",
	Usage: "Print the effective configuration as YAML",
	Description: `Print the configuration that other commands would use, as YAML.

The output can be saved and passed back with --config.`,
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg := cmdstate.From(ctx).Config

	out, err := cfg.YAML()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to encode configuration: %s", err.Error()), 1)
	}

	if _, err := cmdstate.Writer(cmd).Write(out); err != nil {
		return cli.Exit(fmt.Sprintf("failed to write configuration: %s", err.Error()), 1)
	}

	return nil
}
