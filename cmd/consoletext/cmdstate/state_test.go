// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdstate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/consoletext/internal/config"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// run executes a root command with the global flags and returns the state seen by its action.
func run(t *testing.T, args ...string) (*State, error) {
	t.Helper()

	var got *State

	cmd := &cli.Command{
		Name:      "consoletext",
		Flags:     Flags(),
		Before:    Before,
		Writer:    new(bytes.Buffer),
		ErrWriter: new(bytes.Buffer),

		// keep cli from calling os.Exit
		ExitErrHandler: func(context.Context, *cli.Command, error) {},

		Action: func(ctx context.Context, _ *cli.Command) error {
			got = From(ctx)
			return nil
		},
	}

	err := cmd.Run(context.Background(), append([]string{"consoletext"}, args...))

	return got, err
}

func TestFromWithoutState(t *testing.T) {
	s := From(context.Background())
	require.NotNil(t, s)
	assert.Equal(t, config.Default(), s.Config)
	assert.Nil(t, s.Hub)
}

func TestBefore_Defaults(t *testing.T) {
	s, err := run(t)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, config.Default(), s.Config)
	assert.NotNil(t, s.Hub)
}

func TestBefore_FlagOverrides(t *testing.T) {
	s, err := run(t,
		"--encoding", "shift_jis",
		"--replace-policy", "pending",
		"--max-line-length", "80",
		"--truncation-marker", "...",
		"--history", "10",
		"--flush-partial",
		"--host", "127.0.0.1",
		"--port", "9999",
		"--log-format", "json",
	)
	require.NoError(t, err)

	cfg := s.Config
	assert.Equal(t, "shift_jis", cfg.Encoding)
	assert.Equal(t, linereassembler.ReplacePendingOnly, cfg.Policy())
	assert.Equal(t, 80, cfg.MaxLineLength)
	assert.Equal(t, "...", cfg.TruncationMarker)
	assert.Equal(t, 10, cfg.History)
	assert.True(t, cfg.FlushPartial)
	assert.Equal(t, "127.0.0.1:9999", cfg.Address())
	assert.Equal(t, ctxlog.FormatJSON, cfg.LogFormat)
}

func TestBefore_ConfigFileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consoletext.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history: 5\nport: 4000\n"), 0o600))

	s, err := run(t, "--config", path, "--port", "5000")
	require.NoError(t, err)

	assert.Equal(t, 5, s.Config.History)
	assert.Equal(t, 5000, s.Config.Port)
}

func TestBefore_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "missing config file", args: []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}},
		{name: "invalid policy", args: []string{"--replace-policy", "sometimes"}},
		{name: "unknown encoding", args: []string{"--encoding", "klingon"}},
		{name: "bad log format", args: []string{"--log-format", "xml"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := run(t, tc.args...)
			require.Error(t, err)
			assert.Nil(t, s)

			var exit cli.ExitCoder
			require.ErrorAs(t, err, &exit)
			assert.Equal(t, 1, exit.ExitCode())
		})
	}
}
