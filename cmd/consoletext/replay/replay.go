// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package replay contains the replay subcommand.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/cmdstate"
	"github.com/matt-FFFFFF/consoletext/internal/color"
	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/follow"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/urfave/cli/v3"
)

const (
	chunkSizeFlag       = "chunk-size"
	jsonFlag            = "json"
	followFlag          = "follow"
	fromStartFlag       = "from-start"
	noColourFlag        = "no-color"
	defaultChunkSize    = 4096
	stdinName           = "-"
	cliExitStr          = ""
	errFollowStdin      = "--follow needs a file name"
	errChunkSizeInvalid = "--chunk-size must be at least 1"
)

// ErrRead is returned when the input cannot be read.
var ErrRead = errors.New("failed to read input")

// ReplayCmd feeds a captured byte stream through the line reassembler.
var ReplayCmd = &cli.Command{
	Name:      "replay",
	Usage:     "Feed a file or stdin through the line reassembler",
	ArgsUsage: "[file]",
	Description: `Read raw console output from a file, or stdin when no file or '-' is given,
and render it line by line. The input is fed in chunks of --chunk-size bytes, so replaying with
a small chunk size shows how partial lines and carriage returns are handled.

With --json every line event is written as a JSON object instead. With --follow the file is
watched and new data is rendered as it is appended, like tail -f.`,
	Flags:  flags(),
	Action: actionFunc,
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  chunkSizeFlag,
			Usage: "Number of bytes fed to the reassembler at a time",
			Value: defaultChunkSize,
		},
		&cli.BoolFlag{
			Name:  jsonFlag,
			Usage: "Write line events as JSON",
		},
		&cli.BoolFlag{
			Name:    followFlag,
			Aliases: []string{"f"},
			Usage:   "Keep reading as the file grows",
		},
		&cli.BoolFlag{
			Name:  fromStartFlag,
			Usage: "With --follow, render the existing content first",
		},
		&cli.BoolFlag{
			Name:  noColourFlag,
			Usage: "Disable colour output",
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	cfg := cmdstate.From(ctx).Config

	name := cmd.Args().First()
	if name == "" {
		name = stdinName
	}

	chunk := cmd.Int(chunkSizeFlag)
	if chunk < 1 {
		logger.Error(errChunkSizeInvalid)
		return cli.Exit(cliExitStr, 1)
	}

	if cmd.Bool(followFlag) && name == stdinName {
		logger.Error(errFollowStdin)
		return cli.Exit(cliExitStr, 1)
	}

	out := cmdstate.Writer(cmd)
	colour := color.EnabledFor(out) && !cmd.Bool(noColourFlag)

	var listener progress.Listener

	if cmd.Bool(jsonFlag) {
		listener = newJSONListener(ctx, out, colour)
	} else {
		p := console.NewPrinter(out, cfg.Policy(), console.WithColour(colour))
		defer p.Close() //nolint:errcheck

		listener = p
	}

	source, stream := "stdin", progress.StreamInput
	if name != stdinName {
		source, stream = filepath.Base(name), progress.StreamFile
	}

	r := linereassembler.New(progress.LineHandler(progress.Direct(listener), source, stream), cfg.ReassemblerOptions()...)

	var err error

	switch {
	case cmd.Bool(followFlag):
		logger.Debug("following file", "path", name)

		err = follow.File(ctx, name, cmd.Bool(fromStartFlag), r)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	case name == stdinName:
		_, err = Feed(r, cmdstate.Reader(cmd), chunk)
	default:
		err = replayFile(r, name, chunk)
	}

	if cfg.FlushPartial {
		r.Flush()
	}

	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

func replayFile(r *linereassembler.Reassembler, name string, chunk int) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Join(ErrRead, err)
	}
	defer f.Close() //nolint:errcheck

	_, err = Feed(r, f, chunk)

	return err
}

// Feed reads src in chunks of at most chunk bytes and appends each one to r.
// It returns the number of bytes fed.
func Feed(r *linereassembler.Reassembler, src io.Reader, chunk int) (int64, error) {
	buf := make([]byte, max(chunk, 1))

	var total int64

	for {
		n, err := src.Read(buf)
		if n > 0 {
			r.Append(buf, 0, n)
			total += int64(n)
		}

		if errors.Is(err, io.EOF) {
			return total, nil
		}

		if err != nil {
			return total, errors.Join(ErrRead, err)
		}
	}
}

// jsonListener writes one JSON document per event.
type jsonListener struct {
	mu     sync.Mutex
	logger *slog.Logger
	w      io.Writer
	colour bool
	f      *colorjson.Formatter
}

func newJSONListener(ctx context.Context, w io.Writer, colour bool) *jsonListener {
	f := colorjson.NewFormatter()
	f.Indent = 0

	return &jsonListener{logger: ctxlog.Logger(ctx), w: w, colour: colour, f: f}
}

// OnEvent implements progress.Listener.
func (l *jsonListener) OnEvent(e progress.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		l.logger.Error("could not encode event", "source", e.Source, "type", e.Type.String(), "error", err)
		return
	}

	if l.colour {
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err == nil {
			if pretty, err := l.f.Marshal(obj); err == nil {
				data = pretty
			}
		}
	}

	fmt.Fprintf(l.w, "%s\n", data) //nolint:errcheck
}
