// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package feed contains the feed subcommand, an interactive prompt for the line reassembler.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/cmdstate"
	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/peterh/liner"
	"github.com/urfave/cli/v3"
)

const (
	newlineFlag = "newline"
	prompt      = "feed> "
	source      = "feed"
)

// ErrInvalidEscape is returned for input with a malformed escape sequence.
var ErrInvalidEscape = errors.New("invalid escape sequence")

// FeedCmd reads bytes from an interactive prompt and feeds them to the line reassembler.
var FeedCmd = &cli.Command{
	Name:  "feed",
	Usage: "Type bytes into the line reassembler and watch the lines it reports",
	Description: `Start an interactive prompt. Each input is unescaped and appended to the reassembler
as one chunk. Use \r, \n, \t, \e, \\ and \xHH to enter control characters, for example:

  feed> 10%\r
  feed> 20%\r
  feed> done\n

Type :pending to show the number of buffered bytes, :flush to end the current line,
:reset to discard it and :quit, exit or Ctrl+C to leave.`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  newlineFlag,
			Usage: "Append a line feed to every input",
		},
	},
	Action: actionFunc,
}

// prompter is the part of liner.State used by a session.
type prompter interface {
	Prompt(string) (string, error)
	AppendHistory(string)
}

// session feeds prompt input to a reassembler.
type session struct {
	in      prompter
	out     io.Writer
	r       *linereassembler.Reassembler
	newline bool
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg := cmdstate.From(ctx).Config
	out := cmdstate.Writer(cmd)

	p := console.NewPrinter(out, cfg.Policy())
	defer p.Close() //nolint:errcheck

	line := liner.NewLiner()

	defer func() {
		_ = line.Close()
	}()

	line.SetCtrlCAborts(true)

	s := &session{
		in:      line,
		out:     out,
		r:       linereassembler.New(progress.LineHandler(progress.Direct(p), source, progress.StreamInput), cfg.ReassemblerOptions()...),
		newline: cmd.Bool(newlineFlag),
	}

	fmt.Fprintln(out, "Entering feed mode, type `:quit` or `exit` or press Ctrl+C to quit.") //nolint:errcheck

	if err := s.run(); err != nil {
		return cli.Exit(fmt.Sprintf("Error reading line: %s", err), 1)
	}

	return nil
}

// run prompts until the user quits. Aborting the prompt is not an error.
func (s *session) run() error {
	for {
		input, err := s.in.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out, "Aborted") //nolint:errcheck
			return nil
		}

		if err != nil {
			return err //nolint:wrapcheck
		}

		if input == "" {
			continue
		}

		s.in.AppendHistory(input)

		if quit := s.handle(input); quit {
			return nil
		}
	}
}

// handle processes one input and reports whether the session should end.
func (s *session) handle(input string) bool {
	switch input {
	case ":quit", "quit", "exit":
		return true
	case ":pending":
		fmt.Fprintf(s.out, "%d bytes pending\n", s.r.Pending()) //nolint:errcheck
		return false
	case ":flush":
		s.r.Flush()
		return false
	case ":reset":
		s.r.Reset()
		return false
	}

	b, err := Unescape(input)
	if err != nil {
		fmt.Fprintf(s.out, "%s\n", err) //nolint:errcheck
		return false
	}

	if s.newline {
		b = append(b, '\n')
	}

	s.r.Append(b, 0, len(b))

	return false
}

// Unescape converts Go style escape sequences in s to bytes. \e is accepted for ESC (0x1b).
// Unlike a Go string literal, a bare double quote needs no escaping.
func Unescape(s string) ([]byte, error) {
	var out []byte

	for len(s) > 0 {
		if strings.HasPrefix(s, `\e`) {
			out = append(out, 0x1b)
			s = s[2:]

			continue
		}

		if s[0] == '"' {
			out = append(out, '"')
			s = s[1:]

			continue
		}

		value, multibyte, tail, err := strconv.UnquoteChar(s, '"')
		if err != nil {
			return nil, fmt.Errorf("%w at %q", ErrInvalidEscape, s)
		}

		// \xHH and octal escapes are single bytes, not code points.
		if !multibyte && value < 256 {
			out = append(out, byte(value))
		} else {
			out = append(out, string(value)...)
		}

		s = tail
	}

	return out, nil
}
