// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package console

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/matt-FFFFFF/consoletext/internal/color"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"golang.org/x/term"
)

const (
	// Ellipsis is appended to lines cut at the terminal width.
	Ellipsis = "…"
	// cursorUp moves the cursor to the previous line.
	cursorUp = "\033[1A"
)

// ErrPrinterWrite is returned when the destination writer fails.
var ErrPrinterWrite = errors.New("failed to write to console")

// Printer renders lines to a terminal.
type Printer struct {
	mu       sync.Mutex
	w        io.Writer
	policy   linereassembler.ReplacePolicy
	colour   bool
	prefix   bool
	width    int
	last     Line
	hasLast  bool
	dangling bool // the cursor sits after text that has no newline yet
	err      error
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithColour forces colour on or off. By default it is on when w is a terminal.
func WithColour(on bool) PrinterOption {
	return func(p *Printer) {
		p.colour = on
	}
}

// WithWidth truncates lines to n columns. Zero disables truncation.
// By default the width of the terminal behind w is used.
func WithWidth(n int) PrinterOption {
	return func(p *Printer) {
		p.width = max(n, 0)
	}
}

// WithSourcePrefix prefixes each line with its source in brackets.
func WithSourcePrefix() PrinterOption {
	return func(p *Printer) {
		p.prefix = true
	}
}

// NewPrinter creates a Printer writing to w. policy must match the reassemblers feeding it.
func NewPrinter(w io.Writer, policy linereassembler.ReplacePolicy, opts ...PrinterOption) *Printer {
	p := &Printer{
		w:      w,
		policy: policy,
		colour: color.EnabledFor(w),
		width:  terminalWidth(w),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return 0
	}

	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec
	if err != nil {
		return 0
	}

	return width
}

// Add prints l on a new line.
func (p *Printer) Add(l Line) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	if p.dangling {
		sb.WriteByte('\n')
	}

	sb.WriteString(p.render(l))
	sb.WriteByte('\n')
	p.write(sb.String())

	l.Transient = false
	p.last, p.hasLast, p.dangling = l, true, false
}

// Replace overwrites the last line when it came from the same source and stream and may be
// overwritten, otherwise it prints l on a new line. The cursor stays on the line so it can be overwritten again.
func (p *Printer) Replace(l Line) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder

	switch {
	case p.hasLast && overwrites(p.policy, p.last, l) && p.dangling:
		sb.WriteString(color.RedrawLine)
	case p.hasLast && overwrites(p.policy, p.last, l):
		sb.WriteString(cursorUp)
		sb.WriteString(color.RedrawLine)
	case p.dangling:
		sb.WriteByte('\n')
	}

	sb.WriteString(p.render(l))
	p.write(sb.String())

	l.Transient = true
	p.last, p.hasLast, p.dangling = l, true, true
}

// Message prints a status line in the given colours.
func (p *Printer) Message(source, msg string, codes ...color.Code) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	if p.dangling {
		sb.WriteByte('\n')
	}

	text := msg
	if p.prefix && source != "" {
		text = "[" + source + "] " + msg
	}

	sb.WriteString(color.Apply(p.colour, p.truncate(text), codes...))
	sb.WriteByte('\n')
	p.write(sb.String())

	p.hasLast, p.dangling = false, false
}

// render must be called with the lock held.
func (p *Printer) render(l Line) string {
	text := l.Text
	if p.prefix && l.Source != "" {
		text = "[" + l.Source + "] " + text
	}

	text = p.truncate(text)

	if l.Stream == progress.StreamStderr {
		return color.Apply(p.colour, text, color.FgYellow)
	}

	return text
}

func (p *Printer) truncate(s string) string {
	if p.width <= 0 || ansi.StringWidth(s) <= p.width {
		return s
	}

	return ansi.Truncate(s, p.width, Ellipsis)
}

// write must be called with the lock held. The first error is kept.
func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}

	if _, err := io.WriteString(p.w, s); err != nil {
		p.err = errors.Join(ErrPrinterWrite, err)
	}
}

// Err returns the first write error.
func (p *Printer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Close terminates a dangling replaced line and returns the first write error.
func (p *Printer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dangling {
		p.write("\n")
		p.dangling = false
	}

	return p.err
}

// OnEvent implements progress.Listener.
func (p *Printer) OnEvent(e progress.Event) {
	l := Line{Source: e.Source, Stream: e.Data.Stream, Text: e.Data.Line, Time: e.Timestamp}

	switch e.Type {
	case progress.EventLineAdded:
		p.Add(l)
	case progress.EventLineReplaced:
		p.Replace(l)
	case progress.EventStarted:
		if e.Message != "" {
			p.Message(e.Source, e.Message, color.Faint)
		}
	case progress.EventCompleted:
		if e.Message != "" {
			p.Message(e.Source, e.Message, color.FgGreen)
		}
	case progress.EventFailed:
		msg := e.Message
		if e.Data.Error != nil {
			msg += ": " + e.Data.Error.Error()
		}

		p.Message(e.Source, msg, color.Bold, color.FgRed)
	case progress.EventLog:
		p.Message(e.Source, e.Message, color.Faint)
	}
}

// PrinterHandler returns a reassembler handler printing the lines of source with p.
func PrinterHandler(p *Printer, source string, stream progress.Stream) linereassembler.Handler {
	return linereassembler.HandlerFuncs{
		Add:     func(text string) { p.Add(Line{Source: source, Stream: stream, Text: text}) },
		Replace: func(text string) { p.Replace(Line{Source: source, Stream: stream, Text: text}) },
	}
}
