// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

const (
	sbPadding = 16 // padding for the strings.Builder
)

// Code represents an ANSI SGR code.
type Code int

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	reset  = "\033[0m"
	prefix = "\033["
	suffix = "m"
)

// Line control sequences.
const (
	// EraseLine clears the whole line the cursor is on.
	EraseLine = "\033[2K"
	// RedrawLine moves to the start of the current line and clears it.
	RedrawLine = "\r" + EraseLine
)

// Text attributes.
const (
	Reset Code = iota
	Bold
	Faint
	Italic
	Underline
)

// Foreground text colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Foreground Hi-Intensity text colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled bool

func init() {
	enabled = EnabledFor(os.Stdout)
}

// Enabled reports whether color output to stdout is enabled.
// It is decided once, in package init.
func Enabled() bool {
	return enabled
}

// EnabledFor reports whether color output to w should be used.
// NO_COLOR wins over FORCE_COLOR; without either, w must be a terminal.
func EnabledFor(w io.Writer) bool {
	if nc := os.Getenv(NoColor); nc != "" {
		return false
	}

	if fc := os.Getenv(ForceColor); fc != "" {
		return true
	}

	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd())) //nolint:gosec
}

// Colorize applies codes to str if color output to stdout is enabled.
// The reset code is appended after str.
func Colorize(str string, codes ...Code) string {
	return Apply(enabled, str, codes...)
}

// Apply applies codes to str when on is true, otherwise it returns str unchanged.
func Apply(on bool, str string, codes ...Code) string {
	if !on || len(codes) == 0 {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + len(reset) + sbPadding)
	sb.WriteString(ControlString(codes...))
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

// ControlString returns the SGR escape sequence selecting codes.
func ControlString(codes ...Code) string {
	sb := strings.Builder{}
	sb.Grow(len(prefix) + len(suffix) + sbPadding)
	sb.WriteString(prefix)

	for i, code := range codes {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)

	return sb.String()
}
