// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linereassembler

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
)

// DefaultTruncationMarker is appended to lines that were split by WithMaxLineLength.
const DefaultTruncationMarker = " [truncated]"

// ErrUnknownReplacePolicy is returned when a replace policy name is not recognised.
var ErrUnknownReplacePolicy = errors.New("unknown replace policy")

// ReplacePolicy decides whether a completed line is reported as a replacement.
type ReplacePolicy int

const (
	// ReplaceOnCR reports a line as a replacement when it is terminated by "\r", or when it
	// follows a "\r" that was not paired with a "\n".
	ReplaceOnCR ReplacePolicy = iota
	// ReplacePendingOnly reports a line as a replacement only when it follows an unpaired "\r".
	// The terminator of the line itself does not matter, so the first line of a progress sequence
	// is added and every following redraw replaces it.
	ReplacePendingOnly
)

// String implements fmt.Stringer.
func (p ReplacePolicy) String() string {
	switch p {
	case ReplaceOnCR:
		return "cr"
	case ReplacePendingOnly:
		return "pending"
	default:
		return "unknown"
	}
}

// ParseReplacePolicy converts the names returned by String back to a policy.
func ParseReplacePolicy(s string) (ReplacePolicy, error) {
	switch s {
	case "", "cr":
		return ReplaceOnCR, nil
	case "pending":
		return ReplacePendingOnly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownReplacePolicy, s)
	}
}

// Option configures a Reassembler.
type Option func(r *Reassembler)

// WithEncoding sets the encoding used to decode completed lines.
// A nil encoding keeps the default.
func WithEncoding(enc encoding.Encoding) Option {
	return func(r *Reassembler) {
		if enc != nil {
			r.enc = enc
		}
	}
}

// WithMaxLineLength caps the number of bytes held for an unterminated line.
// When a byte arrives that would exceed the cap, the held bytes are reported through OnAddLine
// with marker appended and accumulation starts again. The cut never splits a character: the bytes
// of a partial character move to the next line. A line of exactly n bytes is not truncated.
// A value of zero or less disables the cap.
func WithMaxLineLength(n int, marker string) Option {
	return func(r *Reassembler) {
		if n <= 0 {
			r.maxLen = 0
			return
		}

		r.maxLen = n
		r.marker = marker
	}
}

// WithReplacePolicy sets the policy used to choose between add and replace.
func WithReplacePolicy(p ReplacePolicy) Option {
	return func(r *Reassembler) {
		r.policy = p
	}
}
