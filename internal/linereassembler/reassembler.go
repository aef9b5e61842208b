// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linereassembler

import (
	"io"
	"unicode/utf8"

	"github.com/matt-FFFFFF/consoletext/internal/textenc"
	"golang.org/x/text/encoding"
)

// Reassembler rebuilds lines from a byte stream. The zero value is not usable, use New.
type Reassembler struct {
	h         Handler
	enc       encoding.Encoding
	policy    ReplacePolicy
	maxLen    int
	marker    string
	buf       []byte // never holds '\r' or '\n'
	pendingCR bool   // last terminator was '\r' and no '\n' has followed it yet
}

var _ io.Writer = (*Reassembler)(nil)

// New creates a Reassembler that reports lines to h.
// Lines are decoded with the platform default encoding unless WithEncoding is given.
func New(h Handler, opts ...Option) *Reassembler {
	if h == nil {
		h = HandlerFuncs{}
	}

	r := &Reassembler{
		h:   h,
		enc: textenc.Platform(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reset discards the line being built and forgets any pending carriage return.
// Unterminated content is dropped without being reported.
func (r *Reassembler) Reset() {
	r.buf = r.buf[:0]
	r.pendingCR = false
}

// Append consumes count bytes of b starting at offset.
// The range must lie within b; an out of range offset or count panics.
func (r *Reassembler) Append(b []byte, offset, count int) {
	// the third index bounds the range by len(b) rather than cap(b)
	for _, c := range b[offset : offset+count : len(b)] {
		if c != '\n' && c != '\r' {
			if r.maxLen > 0 && len(r.buf) >= r.maxLen {
				r.truncate()
			}

			r.buf = append(r.buf, c)

			continue
		}

		isCR := c == '\r'
		if len(r.buf) > 0 {
			r.emit(r.replace(isCR))
		}

		r.pendingCR = isCR
	}
}

// Write implements io.Writer. It never fails.
func (r *Reassembler) Write(p []byte) (int, error) {
	r.Append(p, 0, len(p))
	return len(p), nil
}

// Flush reports the line being built as if a "\n" had arrived.
// It does nothing when no content is held.
func (r *Reassembler) Flush() {
	if len(r.buf) > 0 {
		r.emit(r.replace(false))
	}

	r.pendingCR = false
}

// Pending returns the number of bytes held for the line being built.
func (r *Reassembler) Pending() int {
	return len(r.buf)
}

// Encoding returns the encoding used to decode lines.
func (r *Reassembler) Encoding() encoding.Encoding {
	return r.enc
}

// truncate reports the held bytes up to the last complete character with the marker appended.
// The bytes of a character cut by the limit are kept and begin the next line.
func (r *Reassembler) truncate() {
	n := textenc.CompleteLen(r.enc, r.buf)
	if n == 0 {
		// the whole buffer is one unfinished character; let it complete unless it is overlong
		if len(r.buf) < r.maxLen+utf8.UTFMax {
			return
		}

		n = len(r.buf)
	}

	text := textenc.Decode(r.enc, r.buf[:n]) + r.marker
	r.buf = r.buf[:copy(r.buf, r.buf[n:])]
	r.h.OnAddLine(text)
}

func (r *Reassembler) replace(isCR bool) bool {
	if r.policy == ReplacePendingOnly {
		return r.pendingCR
	}

	return r.pendingCR || isCR
}

// emit decodes and clears the buffer before calling the handler.
func (r *Reassembler) emit(replace bool) {
	text := r.decode()
	r.buf = r.buf[:0]

	if replace {
		r.h.OnReplaceLine(text)
		return
	}

	r.h.OnAddLine(text)
}

func (r *Reassembler) decode() string {
	return textenc.Decode(r.enc, r.buf)
}
