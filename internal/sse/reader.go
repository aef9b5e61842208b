// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sse

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	initialBuf = 64 * 1024
	maxLine    = 1024 * 1024
)

// ErrTee is returned when the tee destination fails.
var ErrTee = errors.New("failed to write to tee destination")

// Reader parses SSE events from a stream, optionally copying every raw line to a destination.
type Reader struct {
	scanner *bufio.Scanner
	dest    io.Writer

	current Event
	hasData bool
	nData   int
}

// NewReader returns a Reader parsing src.
func NewReader(src io.Reader) *Reader {
	return NewTeeReader(src, nil)
}

// NewTeeReader returns a Reader parsing src and writing each raw line to dest. A nil dest is allowed.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBuf), maxLine)

	return &Reader{
		scanner: scanner,
		dest:    dest,
	}
}

// Next blocks until a complete event is available. It returns nil, nil at the end of the stream.
// An event left unterminated at the end of the stream is still returned.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		if r.dest != nil {
			if _, err := io.WriteString(r.dest, raw+"\n"); err != nil {
				return nil, errors.Join(ErrTee, err)
			}
		}

		if raw == "" {
			if r.hasData {
				return r.take(), nil
			}

			continue
		}

		// comment or keep-alive
		if strings.HasPrefix(raw, ":") {
			continue
		}

		r.parseLine(raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if r.hasData {
		return r.take(), nil
	}

	return nil, nil //nolint:nilnil
}

func (r *Reader) parseLine(line string) {
	field, value, ok := strings.Cut(line, ":")
	if ok {
		value = strings.TrimPrefix(value, " ")
	}

	switch field {
	case "data":
		if r.nData > 0 {
			r.current.Data += "\n"
		}

		r.current.Data += value
		r.nData++
		r.hasData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	}
}

func (r *Reader) take() *Event {
	ev := r.current
	r.current = Event{}
	r.hasData = false
	r.nData = 0

	return &ev
}
