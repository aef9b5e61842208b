// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"errors"
	"io"
	"sync"
)

// ErrSink is returned when the sink fails to accept a chunk.
var ErrSink = errors.New("failed to write to sink")

// Sink receives every chunk read. *linereassembler.Reassembler satisfies it.
type Sink = io.Writer

// LineTeeReader wraps an io.Reader, passing each chunk to a Sink and keeping up to limit bytes
// of the raw stream. It is safe to inspect concurrently with Read.
type LineTeeReader struct {
	reader    io.Reader
	sink      Sink
	full      *bytes.Buffer
	limit     int
	total     int64
	truncated bool
	mu        sync.RWMutex
}

// New creates a LineTeeReader. A limit of zero or less keeps no copy.
func New(r io.Reader, sink Sink, limit int) *LineTeeReader {
	return &LineTeeReader{
		reader: r,
		sink:   sink,
		full:   &bytes.Buffer{},
		limit:  limit,
	}
}

// Read implements io.Reader.
func (lt *LineTeeReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)
	if n > 0 {
		lt.mu.Lock()
		defer lt.mu.Unlock()

		lt.total += int64(n)
		lt.capture(p[:n])

		if _, werr := lt.sink.Write(p[:n]); werr != nil {
			return n, errors.Join(ErrSink, werr)
		}
	}

	return n, err //nolint:wrapcheck
}

// capture must be called with the write lock held.
func (lt *LineTeeReader) capture(b []byte) {
	room := lt.limit - lt.full.Len()
	if room <= 0 {
		lt.truncated = lt.truncated || len(b) > 0
		return
	}

	if len(b) > room {
		b = b[:room]
		lt.truncated = true
	}

	lt.full.Write(b)
}

// Drain reads until EOF, discarding what the caller would have read.
func (lt *LineTeeReader) Drain() (int64, error) {
	return io.Copy(io.Discard, lt) //nolint:wrapcheck
}

// GetFullBufferBytes returns a copy of the captured bytes.
func (lt *LineTeeReader) GetFullBufferBytes() []byte {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return bytes.Clone(lt.full.Bytes())
}

// Truncated reports whether more bytes were read than the limit allowed to keep.
func (lt *LineTeeReader) Truncated() bool {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return lt.truncated
}

// BytesRead returns the number of bytes read so far.
func (lt *LineTeeReader) BytesRead() int64 {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return lt.total
}
