// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sse

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()

	var out []Event

	for {
		ev, err := r.Next()
		require.NoError(t, err)

		if ev == nil {
			return out
		}

		out = append(out, *ev)
	}
}

func TestReader_Next(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Event
	}{
		{
			name:  "single",
			input: "data: hello world\n\n",
			want:  []Event{{Data: "hello world"}},
		},
		{
			name:  "typed with id",
			input: "id: 7\nevent: line-added\ndata: {}\n\n",
			want:  []Event{{Type: "line-added", Data: "{}", ID: "7"}},
		},
		{
			name:  "multi data",
			input: "data: a\ndata: b\n\n",
			want:  []Event{{Data: "a\nb"}},
		},
		{
			name:  "empty first data line",
			input: "data:\ndata: b\n\n",
			want:  []Event{{Data: "\nb"}},
		},
		{
			name:  "comments and blank lines",
			input: ": keep-alive\n\n\ndata: x\n\n: bye\n\n",
			want:  []Event{{Data: "x"}},
		},
		{
			name:  "no space after colon",
			input: "event:started\ndata:{}\n\n",
			want:  []Event{{Type: "started", Data: "{}"}},
		},
		{
			name:  "unterminated last event",
			input: "data: one\n\ndata: two",
			want:  []Event{{Data: "one"}, {Data: "two"}},
		},
		{
			name:  "unknown fields ignored",
			input: "retry: 100\nfoo\ndata: y\n\n",
			want:  []Event{{Data: "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, NewReader(iotest.HalfReader(strings.NewReader(tt.input))))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReader_Tee(t *testing.T) {
	var dst bytes.Buffer

	in := "event: a\ndata: 1\n\n: c\n\n"
	readAll(t, NewTeeReader(strings.NewReader(in), &dst))

	assert.Equal(t, in, dst.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestReader_TeeError(t *testing.T) {
	_, err := NewTeeReader(strings.NewReader("data: x\n\n"), failWriter{}).Next()
	require.ErrorIs(t, err, ErrTee)
}

func TestReader_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewReader(iotest.ErrReader(boom)).Next()
	require.ErrorIs(t, err, boom)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Write(&buf, Event{ID: "1", Type: "line-added", Data: `{"line":"x"}`}))
	require.NoError(t, Comment(&buf, "ping"))
	require.NoError(t, Write(&buf, Event{Data: "a\r\nb\rc"}))

	assert.Equal(t,
		"id: 1\nevent: line-added\ndata: {\"line\":\"x\"}\n\n: ping\n\ndata: a\ndata: b\ndata: c\n\n",
		buf.String())

	got := readAll(t, NewReader(&buf))
	assert.Equal(t, []Event{
		{ID: "1", Type: "line-added", Data: `{"line":"x"}`},
		{Data: "a\nb\nc"},
	}, got)
}

func TestWrite_InvalidField(t *testing.T) {
	require.ErrorIs(t, Write(&bytes.Buffer{}, Event{Type: "a\nb"}), ErrInvalidField)
	require.ErrorIs(t, Write(&bytes.Buffer{}, Event{ID: "1\r"}), ErrInvalidField)
}
