// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/textenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lines struct {
	mu  sync.Mutex
	got []string
}

func (l *lines) handler() linereassembler.Handler {
	return linereassembler.HandlerFuncs{
		Add: func(s string) {
			l.mu.Lock()
			defer l.mu.Unlock()

			l.got = append(l.got, "+"+s)
		},
		Replace: func(s string) {
			l.mu.Lock()
			defer l.mu.Unlock()

			l.got = append(l.got, "~"+s)
		},
	}
}

func (l *lines) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.got...)
}

func newTee(r io.Reader, limit int) (*LineTeeReader, *lines) {
	l := &lines{}
	ra := linereassembler.New(l.handler(), linereassembler.WithEncoding(textenc.UTF8))

	return New(r, ra, limit), l
}

func TestLineTeeReader_PassesBytesThrough(t *testing.T) {
	in := "downloading\r10%\r100%\ndone\n"
	tr, l := newTee(strings.NewReader(in), 1024)

	data, err := io.ReadAll(tr)
	require.NoError(t, err)

	assert.Equal(t, in, string(data))
	assert.Equal(t, in, string(tr.GetFullBufferBytes()))
	assert.False(t, tr.Truncated())
	assert.Equal(t, int64(len(in)), tr.BytesRead())
	assert.Equal(t, []string{"~downloading", "~10%", "~100%", "+done"}, l.snapshot())
}

func TestLineTeeReader_OneByteReads(t *testing.T) {
	in := "a\r\nb\nc"
	tr, l := newTee(iotest.OneByteReader(strings.NewReader(in)), 1024)

	n, err := tr.Drain()
	require.NoError(t, err)

	assert.Equal(t, int64(len(in)), n)
	assert.Equal(t, []string{"~a", "+b"}, l.snapshot())
}

func TestLineTeeReader_Limit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		want      string
		truncated bool
	}{
		{name: "under", limit: 100, want: "0123456789\n"},
		{name: "exact", limit: 11, want: "0123456789\n"},
		{name: "over", limit: 4, want: "0123", truncated: true},
		{name: "none", limit: 0, want: "", truncated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, l := newTee(iotest.HalfReader(strings.NewReader("0123456789\n")), tt.limit)

			_, err := tr.Drain()
			require.NoError(t, err)

			assert.Equal(t, tt.want, string(tr.GetFullBufferBytes()))
			assert.Equal(t, tt.truncated, tr.Truncated())
			assert.Equal(t, []string{"+0123456789"}, l.snapshot(), "the sink sees everything")
		})
	}
}

func TestLineTeeReader_ReadError(t *testing.T) {
	boom := errors.New("boom")
	tr, _ := newTee(iotest.ErrReader(boom), 10)

	_, err := tr.Drain()
	require.ErrorIs(t, err, boom)
}

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) { return 0, errors.New("nope") }

func TestLineTeeReader_SinkError(t *testing.T) {
	tr := New(strings.NewReader("x"), failingSink{}, 10)

	_, err := tr.Read(make([]byte, 4))
	require.ErrorIs(t, err, ErrSink)
}

func TestLineTeeReader_ConcurrentInspection(t *testing.T) {
	pr, pw := io.Pipe()
	tr, l := newTee(pr, 1<<20)

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()

		_, _ = tr.Drain()
	}()

	go func() {
		defer wg.Done()

		for range 1000 {
			_ = tr.GetFullBufferBytes()
			_ = tr.Truncated()
			_ = tr.BytesRead()
		}
	}()

	for range 100 {
		_, err := io.WriteString(pw, "line\n")
		require.NoError(t, err)
	}

	require.NoError(t, pw.Close())
	wg.Wait()

	assert.Len(t, l.snapshot(), 100)
	assert.Equal(t, int64(500), tr.BytesRead())
}
