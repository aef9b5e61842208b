// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/matt-FFFFFF/consoletext/internal/color"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/matt-FFFFFF/consoletext/internal/textenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrinter(buf *bytes.Buffer, policy linereassembler.ReplacePolicy, opts ...PrinterOption) *Printer {
	return NewPrinter(buf, policy, append([]PrinterOption{WithColour(false), WithWidth(0)}, opts...)...)
}

func TestPrinter_Output(t *testing.T) {
	tests := []struct {
		name   string
		policy linereassembler.ReplacePolicy
		input  string
		want   string
	}{
		{
			name:   "plain lines",
			policy: linereassembler.ReplaceOnCR,
			input:  "a\nb\n",
			want:   "a\nb\n",
		},
		{
			name:   "progress",
			policy: linereassembler.ReplaceOnCR,
			input:  "10%\r50%\r100%\ndone\n",
			want:   "10%" + color.RedrawLine + "50%" + color.RedrawLine + "100%\ndone\n",
		},
		{
			name:   "transient then close",
			policy: linereassembler.ReplaceOnCR,
			input:  "a\nb\r",
			want:   "a\nb\n",
		},
		{
			name:   "pending overwrite moves up",
			policy: linereassembler.ReplacePendingOnly,
			input:  "a\rb\rc\n",
			want:   "a\n" + cursorUp + color.RedrawLine + "b" + color.RedrawLine + "c\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			p := newTestPrinter(&buf, tt.policy)
			r := linereassembler.New(PrinterHandler(p, "cmd", progress.StreamStdout),
				linereassembler.WithEncoding(textenc.UTF8),
				linereassembler.WithReplacePolicy(tt.policy))

			_, err := r.Write([]byte(tt.input))
			require.NoError(t, err)
			require.NoError(t, p.Close())

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_ReplaceFromOtherSource(t *testing.T) {
	var buf bytes.Buffer

	p := newTestPrinter(&buf, linereassembler.ReplaceOnCR, WithSourcePrefix())
	p.Replace(Line{Source: "a", Text: "1"})
	p.Replace(Line{Source: "b", Text: "2"})
	require.NoError(t, p.Close())

	assert.Equal(t, "[a] 1\n[b] 2\n", buf.String())
}

func TestPrinter_StreamsOfOneSourceDoNotOverwriteEachOther(t *testing.T) {
	var buf bytes.Buffer

	p := newTestPrinter(&buf, linereassembler.ReplaceOnCR)
	p.Replace(Line{Source: "job", Stream: progress.StreamStdout, Text: "progress 10%"})
	p.Replace(Line{Source: "job", Stream: progress.StreamStderr, Text: "warning: disk"})
	p.Replace(Line{Source: "job", Stream: progress.StreamStderr, Text: "warning: disk full"})
	require.NoError(t, p.Close())

	assert.Equal(t, "progress 10%\nwarning: disk"+color.RedrawLine+"warning: disk full\n", buf.String())
}

func TestPrinter_StderrColour(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, linereassembler.ReplaceOnCR, WithColour(true), WithWidth(0))
	p.Add(Line{Stream: progress.StreamStderr, Text: "warn"})
	p.Add(Line{Stream: progress.StreamStdout, Text: "ok"})

	assert.Equal(t, color.Apply(true, "warn", color.FgYellow)+"\nok\n", buf.String())
}

func TestPrinter_Truncate(t *testing.T) {
	var buf bytes.Buffer

	p := newTestPrinter(&buf, linereassembler.ReplaceOnCR, WithWidth(5))
	p.Add(Line{Text: "0123456789"})
	p.Add(Line{Text: "short"})
	p.Add(Line{Text: "日本語です"})

	assert.Equal(t, "0123…\nshort\n日本…\n", buf.String())
}

func TestPrinter_OnEvent(t *testing.T) {
	var buf bytes.Buffer

	p := newTestPrinter(&buf, linereassembler.ReplaceOnCR)
	p.OnEvent(progress.Event{Type: progress.EventStarted, Message: "starting"})
	p.OnEvent(progress.Event{Type: progress.EventLineReplaced, Data: progress.EventData{Line: "50%"}})
	p.OnEvent(progress.Event{Type: progress.EventFailed, Message: "failed", Data: progress.EventData{Error: errors.New("exit 1")}})
	p.OnEvent(progress.Event{Type: progress.EventCompleted})
	require.NoError(t, p.Close())

	assert.Equal(t, "starting\n50%\nfailed: exit 1\n", buf.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrinter_WriteError(t *testing.T) {
	p := NewPrinter(failWriter{}, linereassembler.ReplaceOnCR)
	p.Add(Line{Text: "x"})

	require.ErrorIs(t, p.Err(), ErrPrinterWrite)
	require.ErrorIs(t, p.Close(), ErrPrinterWrite)
}
