// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/matt-FFFFFF/consoletext/cmd/consoletext/cmdstate"
	"github.com/matt-FFFFFF/consoletext/internal/ctxlog"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const sample = "Downloading\r\n10%\r50%\r100%\nDone\n"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	out := new(bytes.Buffer)

	root := &cli.Command{
		Name:      "consoletext",
		Flags:     cmdstate.Flags(),
		Before:    cmdstate.Before,
		Reader:    strings.NewReader(stdin),
		Writer:    out,
		ErrWriter: new(bytes.Buffer),

		ExitErrHandler: func(context.Context, *cli.Command, error) {},

		Commands: []*cli.Command{
			{
				Name:   "replay",
				Flags:  flags(),
				Action: actionFunc,
			},
		},
	}

	err := root.Run(context.Background(), append([]string{"consoletext"}, args...))

	return out.String(), err
}

func TestFeed(t *testing.T) {
	var got []string

	r := linereassembler.New(linereassembler.HandlerFuncs{
		Add:     func(s string) { got = append(got, "+"+s) },
		Replace: func(s string) { got = append(got, "~"+s) },
	})

	n, err := Feed(r, iotest.OneByteReader(strings.NewReader(sample)), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sample)), n)
	assert.Equal(t, []string{"~Downloading", "~10%", "~50%", "~100%", "+Done"}, got)
}

func TestFeed_ReadError(t *testing.T) {
	r := linereassembler.New(linereassembler.HandlerFuncs{})

	_, err := Feed(r, iotest.ErrReader(assert.AnError), 8)
	require.ErrorIs(t, err, ErrRead)
	require.ErrorIs(t, err, assert.AnError)
}

func TestReplay_Stdin(t *testing.T) {
	out, err := execute(t, sample, "replay", "--no-color", "--chunk-size", "2")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(out, "100%\nDone\n"), out)
}

func TestReplay_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\rthree\n"), 0o600))

	out, err := execute(t, "", "replay", "--json", "--no-color", path)
	require.NoError(t, err)

	var events []progress.Event

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var e progress.Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		events = append(events, e)
	}

	require.Len(t, events, 3)
	assert.Equal(t, progress.EventLineAdded, events[0].Type)
	assert.Equal(t, "one", events[0].Data.Line)
	assert.Equal(t, progress.EventLineReplaced, events[1].Type)
	assert.Equal(t, "two", events[1].Data.Line)
	assert.Equal(t, progress.EventLineReplaced, events[2].Type)
	assert.Equal(t, "three", events[2].Data.Line)
	assert.Equal(t, "build.log", events[2].Source)
	assert.Equal(t, progress.StreamFile, events[2].Data.Stream)
}

func TestReplay_FlushPartial(t *testing.T) {
	out, err := execute(t, "no newline", "--flush-partial", "replay", "--no-color")
	require.NoError(t, err)
	assert.Equal(t, "no newline\n", out)

	out, err = execute(t, "no newline", "replay", "--no-color")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestReplay_Errors(t *testing.T) {
	_, err := execute(t, "", "replay", "--chunk-size", "0")
	require.Error(t, err)

	_, err = execute(t, "", "replay", "--follow")
	require.Error(t, err)

	_, err = execute(t, "", "replay", filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
}

func TestJSONListener_LogsEncodeFailure(t *testing.T) {
	logs := new(bytes.Buffer)
	ctx := ctxlog.New(context.Background(), slog.New(ctxlog.NewPrettyHandler(nil, ctxlog.WithDestinationWriter(logs))))

	out := new(bytes.Buffer)
	l := newJSONListener(ctx, out, false)

	// encoding/json rejects years past 9999
	l.OnEvent(progress.Event{Source: "build.log", Type: progress.EventLineAdded, Timestamp: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)})
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "could not encode event")
	assert.Contains(t, logs.String(), "build.log")

	l.OnEvent(progress.NewEvent("build.log", progress.EventLineAdded, ""))
	assert.Contains(t, out.String(), `"source":"build.log"`)
}
