// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"testing"

	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBroadcaster() *Broadcaster {
	return NewBroadcaster(console.NewScreen(10, linereassembler.ReplaceOnCR))
}

func line(typ progress.EventType, text string) progress.Event {
	return progress.Event{Source: "cmd", Type: typ, Data: progress.EventData{Line: text, Stream: progress.StreamStdout}}
}

func TestBroadcaster_SnapshotReplaysScreen(t *testing.T) {
	b := newBroadcaster()
	defer b.Close()

	b.Report(progress.NewEvent("cmd", progress.EventStarted, "Starting cmd"))
	b.Report(line(progress.EventLineAdded, "a"))
	b.Report(line(progress.EventLineReplaced, "10%"))
	b.Report(line(progress.EventLineReplaced, "20%"))
	b.Report(progress.NewEvent("cmd", progress.EventLog, "not kept"))

	sub := b.Subscribe()
	defer sub.Cancel()

	require.Len(t, sub.Snapshot, 3)
	assert.Equal(t, progress.EventStarted, sub.Snapshot[0].Type)
	assert.Equal(t, progress.EventLineAdded, sub.Snapshot[1].Type)
	assert.Equal(t, "a", sub.Snapshot[1].Data.Line)
	assert.Equal(t, progress.EventLineReplaced, sub.Snapshot[2].Type)
	assert.Equal(t, "20%", sub.Snapshot[2].Data.Line)

	// Replaying the snapshot rebuilds the same screen.
	s := console.NewScreen(10, linereassembler.ReplaceOnCR)
	for _, e := range sub.Snapshot {
		s.OnEvent(e)
	}

	assert.Equal(t, b.Screen().Text(nil), s.Text(nil))
}

func TestBroadcaster_LiveEvents(t *testing.T) {
	b := newBroadcaster()
	sub := b.Subscribe()

	assert.Equal(t, 1, b.Subscribers())

	b.Report(line(progress.EventLineAdded, "x"))

	e := <-sub.C
	assert.Equal(t, "x", e.Data.Line)

	b.Close()

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Zero(t, b.Subscribers())

	sub.Cancel()
	b.Close()
}

func TestBroadcaster_Cancel(t *testing.T) {
	b := newBroadcaster()
	defer b.Close()

	sub := b.Subscribe()
	sub.Cancel()
	sub.Cancel()

	_, ok := <-sub.C
	assert.False(t, ok)
	assert.Zero(t, b.Subscribers())
}

func TestBroadcaster_SlowSubscriberDropped(t *testing.T) {
	b := newBroadcaster()
	b.bufSize = 2

	defer b.Close()

	slow := b.Subscribe()

	for range 3 {
		b.Report(line(progress.EventLineAdded, "x"))
	}

	n := 0
	for range slow.C {
		n++
	}

	assert.Equal(t, 2, n)
	assert.Zero(t, b.Subscribers())
}

func TestBroadcaster_SubscribeAfterClose(t *testing.T) {
	b := newBroadcaster()
	b.Report(line(progress.EventLineAdded, "kept"))
	b.Close()
	b.Report(line(progress.EventLineAdded, "ignored"))

	sub := b.Subscribe()
	require.Len(t, sub.Snapshot, 1)

	_, ok := <-sub.C
	assert.False(t, ok)
}
