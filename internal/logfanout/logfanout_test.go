// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package logfanout

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_SubscribeAndCancel(t *testing.T) {
	hub := NewHub()

	var got []string

	cancel := hub.Subscribe(func(e Entry) { got = append(got, e.Message) })
	assert.Equal(t, 1, hub.Len())

	hub.Publish(Entry{Message: "one"})
	cancel()
	hub.Publish(Entry{Message: "two"})

	assert.Equal(t, []string{"one"}, got)
	assert.Equal(t, 0, hub.Len())
}

func TestHub_Close(t *testing.T) {
	hub := NewHub()
	calls := 0

	hub.Subscribe(func(Entry) { calls++ })
	hub.Close()
	hub.Publish(Entry{Message: "dropped"})

	cancel := hub.Subscribe(func(Entry) { calls++ })
	cancel()
	hub.Publish(Entry{Message: "dropped"})

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, hub.Len())
}

func TestHub_ConcurrentPublish(t *testing.T) {
	hub := NewHub()

	var (
		mu    sync.Mutex
		count int
	)

	hub.Subscribe(func(Entry) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				hub.Publish(Entry{Message: "x"})
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 1000, count)
}

func TestHandler_PublishesAndForwards(t *testing.T) {
	hub := NewHub()

	var entries []Entry

	hub.Subscribe(func(e Entry) { entries = append(entries, e) })

	var buf bytes.Buffer

	next := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewHandler(hub, next, slog.LevelInfo))

	logger.Debug("debug only goes to the next handler")
	logger.With("run", "abc").WithGroup("proc").Info("started", "pid", 42)

	require.Len(t, entries, 1)
	assert.Equal(t, "started", entries[0].Message)
	assert.Equal(t, slog.LevelInfo, entries[0].Level)
	assert.Equal(t, "INFO started run=abc proc.pid=42", entries[0].String())

	out := buf.String()
	assert.Contains(t, out, "debug only goes to the next handler")
	assert.Contains(t, out, "proc.pid=42")
}

func TestHandler_NilNext(t *testing.T) {
	hub := NewHub()

	var got []string

	hub.Subscribe(func(e Entry) { got = append(got, e.Message) })

	logger := slog.New(NewHandler(hub, nil, nil))
	logger.Info("kept")
	logger.Debug("filtered")

	assert.Equal(t, []string{"kept"}, got)
}
