// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logfanout delivers log entries to a set of subscribers.
//
// A Hub is owned by whoever sets up logging and is handed to the parts that want to watch log
// output, such as the TUI footer or the event server. There is no package level subscriber list.
package logfanout

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Entry is a single log record as seen by subscribers.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   []slog.Attr
}

// String formats the entry as "LEVEL message key=value ...".
func (e Entry) String() string {
	s := fmt.Sprintf("%s %s", e.Level, e.Message)
	for _, a := range e.Attrs {
		s += " " + a.String()
	}

	return s
}

// Hub is a registry of subscribers. It is safe for concurrent use.
// Subscribers are called synchronously by Publish and must not block.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]func(Entry)
	next   int
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[int]func(Entry)),
	}
}

// Subscribe registers fn and returns a function that removes it again.
// Subscribing to a closed hub returns a no-op cancel function.
func (h *Hub) Subscribe(fn func(Entry)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || fn == nil {
		return func() {}
	}

	id := h.next
	h.next++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		delete(h.subs, id)
	}
}

// Publish delivers e to every subscriber.
func (h *Hub) Publish(e Entry) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for _, fn := range h.subs {
		fn(e)
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs)
}

// Close removes all subscribers. Later publishes are dropped.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	clear(h.subs)
}
