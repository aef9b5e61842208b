// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package console

import (
	"strings"
	"sync"
	"time"

	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
)

// DefaultHistory is the number of lines a Screen keeps when no capacity is given.
const DefaultHistory = 1000

// Line is one displayed line.
type Line struct {
	Source    string          `json:"source,omitempty"`
	Stream    progress.Stream `json:"stream,omitempty"`
	Text      string          `json:"text"`
	Transient bool            `json:"transient,omitempty"` // placed by a replace
	Time      time.Time       `json:"time"`
}

// Screen is a bounded, concurrency-safe line history.
type Screen struct {
	mu       sync.RWMutex
	lines    []Line
	capacity int
	policy   linereassembler.ReplacePolicy
	version  uint64
}

// NewScreen creates a Screen keeping at most capacity lines (DefaultHistory if capacity <= 0).
// policy must match the reassemblers feeding it.
func NewScreen(capacity int, policy linereassembler.ReplacePolicy) *Screen {
	if capacity <= 0 {
		capacity = DefaultHistory
	}

	return &Screen{
		lines:    make([]Line, 0, min(capacity, 64)),
		capacity: capacity,
		policy:   policy,
	}
}

// Add appends a line.
func (s *Screen) Add(l Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.Transient = false
	s.push(l)
}

// Replace overwrites the last line when it came from the same source and stream and may be
// overwritten, otherwise it appends.
func (s *Screen) Replace(l Line) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.Transient = true

	if n := len(s.lines); n > 0 && overwrites(s.policy, s.lines[n-1], l) {
		s.lines[n-1] = l
		s.version++

		return
	}

	s.push(l)
}

// overwrites reports whether a replace with next may overwrite last.
// Lines of different sources or streams never overwrite each other.
func overwrites(policy linereassembler.ReplacePolicy, last, next Line) bool {
	if last.Source != next.Source || last.Stream != next.Stream {
		return false
	}

	return last.Transient || policy == linereassembler.ReplacePendingOnly
}

// push must be called with the write lock held.
func (s *Screen) push(l Line) {
	if l.Time.IsZero() {
		l.Time = time.Now()
	}

	if len(s.lines) >= s.capacity {
		s.lines = s.lines[len(s.lines)-s.capacity+1:]
	}

	s.lines = append(s.lines, l)
	s.version++
}

// Lines returns a copy of the history, oldest first.
func (s *Screen) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)

	return out
}

// Last returns the newest line.
func (s *Screen) Last() (Line, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.lines) == 0 {
		return Line{}, false
	}

	return s.lines[len(s.lines)-1], true
}

// Len returns the number of lines held.
func (s *Screen) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.lines)
}

// Capacity returns the maximum number of lines held.
func (s *Screen) Capacity() int {
	return s.capacity
}

// Version increases on every change, so callers can cheaply tell whether to redraw.
func (s *Screen) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Clear removes all lines.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = s.lines[:0]
	s.version++
}

// Text joins the line texts with newlines, applying style to each line if it is not nil.
func (s *Screen) Text(style func(Line) string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sb strings.Builder

	for i, l := range s.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}

		if style != nil {
			sb.WriteString(style(l))
			continue
		}

		sb.WriteString(l.Text)
	}

	return sb.String()
}

// OnEvent applies line events to the screen. Other events are ignored.
func (s *Screen) OnEvent(e progress.Event) {
	l := Line{Source: e.Source, Stream: e.Data.Stream, Text: e.Data.Line, Time: e.Timestamp}

	switch e.Type { //nolint:exhaustive
	case progress.EventLineAdded:
		s.Add(l)
	case progress.EventLineReplaced:
		s.Replace(l)
	}
}

// ScreenHandler returns a reassembler handler writing the lines of source to s.
func ScreenHandler(s *Screen, source string, stream progress.Stream) linereassembler.Handler {
	return linereassembler.HandlerFuncs{
		Add:     func(text string) { s.Add(Line{Source: source, Stream: stream, Text: text}) },
		Replace: func(text string) { s.Replace(Line{Source: source, Stream: stream, Text: text}) },
	}
}
