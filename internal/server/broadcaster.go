// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package server

import (
	"sync"

	"github.com/matt-FFFFFF/consoletext/internal/console"
	"github.com/matt-FFFFFF/consoletext/internal/progress"
)

const (
	// DefaultSubscriberBuffer is the number of events buffered per subscriber.
	DefaultSubscriberBuffer = 256
	// maxStatus is the number of lifecycle events kept for new subscribers.
	maxStatus = 100
)

// Broadcaster keeps the latest screen and fans events out to subscribers.
// A subscriber that falls a full buffer behind is dropped: its channel is closed.
type Broadcaster struct {
	mu      sync.Mutex
	screen  *console.Screen
	status  []progress.Event
	subs    map[int]chan progress.Event
	next    int
	bufSize int
	closed  bool
}

var _ progress.Reporter = (*Broadcaster)(nil)

// NewBroadcaster creates a Broadcaster recording lines into screen.
func NewBroadcaster(screen *console.Screen) *Broadcaster {
	return &Broadcaster{
		screen:  screen,
		subs:    make(map[int]chan progress.Event),
		bufSize: DefaultSubscriberBuffer,
	}
}

// Screen returns the screen the broadcaster records into.
func (b *Broadcaster) Screen() *console.Screen {
	return b.screen
}

// Report implements progress.Reporter.
func (b *Broadcaster) Report(e progress.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	if e.Type.IsLine() {
		b.screen.OnEvent(e)
	} else if e.Type != progress.EventLog {
		if len(b.status) >= maxStatus {
			b.status = b.status[1:]
		}

		b.status = append(b.status, e)
	}

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			close(ch)
			delete(b.subs, id)
		}
	}
}

// Close implements progress.Reporter. All subscriber channels are closed.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

// Subscription is a consistent snapshot plus the events that follow it.
type Subscription struct {
	// Snapshot replays the current state: lifecycle events so far, then the screen as line events.
	Snapshot []progress.Event
	// C delivers later events. It is closed when the broadcaster closes or the subscriber falls behind.
	C <-chan progress.Event

	cancel func()
}

// Cancel stops the subscription. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancel()
}

// Subscribe returns a subscription. After Close the channel is already closed.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := append([]progress.Event(nil), b.status...)

	for _, l := range b.screen.Lines() {
		typ := progress.EventLineAdded
		if l.Transient {
			typ = progress.EventLineReplaced
		}

		snapshot = append(snapshot, progress.Event{
			Source:    l.Source,
			Type:      typ,
			Timestamp: l.Time,
			Data:      progress.EventData{Line: l.Text, Stream: l.Stream},
		})
	}

	ch := make(chan progress.Event, b.bufSize)

	if b.closed {
		close(ch)
		return &Subscription{Snapshot: snapshot, C: ch, cancel: func() {}}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once

	return &Subscription{
		Snapshot: snapshot,
		C:        ch,
		cancel: func() {
			once.Do(func() {
				b.mu.Lock()
				defer b.mu.Unlock()

				if c, ok := b.subs[id]; ok {
					close(c)
					delete(b.subs, id)
				}
			})
		},
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}
