// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
	"sync/atomic"
)

// Reporter is the interface for sending events.
type Reporter interface {
	// Report sends an event. Implementations should not block for long.
	Report(event Event)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// Listener receives events.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent implements Listener.
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// NullReporter is a no-op Reporter.
type NullReporter struct{}

// Report implements Reporter by doing nothing.
func (NullReporter) Report(Event) {}

// Close implements Reporter by doing nothing.
func (NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}

// ChannelReporter implements Reporter using a buffered channel.
// Sends never block: when the buffer is full the event is dropped and counted.
type ChannelReporter struct {
	ch      chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

// NewChannelReporter creates a new ChannelReporter with the given buffer size.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements Reporter.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed || cr.ctx.Err() != nil {
		cr.dropped.Add(1)
		return
	}

	select {
	case cr.ch <- event:
	default:
		cr.dropped.Add(1)
	}
}

// Close implements Reporter. Buffered events are delivered to listeners before Close returns.
func (cr *ChannelReporter) Close() {
	cr.once.Do(func() {
		cr.mu.Lock()
		cr.closed = true
		close(cr.ch)
		cr.mu.Unlock()

		cr.wg.Wait()
		cr.cancel()
	})
}

// Listen starts a goroutine forwarding events to listener.
// It runs until the reporter is closed or the parent context is cancelled.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for {
			select {
			case event, ok := <-cr.ch:
				if !ok {
					return
				}

				listener.OnEvent(event)
			case <-cr.ctx.Done():
				return
			}
		}
	}()
}

// Dropped returns the number of events dropped so far.
func (cr *ChannelReporter) Dropped() uint64 {
	return cr.dropped.Load()
}

type direct struct {
	l Listener
}

// Direct returns a Reporter that calls l synchronously from Report. Close does nothing.
// l must be safe for concurrent use when more than one goroutine reports.
func Direct(l Listener) Reporter {
	return direct{l: l}
}

func (d direct) Report(event Event) {
	d.l.OnEvent(event)
}

func (direct) Close() {}

type tee []Reporter

// Tee returns a Reporter that forwards every event to each of reporters in order.
// Close closes all of them. Nil reporters are skipped.
func Tee(reporters ...Reporter) Reporter {
	t := make(tee, 0, len(reporters))

	for _, r := range reporters {
		if r != nil {
			t = append(t, r)
		}
	}

	return t
}

func (t tee) Report(event Event) {
	for _, r := range t {
		r.Report(event)
	}
}

func (t tee) Close() {
	for _, r := range t {
		r.Close()
	}
}
