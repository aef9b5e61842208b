// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"errors"
	"time"
)

// ErrUnknownEventType is returned when parsing an unrecognised event type.
var ErrUnknownEventType = errors.New("unknown event type")

// Event represents a real-time update from a byte source.
type Event struct {
	Source    string    // Label of the source, e.g. the command label or file name
	Type      EventType // What happened
	Message   string    // Human-readable status message
	Timestamp time.Time // When the event occurred
	Data      EventData // Type-specific data
}

// EventType represents the type of event.
type EventType int

const (
	// EventStarted indicates a source has started producing bytes.
	EventStarted EventType = iota
	// EventLineAdded indicates a new line should be appended.
	EventLineAdded
	// EventLineReplaced indicates the last line should be overwritten.
	EventLineReplaced
	// EventCompleted indicates successful completion.
	EventCompleted
	// EventFailed indicates the source failed.
	EventFailed
	// EventLog carries a log entry.
	EventLog
)

var eventTypeNames = [...]string{
	EventStarted:      "started",
	EventLineAdded:    "line-added",
	EventLineReplaced: "line-replaced",
	EventCompleted:    "completed",
	EventFailed:       "failed",
	EventLog:          "log",
}

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	if et < 0 || int(et) >= len(eventTypeNames) {
		return "unknown"
	}

	return eventTypeNames[et]
}

// ParseEventType is the inverse of EventType.String.
func ParseEventType(s string) (EventType, error) {
	for i, n := range eventTypeNames {
		if n == s {
			return EventType(i), nil
		}
	}

	return 0, errors.Join(ErrUnknownEventType, errors.New(s))
}

// IsLine reports whether the event carries a line.
func (et EventType) IsLine() bool {
	return et == EventLineAdded || et == EventLineReplaced
}

// Stream names the logical stream a line came from.
type Stream string

const (
	// StreamStdout is standard output.
	StreamStdout Stream = "stdout"
	// StreamStderr is standard error.
	StreamStderr Stream = "stderr"
	// StreamFile is a followed or replayed file.
	StreamFile Stream = "file"
	// StreamInput is interactive input.
	StreamInput Stream = "input"
)

// EventData contains type-specific information for events.
type EventData struct {
	// For EventLineAdded/EventLineReplaced
	Line   string
	Stream Stream

	// For EventCompleted/EventFailed
	ExitCode int
	Error    error
}

// NewEvent returns an event stamped with the current time.
func NewEvent(source string, typ EventType, msg string) Event {
	return Event{
		Source:    source,
		Type:      typ,
		Message:   msg,
		Timestamp: time.Now(),
	}
}
