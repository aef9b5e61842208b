// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sse reads and writes Server-Sent Events.
//
// The event server streams progress events with Write, and the attach client parses them with
// Reader. See https://html.spec.whatwg.org/multipage/server-sent-events.html.
package sse

// Event is a single SSE event, delimited by a blank line in the stream.
type Event struct {
	// Type is the "event:" field. Empty means the default "message" type.
	Type string
	// Data is all "data:" lines of the event joined with "\n".
	Data string
	// ID is the "id:" field, if present.
	ID string
}
