// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"

	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
)

// LineHandler returns a reassembler handler that reports each line as an event from source.
func LineHandler(reporter Reporter, source string, stream Stream) linereassembler.Handler {
	report := func(typ EventType, text string) {
		reporter.Report(Event{
			Source:    source,
			Type:      typ,
			Timestamp: time.Now(),
			Data: EventData{
				Line:   text,
				Stream: stream,
			},
		})
	}

	return linereassembler.HandlerFuncs{
		Add:     func(text string) { report(EventLineAdded, text) },
		Replace: func(text string) { report(EventLineReplaced, text) },
	}
}
