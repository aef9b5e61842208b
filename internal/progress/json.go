// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"encoding/json"
	"errors"
	"time"
)

type jsonEvent struct {
	Source    string    `json:"source,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Line      string    `json:"line,omitempty"`
	Stream    Stream    `json:"stream,omitempty"`
	ExitCode  int       `json:"exitCode,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler. Errors are written as their message.
func (e Event) MarshalJSON() ([]byte, error) {
	je := jsonEvent{
		Source:    e.Source,
		Type:      e.Type.String(),
		Message:   e.Message,
		Timestamp: e.Timestamp,
		Line:      e.Data.Line,
		Stream:    e.Data.Stream,
		ExitCode:  e.Data.ExitCode,
	}
	if e.Data.Error != nil {
		je.Error = e.Data.Error.Error()
	}

	return json.Marshal(je) //nolint:wrapcheck
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Event) UnmarshalJSON(b []byte) error {
	var je jsonEvent
	if err := json.Unmarshal(b, &je); err != nil {
		return err //nolint:wrapcheck
	}

	typ, err := ParseEventType(je.Type)
	if err != nil {
		return err
	}

	*e = Event{
		Source:    je.Source,
		Type:      typ,
		Message:   je.Message,
		Timestamp: je.Timestamp,
		Data: EventData{
			Line:     je.Line,
			Stream:   je.Stream,
			ExitCode: je.ExitCode,
		},
	}
	if je.Error != "" {
		e.Data.Error = errors.New(je.Error)
	}

	return nil
}
