// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventStarted, "started"},
		{EventLineAdded, "line-added"},
		{EventLineReplaced, "line-replaced"},
		{EventCompleted, "completed"},
		{EventFailed, "failed"},
		{EventLog, "log"},
		{EventType(999), "unknown"},
		{EventType(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.String())
		})
	}
}

func TestParseEventType(t *testing.T) {
	for et := EventStarted; et <= EventLog; et++ {
		got, err := ParseEventType(et.String())
		require.NoError(t, err)
		assert.Equal(t, et, got)
	}

	_, err := ParseEventType("unknown")
	require.ErrorIs(t, err, ErrUnknownEventType)
}

func TestEventType_IsLine(t *testing.T) {
	assert.True(t, EventLineAdded.IsLine())
	assert.True(t, EventLineReplaced.IsLine())
	assert.False(t, EventStarted.IsLine())
	assert.False(t, EventLog.IsLine())
}

func TestEvent_JSON(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("line", func(t *testing.T) {
		e := Event{
			Source:    "build",
			Type:      EventLineReplaced,
			Timestamp: ts,
			Data:      EventData{Line: "50%", Stream: StreamStdout},
		}

		b, err := json.Marshal(e)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"source":"build","type":"line-replaced","timestamp":"2025-06-01T12:00:00Z","line":"50%","stream":"stdout"}`,
			string(b))

		var got Event
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, e, got)
	})

	t.Run("failure", func(t *testing.T) {
		e := Event{
			Source:    "build",
			Type:      EventFailed,
			Message:   "exited",
			Timestamp: ts,
			Data:      EventData{ExitCode: 2, Error: errors.New("exit status 2")},
		}

		b, err := json.Marshal(e)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"error":"exit status 2"`)
		assert.Contains(t, string(b), `"exitCode":2`)

		var got Event
		require.NoError(t, json.Unmarshal(b, &got))
		require.Error(t, got.Data.Error)
		assert.Equal(t, "exit status 2", got.Data.Error.Error())
		assert.Equal(t, 2, got.Data.ExitCode)
	})

	t.Run("bad type", func(t *testing.T) {
		var got Event
		require.ErrorIs(t, json.Unmarshal([]byte(`{"type":"nope"}`), &got), ErrUnknownEventType)
	})
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	e := NewEvent("src", EventStarted, "go")

	assert.Equal(t, "src", e.Source)
	assert.Equal(t, EventStarted, e.Type)
	assert.Equal(t, "go", e.Message)
	assert.False(t, e.Timestamp.Before(before))
}
