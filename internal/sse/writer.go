// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sse

import (
	"errors"
	"io"
	"strings"
)

// ErrInvalidField is returned when the event type or ID contains a line break.
var ErrInvalidField = errors.New("sse field must not contain a line break")

// Write encodes ev to w, followed by the blank line that ends it.
// Data containing line breaks is split over several data lines.
func Write(w io.Writer, ev Event) error {
	if strings.ContainsAny(ev.Type, "\r\n") || strings.ContainsAny(ev.ID, "\r\n") {
		return ErrInvalidField
	}

	var sb strings.Builder

	if ev.ID != "" {
		sb.WriteString("id: " + ev.ID + "\n")
	}

	if ev.Type != "" {
		sb.WriteString("event: " + ev.Type + "\n")
	}

	data := strings.ReplaceAll(ev.Data, "\r\n", "\n")
	data = strings.ReplaceAll(data, "\r", "\n")

	for line := range strings.SplitSeq(data, "\n") {
		sb.WriteString("data: " + line + "\n")
	}

	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())

	return err //nolint:wrapcheck
}

// Comment writes a comment line, used as a keep-alive.
func Comment(w io.Writer, text string) error {
	_, err := io.WriteString(w, ": "+strings.ReplaceAll(text, "\n", " ")+"\n\n")

	return err //nolint:wrapcheck
}
