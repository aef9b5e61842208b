// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linereassembler

// Handler receives completed lines.
// Calls are made synchronously from Append, Write and Flush, in the order the lines completed.
// A Handler must not call back into the Reassembler that invoked it.
type Handler interface {
	// OnAddLine is called for a line that should be appended to the display.
	OnAddLine(text string)
	// OnReplaceLine is called for a line that should overwrite the previously displayed line.
	OnReplaceLine(text string)
}

// HandlerFuncs adapts a pair of functions to the Handler interface.
// A nil function discards the corresponding lines.
type HandlerFuncs struct {
	Add     func(text string)
	Replace func(text string)
}

// OnAddLine implements Handler.
func (h HandlerFuncs) OnAddLine(text string) {
	if h.Add != nil {
		h.Add(text)
	}
}

// OnReplaceLine implements Handler.
func (h HandlerFuncs) OnReplaceLine(text string) {
	if h.Replace != nil {
		h.Replace(text)
	}
}

var _ Handler = HandlerFuncs{}
