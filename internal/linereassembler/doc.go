// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package linereassembler turns raw console output into lines.
//
// A Reassembler consumes bytes in arbitrary chunks, exactly as they arrive from a pipe, and
// reports every completed line to a Handler. A line ending in a bare carriage return is reported
// through OnReplaceLine so that a front-end can redraw a progress line in place; other lines are
// reported through OnAddLine.
//
// Both "\r" and "\n" end a line. A terminator that follows no content emits nothing, so "\r\n",
// "\n\r" and runs of blank lines never produce empty lines. Bytes are only decoded once the line is
// complete, which keeps multi-byte characters intact across chunk boundaries.
//
// Content that is never terminated is never reported: Reset drops it. Callers that want the
// trailing fragment at end of stream call Flush first.
//
// A Reassembler handles one stream and is not safe for concurrent use.
package linereassembler
