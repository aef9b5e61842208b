// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package console holds the front-ends that decide how added and replaced lines are shown.
//
// Screen keeps a bounded history for the TUI and the event server. Printer renders straight to a
// terminal, using a carriage return and erase-line to overwrite replaced lines.
//
// What a replace overwrites depends on the reassembler's policy. With linereassembler.ReplaceOnCR a
// replaced line is transient and the next replaced line from the same source and stream overwrites
// it. With linereassembler.ReplacePendingOnly a replace overwrites whatever line the source and
// stream showed last. Lines of another stream are never overwritten.
package console
