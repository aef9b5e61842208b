// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries events between byte sources, the line reassembler and the front-ends.
//
// A runner reports started, line and completion events to a Reporter. Front-ends such as the
// console printer, the TUI and the event server consume them as Listeners or Reporters.
package progress
