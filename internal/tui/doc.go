// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui shows the output of a running command in a full screen terminal interface.
//
// The console history is drawn in a scrollable viewport that follows new output until the user
// scrolls away. The footer carries the latest lifecycle message and log entry. Pressing q or
// ctrl+c while the command runs forwards an interrupt to it, pressing it again kills it.
package tui
