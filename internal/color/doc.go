// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape codes for terminal output.
// Colour is decided per writer: NO_COLOR disables it, FORCE_COLOR enables it, and otherwise it is
// enabled only when the writer is a terminal (golang.org/x/term).
// The package also holds the line control sequences used to redraw a console line in place.
package color
