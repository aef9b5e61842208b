// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner runs an operating system command and turns its output into line events.
//
// Each of stdout and stderr is read through its own line reassembler while the process runs, so
// progress output that rewrites a line with a carriage return is reported as replaced lines. The
// first termination signal is forwarded to the child; a second signal of the same type, or
// cancellation of the context, kills it.
package runner
