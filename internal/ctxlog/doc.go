// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The level comes from an environment variable named after the executable: for "consoletext" it is
// CONSOLETEXT_LOG_LEVEL, accepting DEBUG, INFO, WARN and ERROR (default WARN).
//
// Three output formats are available: a pretty console handler (the default), JSON, and the
// charmbracelet/log handler. Any of them can be wrapped with a logfanout.Hub so that log entries
// can be watched by the TUI or the event server.
package ctxlog
