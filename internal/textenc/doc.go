// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package textenc resolves the text encoding used to turn raw console bytes into strings.
//
// Child processes write in whatever encoding their host expects. On Windows that is usually the
// active ANSI code page (CP932 on a Japanese system, Windows-1252 on a western one), elsewhere it is
// the charset named in the locale environment variables. Resolve accepts WHATWG labels, IANA names and
// Windows code page names, and Platform returns the best guess for the current host.
//
// Decoding is always lossy: invalid byte sequences are replaced, never reported as errors.
package textenc
