// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package textenc

import (
	"golang.org/x/sys/windows"
	"golang.org/x/text/encoding"
)

// Platform returns the encoding of the active ANSI code page, falling back to UTF-8
// when the code page has no decoder.
func Platform() encoding.Encoding {
	if enc, ok := CodePage(windows.GetACP()); ok {
		return enc
	}

	return UTF8
}
