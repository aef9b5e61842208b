// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package textenc

import (
	"os"

	"golang.org/x/text/encoding"
)

// localeVars are consulted in order of precedence.
var localeVars = []string{"LC_ALL", "LC_CTYPE", "LANG"}

// Platform returns the encoding named by the locale environment, falling back to UTF-8.
func Platform() encoding.Encoding {
	for _, v := range localeVars {
		locale := os.Getenv(v)
		if locale == "" {
			continue
		}

		return fromLocale(locale)
	}

	return UTF8
}
