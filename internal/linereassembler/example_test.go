// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linereassembler_test

import (
	"fmt"

	"github.com/matt-FFFFFF/consoletext/internal/linereassembler"
	"github.com/matt-FFFFFF/consoletext/internal/textenc"
)

func ExampleReassembler() {
	r := linereassembler.New(linereassembler.HandlerFuncs{
		Add:     func(s string) { fmt.Printf("add     %q\n", s) },
		Replace: func(s string) { fmt.Printf("replace %q\n", s) },
	}, linereassembler.WithEncoding(textenc.UTF8))

	chunks := []string{"fetch", "ing 10%\rfetching 9", "0%\rfetching 100%\r", "\ndone\n", "tail"}
	for _, c := range chunks {
		r.Append([]byte(c), 0, len(c))
	}

	r.Reset()

	// Output:
	// replace "fetching 10%"
	// replace "fetching 90%"
	// replace "fetching 100%"
	// add     "done"
}

func ExampleWithReplacePolicy() {
	r := linereassembler.New(linereassembler.HandlerFuncs{
		Add:     func(s string) { fmt.Printf("add     %q\n", s) },
		Replace: func(s string) { fmt.Printf("replace %q\n", s) },
	},
		linereassembler.WithEncoding(textenc.UTF8),
		linereassembler.WithReplacePolicy(linereassembler.ReplacePendingOnly),
	)

	_, _ = r.Write([]byte("10%\r50%\r100%\r\ndone\n"))

	// Output:
	// add     "10%"
	// replace "50%"
	// replace "100%"
	// add     "done"
}
