// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package textenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatform_LocalePrecedence(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_CTYPE", "ja_JP.eucJP")
	t.Setenv("LANG", "en_US.UTF-8")

	assert.Equal(t, "日", Decode(Platform(), []byte{0xc6, 0xfc}))

	t.Setenv("LC_ALL", "ja_JP.SJIS")
	assert.Equal(t, "日", Decode(Platform(), []byte{0x93, 0xfa}))
}

func TestPlatform_NoLocale(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_CTYPE", "")
	t.Setenv("LANG", "")

	assert.Equal(t, UTF8, Platform())
}
