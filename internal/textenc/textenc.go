// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package textenc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// NamePlatform selects the host default encoding.
	NamePlatform = "platform"
	// NameDefault is an alias of NamePlatform.
	NameDefault = "default"
	// NameUTF8 is the canonical name of UTF-8.
	NameUTF8 = "utf-8"
)

var (
	// ErrUnknownEncoding is returned when an encoding name cannot be resolved.
	ErrUnknownEncoding = errors.New("unknown text encoding")
	// ErrUnsupportedEncoding is returned when a name is registered but has no decoder available.
	ErrUnsupportedEncoding = errors.New("unsupported text encoding")
)

// UTF8 is the UTF-8 encoding. Its decoder substitutes U+FFFD for invalid sequences.
var UTF8 encoding.Encoding = unicode.UTF8

// codePages maps Windows code page identifiers to encodings.
var codePages = map[uint32]encoding.Encoding{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	855:   charmap.CodePage855,
	858:   charmap.CodePage858,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	932:   japanese.ShiftJIS,
	936:   simplifiedchinese.GBK,
	949:   korean.EUCKR,
	950:   traditionalchinese.Big5,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	20932: japanese.EUCJP,
	28591: charmap.ISO8859_1,
	54936: simplifiedchinese.GB18030,
	65001: unicode.UTF8,
}

// aliases covers spellings used by POSIX locales that neither index knows.
var aliases = map[string]string{
	"eucjp":    "euc-jp",
	"euckr":    "euc-kr",
	"shiftjis": "shift_jis",
	"ujis":     "euc-jp",
}

// CodePage returns the encoding for a Windows code page identifier.
func CodePage(cp uint32) (encoding.Encoding, bool) {
	enc, ok := codePages[cp]
	return enc, ok
}

// Resolve returns the encoding registered under name.
// An empty name, "platform" and "default" all resolve to Platform().
func Resolve(name string) (encoding.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))

	switch n {
	case "", NamePlatform, NameDefault:
		return Platform(), nil
	case NameUTF8, "utf8":
		return UTF8, nil
	}

	if alias, ok := aliases[n]; ok {
		n = alias
	}

	if cp, ok := parseCodePage(n); ok {
		if enc, ok := CodePage(cp); ok {
			return enc, nil
		}

		return nil, fmt.Errorf("%w: code page %d", ErrUnsupportedEncoding, cp)
	}

	if enc, err := htmlindex.Get(n); err == nil {
		return enc, nil
	}

	enc, err := ianaindex.IANA.Encoding(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}

	if enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}

	return enc, nil
}

// Name returns a printable name for enc.
func Name(enc encoding.Encoding) string {
	if enc == nil {
		return ""
	}

	if name, err := htmlindex.Name(enc); err == nil {
		return name
	}

	if name, err := ianaindex.IANA.Name(enc); err == nil {
		return name
	}

	if s, ok := enc.(fmt.Stringer); ok {
		return s.String()
	}

	return "unknown"
}

// Decode converts b to a string using enc.
// Invalid input is replaced rather than reported: if the decoder fails the
// bytes are interpreted as UTF-8 with invalid sequences replaced by U+FFFD.
func Decode(enc encoding.Encoding, b []byte) string {
	if len(b) == 0 {
		return ""
	}

	if enc == nil || enc == UTF8 {
		if utf8.Valid(b) {
			return string(b)
		}

		enc = UTF8
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}

	return string(out)
}

// CompleteLen returns the length of the longest prefix of b that does not end inside a
// multi-byte character. Invalid bytes count as complete characters.
func CompleteLen(enc encoding.Encoding, b []byte) int {
	if len(b) == 0 {
		return 0
	}

	if enc == nil || enc == UTF8 {
		return utf8CompleteLen(b)
	}

	// Single byte encodings produce at most utf8.UTFMax bytes per input byte.
	dst := make([]byte, len(b)*utf8.UTFMax)

	_, n, err := enc.NewDecoder().Transform(dst, b, false)
	if err != nil && !errors.Is(err, transform.ErrShortSrc) {
		return len(b)
	}

	return n
}

func utf8CompleteLen(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}

		if utf8.FullRune(b[i:]) {
			return len(b)
		}

		return i
	}

	return len(b)
}

// parseCodePage accepts "932", "cp932", "cp-932" and "ms932" style names.
// Names such as "windows-1252" are left to the WHATWG index which knows them already.
func parseCodePage(n string) (uint32, bool) {
	s := n
	for _, p := range []string{"cp-", "cp", "ms"} {
		if strings.HasPrefix(s, p) {
			s = strings.TrimPrefix(s, p)
			break
		}
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}

	return uint32(v), true
}

// fromLocale extracts the charset from a POSIX locale such as "ja_JP.eucJP@euro".
// Locales without a charset, and charsets that cannot be resolved, yield UTF-8.
func fromLocale(locale string) encoding.Encoding {
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}

	i := strings.IndexByte(locale, '.')
	if i < 0 {
		return UTF8
	}

	charset := strings.ToLower(locale[i+1:])
	switch charset {
	case "", NamePlatform, NameDefault:
		return UTF8
	}

	enc, err := Resolve(charset)
	if err != nil {
		return UTF8
	}

	return enc
}
