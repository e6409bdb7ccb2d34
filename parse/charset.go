// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package parse

import "bytes"

var (
	wsBits    [4]uint64 // 256 bits = 4 * 64
	delimBits [4]uint64
)

func init() {
	for _, b := range []byte{0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20} {
		wsBits[b>>6] |= 1 << (b & 63)
	}
	for _, b := range []byte("()<>[]{}/%") {
		delimBits[b>>6] |= 1 << (b & 63)
	}
}

// IsWhitespace reports whether b is one of the six whitespace characters
// of ISO 32000-1 §7.2.2: 00, 09, 0A, 0C, 0D, 20.
func IsWhitespace(b byte) bool {
	return (wsBits[b>>6] & (1 << (b & 63))) != 0
}

// IsDelimiter reports whether b is one of ( ) < > [ ] { } / %.
func IsDelimiter(b byte) bool {
	return (delimBits[b>>6] & (1 << (b & 63))) != 0
}

// IsRegular reports whether b is neither whitespace nor a delimiter.
func IsRegular(b byte) bool {
	return !IsWhitespace(b) && !IsDelimiter(b)
}

func IsEOL(b byte) bool {
	return b == '\n' || b == '\r'
}

func IsDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func IsOctal(b byte) bool {
	return '0' <= b && b <= '7'
}

func IsHex(b byte) bool {
	_, ok := HexValue(b)
	return ok
}

// HexValue returns the value of the hexadecimal digit b.
func HexValue(b byte) (byte, bool) {
	switch {
	case '0' <= b && b <= '9':
		return b - '0', true
	case 'a' <= b && b <= 'f':
		return b - 'a' + 10, true
	case 'A' <= b && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// SkipWhitespace advances off past all whitespace.
func SkipWhitespace(buf []byte, off int) int {
	for off < len(buf) && IsWhitespace(buf[off]) {
		off++
	}
	return off
}

// SkipComment advances past a comment starting at off, stopping before the
// terminating EOL. It returns off unchanged if buf[off] is not '%'.
func SkipComment(buf []byte, off int) int {
	if off >= len(buf) || buf[off] != '%' {
		return off
	}
	off++
	for off < len(buf) && !IsEOL(buf[off]) {
		off++
	}
	return off
}

// SkipWhitespaceAndComments advances off past any mix of whitespace and
// comments.
func SkipWhitespaceAndComments(buf []byte, off int) int {
	for {
		next := SkipComment(buf, SkipWhitespace(buf, off))
		if next == off {
			return off
		}
		off = next
	}
}

// EOL returns the length of the end-of-line marker at off: 2 for CRLF, 1 for
// a lone CR or LF, 0 otherwise.
func EOL(buf []byte, off int) int {
	if off >= len(buf) {
		return 0
	}
	switch buf[off] {
	case '\r':
		if off+1 < len(buf) && buf[off+1] == '\n' {
			return 2
		}
		return 1
	case '\n':
		return 1
	}
	return 0
}

// EndsWithEOL checks if the last skipped char is CR or LF.
func EndsWithEOL(buf []byte, start, end int) bool {
	if end > start {
		return IsEOL(buf[end-1])
	}
	return false
}

// Tag reports whether buf[off:] starts with kw.
func Tag(buf []byte, off int, kw string) bool {
	return off <= len(buf) && bytes.HasPrefix(buf[off:], []byte(kw))
}

// Digits returns the number of consecutive decimal digits at off.
func Digits(buf []byte, off int) int {
	n := 0
	for off+n < len(buf) && IsDigit(buf[off+n]) {
		n++
	}
	return n
}
