// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package textenc converts PDF text strings (ISO 32000-1 §7.9.2.2) to
// normalized UTF-8.
package textenc

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/object"
)

var (
	bomUTF16BE = []byte{0xfe, 0xff}
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
)

// Decode interprets b as UTF-16BE when it starts with a byte order mark,
// as UTF-8 when it starts with the UTF-8 mark, and as PDFDocEncoding
// otherwise. The result is in Unicode normalization form C.
func Decode(b []byte) string {
	switch {
	case bytes.HasPrefix(b, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(transform.Chain(dec, norm.NFC), b)
		if err != nil {
			logger.Debug("textenc: invalid UTF-16BE text: " + err.Error())
			return norm.NFC.String(pdfDocDecode(b))
		}
		return stripLanguageEscapes(string(out))
	case bytes.HasPrefix(b, bomUTF8):
		s := string(b[len(bomUTF8):])
		if !utf8.ValidString(s) {
			s = strings.ToValidUTF8(s, "\uFFFD")
		}
		return stripLanguageEscapes(norm.NFC.String(s))
	}
	return norm.NFC.String(pdfDocDecode(b))
}

// DecodeString unescapes s and decodes the resulting bytes.
func DecodeString(s object.String) (string, error) {
	b, err := s.Escape()
	if err != nil {
		return "", err
	}
	return Decode(b), nil
}

// stripLanguageEscapes removes the ESC-delimited language and country
// codes Unicode text strings may carry.
func stripLanguageEscapes(s string) string {
	if !strings.ContainsRune(s, 0x1b) {
		return s
	}
	var b strings.Builder
	in := false
	for _, r := range s {
		if r == 0x1b {
			in = !in
			continue
		}
		if !in {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func pdfDocDecode(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= 0x80 || pdfDocEncoding[c] != rune(c) {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	var s strings.Builder
	s.Grow(len(b))
	for _, c := range b {
		s.WriteRune(pdfDocEncoding[c])
	}
	return s.String()
}
