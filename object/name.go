// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"bytes"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// Name is a name object. Raw holds the bytes after the solidus with #xx
// escapes left in place.
type Name struct {
	direct
	raw  []byte
	span parse.Span
}

func NewName(raw []byte, span parse.Span) Name {
	return Name{raw: raw, span: span}
}

func (n Name) Raw() []byte      { return n.raw }
func (n Name) Span() parse.Span { return n.span }
func (n Name) String() string   { return "/" + string(n.raw) }

// Escape resolves #xx hexadecimal escapes.
func (n Name) Escape() ([]byte, error) {
	if bytes.IndexByte(n.raw, '#') < 0 {
		return n.raw, nil
	}
	out := make([]byte, 0, len(n.raw))
	for i := 0; i < len(n.raw); i++ {
		c := n.raw[i]
		if c != '#' {
			out = append(out, c)
			continue
		}
		if i+1 >= len(n.raw) {
			return nil, &EscapeError{Object: "Name", Code: TrailingNumberSign, Input: n.raw}
		}
		hi, ok := parse.HexValue(n.raw[i+1])
		if !ok {
			return nil, &EscapeError{Object: "Name", Code: InvalidHexDigit, Input: n.raw, Byte: n.raw[i+1]}
		}
		if i+2 >= len(n.raw) {
			return nil, &EscapeError{Object: "Name", Code: TrailingHexDigit, Input: n.raw, Byte: n.raw[i+1]}
		}
		lo, ok := parse.HexValue(n.raw[i+2])
		if !ok {
			return nil, &EscapeError{Object: "Name", Code: IncompleteHexCode, Input: n.raw, Byte: n.raw[i+2]}
		}
		out = append(out, hi<<4|lo)
		i += 2
	}
	return out, nil
}

// Key returns the escaped name as a string, or the raw bytes if the name
// cannot be escaped.
func (n Name) Key() string {
	if b, err := n.Escape(); err == nil {
		return string(b)
	}
	return string(n.raw)
}

// Equal compares escaped forms, falling back to the raw bytes when either
// name fails to escape.
func (n Name) Equal(other Name) bool {
	a, errA := n.Escape()
	b, errB := other.Escape()
	if errA != nil || errB != nil {
		return bytes.Equal(n.raw, other.raw)
	}
	return bytes.Equal(a, b)
}

// ParseName recognizes a solidus followed by regular characters.
func ParseName(buf []byte, off int) (Name, error) {
	if off >= len(buf) || buf[off] != '/' {
		return Name{}, parse.NewRecoverable("Name", off, parse.NotFound).WithToken("/")
	}
	end := off + 1
	for end < len(buf) && parse.IsRegular(buf[end]) {
		end++
	}
	return Name{raw: buf[off+1 : end], span: parse.Span{Start: off, End: end}}, nil
}
