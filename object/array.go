// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"strings"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// Array is an ordered sequence of direct values.
type Array struct {
	direct
	Elements []Value
	span     parse.Span
}

func NewArray(span parse.Span, elements ...Value) *Array {
	return &Array{Elements: elements, span: span}
}

func (a *Array) Span() parse.Span { return a.span }
func (a *Array) Len() int         { return len(a.Elements) }

func (a *Array) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ParseArray recognizes '[', direct values separated by optional whitespace
// and comments, and ']'. After '[' every error is a Failure.
func ParseArray(buf []byte, off int) (*Array, error) {
	start := off
	if off >= len(buf) || buf[off] != '[' {
		return nil, parse.NewRecoverable("Array", off, parse.NotFound).WithToken("[")
	}
	off = parse.SkipWhitespaceAndComments(buf, off+1)
	var elements []Value
	for {
		if off < len(buf) && buf[off] == ']' {
			off++
			break
		}
		if off >= len(buf) {
			return nil, parse.NewFailure("Array", off, parse.MissingClosing).WithToken("]")
		}
		v, err := ParseDirectValue(buf, off)
		if err != nil {
			return nil, parse.NewFailure("Array", off, parse.MissingSubobject).WithToken("DirectValue").Wrap(err)
		}
		elements = append(elements, v)
		off = parse.SkipWhitespaceAndComments(buf, v.Span().End)
	}
	return &Array{Elements: elements, span: parse.Span{Start: start, End: off}}, nil
}
