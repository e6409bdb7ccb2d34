// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import "github.com/sassoftware/viya-pdf-inspect/parse"

// Boolean is the true or false keyword.
type Boolean struct {
	direct
	value bool
	span  parse.Span
}

func NewBoolean(v bool, span parse.Span) Boolean {
	return Boolean{value: v, span: span}
}

func (b Boolean) Bool() bool       { return b.value }
func (b Boolean) Span() parse.Span { return b.span }

func (b Boolean) String() string {
	if b.value {
		return KeywordTrue
	}
	return KeywordFalse
}

// ParseBoolean recognizes true or false.
func ParseBoolean(buf []byte, off int) (Boolean, error) {
	switch {
	case parse.Tag(buf, off, KeywordTrue):
		return Boolean{value: true, span: parse.NewSpan(off, len(KeywordTrue))}, nil
	case parse.Tag(buf, off, KeywordFalse):
		return Boolean{value: false, span: parse.NewSpan(off, len(KeywordFalse))}, nil
	}
	return Boolean{}, parse.NewRecoverable("Boolean", off, parse.NotFound).WithToken("true or false")
}

// Null is the null keyword.
type Null struct {
	direct
	span parse.Span
}

func NewNull(span parse.Span) Null {
	return Null{span: span}
}

func (n Null) Span() parse.Span { return n.span }
func (n Null) String() string   { return KeywordNull }

// ParseNull recognizes null.
func ParseNull(buf []byte, off int) (Null, error) {
	if err := expect("Null", buf, off, KeywordNull); err != nil {
		return Null{}, err
	}
	return Null{span: parse.NewSpan(off, len(KeywordNull))}, nil
}
