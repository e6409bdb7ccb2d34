// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package object implements the grammar of PDF objects (ISO 32000-1 §7.3).
//
// Every parser has the shape
//
//	func(buf []byte, off int) (T, error)
//
// and recognizes a prefix of buf[off:]. Values never copy the input: byte
// payloads are sub-slices of buf and every value records the Span it was
// parsed from. Errors are *parse.Error values whose Kind tells alternation
// whether a sibling grammar rule may still be tried.
package object

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// Keywords of the object grammar.
const (
	KeywordTrue      = "true"
	KeywordFalse     = "false"
	KeywordNull      = "null"
	KeywordR         = "R"
	KeywordObj       = "obj"
	KeywordEndObj    = "endobj"
	KeywordStream    = "stream"
	KeywordEndStream = "endstream"
)

// Value is a direct object: one of Boolean, Null, Integer, Real, Name,
// Literal, Hexadecimal, *Array, *Dictionary or Reference.
type Value interface {
	Span() parse.Span
	String() string
	directValue()
	indirectValue()
}

// IndirectValue is the body of an indirect object: any Value, or a *Stream.
type IndirectValue interface {
	Span() parse.Span
	String() string
	indirectValue()
}

// String is a Literal or a Hexadecimal string.
type String interface {
	Value
	// Escape returns the bytes the string denotes.
	Escape() ([]byte, error)
}

// Numeric is an Integer or a Real.
type Numeric interface {
	Value
	Float64() float64
}

// direct marks the types that are both Values and IndirectValues.
type direct struct{}

func (direct) directValue()   {}
func (direct) indirectValue() {}

// ID identifies an indirect object.
type ID struct {
	Number     uint64
	Generation uint16
}

func (id ID) String() string {
	return fmt.Sprintf("%d %d", id.Number, id.Generation)
}

// Less orders ids by object number, then generation.
func (id ID) Less(other ID) bool {
	if id.Number != other.Number {
		return id.Number < other.Number
	}
	return id.Generation < other.Generation
}

// Walk calls fn for v and for every value nested in it. A stream's
// dictionary is walked; its data is not.
func Walk(v IndirectValue, fn func(Value)) {
	switch x := v.(type) {
	case *Stream:
		if x.Dictionary != nil {
			Walk(x.Dictionary, fn)
		}
	case *Array:
		fn(x)
		for _, e := range x.Elements {
			Walk(e, fn)
		}
	case *Dictionary:
		fn(x)
		for _, k := range x.keys {
			Walk(x.entries[k], fn)
		}
	case Value:
		fn(x)
	}
}

// value adapts a concrete parser to a Value parser for alternation.
func value[T Value](p func([]byte, int) (T, error)) parse.Parser[Value] {
	return func(buf []byte, off int) (Value, error) {
		v, err := p(buf, off)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// expect returns a Recoverable NotFound error when buf[off:] does not start
// with kw.
func expect(object string, buf []byte, off int, kw string) error {
	if !parse.Tag(buf, off, kw) {
		return parse.NewRecoverable(object, off, parse.NotFound).WithToken(kw)
	}
	return nil
}
