// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// IndirectObject is "n g obj value endobj".
type IndirectObject struct {
	ID    ID
	Value IndirectValue
	span  parse.Span
}

func NewIndirectObject(id ID, v IndirectValue, span parse.Span) *IndirectObject {
	return &IndirectObject{ID: id, Value: v, span: span}
}

func (o *IndirectObject) Span() parse.Span { return o.span }

func (o *IndirectObject) String() string {
	return fmt.Sprintf("%s %s\n%s\n%s", o.ID, KeywordObj, o.Value, KeywordEndObj)
}

// Stream returns the object's stream, if its value is one.
func (o *IndirectObject) Stream() (*Stream, bool) {
	s, ok := o.Value.(*Stream)
	return s, ok
}

// ParseIndirectValue tries Stream, then a direct value.
func ParseIndirectValue(buf []byte, off int, lookup Lookup) (IndirectValue, error) {
	return parse.Alt("IndirectValue", buf, off,
		func(buf []byte, off int) (IndirectValue, error) {
			s, err := ParseStream(buf, off, lookup)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		func(buf []byte, off int) (IndirectValue, error) {
			v, err := ParseDirectValue(buf, off)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	)
}

// ParseIndirectObject recognizes an indirect object at off, skipping
// leading whitespace and comments. Until the obj keyword is matched errors
// are Recoverable; afterwards they are Failures.
func ParseIndirectObject(buf []byte, off int, lookup Lookup) (*IndirectObject, error) {
	start := off
	off = parse.SkipWhitespaceAndComments(buf, off)
	id, idSpan, err := ParseID(buf, off)
	if err != nil {
		return nil, parse.NewRecoverable("IndirectObject", off, parse.NotFound).WithToken("ID").Wrap(err)
	}
	off = idSpan.End
	if err := expect("IndirectObject", buf, off, KeywordObj); err != nil {
		return nil, err
	}
	off = parse.SkipWhitespaceAndComments(buf, off+len(KeywordObj))

	v, err := ParseIndirectValue(buf, off, lookup)
	if err != nil {
		return nil, parse.NewFailure("IndirectObject", off, parse.MissingSubobject).WithToken("IndirectValue").Wrap(err)
	}
	off = parse.SkipWhitespaceAndComments(buf, v.Span().End)
	if !parse.Tag(buf, off, KeywordEndObj) {
		return nil, parse.NewFailure("IndirectObject", off, parse.MissingClosing).WithToken(KeywordEndObj)
	}
	off += len(KeywordEndObj)
	return &IndirectObject{ID: id, Value: v, span: parse.Span{Start: start, End: off}}, nil
}
