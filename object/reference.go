// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import "github.com/sassoftware/viya-pdf-inspect/parse"

// ParseID recognizes an object number and a generation number, each
// followed by whitespace or a comment. The object number must be positive
// and the generation must fit in 16 bits. Every error is Recoverable.
func ParseID(buf []byte, off int) (ID, parse.Span, error) {
	start := off
	num, off, ok := idField(buf, off)
	if !ok {
		return ID{}, parse.Span{}, parse.NewRecoverable("ID", start, parse.NotFound).WithToken("object number")
	}
	genStart := off
	gen, off, ok := idField(buf, off)
	if !ok {
		return ID{}, parse.Span{}, parse.NewRecoverable("ID", genStart, parse.NotFound).WithToken("generation number")
	}
	number, ok := parse.ParseUint64(num)
	if !ok || number == 0 {
		return ID{}, parse.Span{}, parse.NewRecoverable("ID", start, parse.ObjectNumber)
	}
	generation, ok := parse.ParseUint16(gen)
	if !ok {
		return ID{}, parse.Span{}, parse.NewRecoverable("ID", genStart, parse.GenerationNumber)
	}
	return ID{Number: number, Generation: generation}, parse.Span{Start: start, End: off}, nil
}

// idField returns the digits at off and the offset after the whitespace or
// comments that must follow them.
func idField(buf []byte, off int) ([]byte, int, bool) {
	n := parse.Digits(buf, off)
	if n == 0 {
		return nil, off, false
	}
	digits := buf[off : off+n]
	next := parse.SkipWhitespaceAndComments(buf, off+n)
	if next == off+n {
		return nil, off, false
	}
	return digits, next, true
}

// Reference is an indirect reference "n g R".
type Reference struct {
	direct
	ID   ID
	span parse.Span
}

func NewReference(id ID, span parse.Span) Reference {
	return Reference{ID: id, span: span}
}

func (r Reference) Span() parse.Span { return r.span }
func (r Reference) String() string   { return r.ID.String() + " " + KeywordR }

// ParseReference recognizes "n g R". Without the R keyword nothing is
// consumed and the error is Recoverable, so the integers can be parsed
// on their own.
func ParseReference(buf []byte, off int) (Reference, error) {
	id, span, err := ParseID(buf, off)
	if err != nil {
		return Reference{}, parse.NewRecoverable("Reference", off, parse.NotFound).WithToken("ID").Wrap(err)
	}
	if err := expect("Reference", buf, span.End, KeywordR); err != nil {
		return Reference{}, err
	}
	return Reference{ID: id, span: parse.Span{Start: off, End: span.End + len(KeywordR)}}, nil
}
