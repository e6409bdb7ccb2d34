// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"errors"
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// Stream dictionary keys.
const (
	KeyLength       = "Length"
	KeyF            = "F"
	KeyFilter       = "Filter"
	KeyDecodeParms  = "DecodeParms"
	KeyFFilter      = "FFilter"
	KeyFDecodeParms = "FDecodeParms"
	KeyDL           = "DL"
	KeyType         = "Type"
)

// Stream is a dictionary followed by raw, still encoded, data.
type Stream struct {
	Dictionary *Dictionary
	Data       []byte
	span       parse.Span
}

func NewStream(d *Dictionary, data []byte, span parse.Span) *Stream {
	return &Stream{Dictionary: d, Data: data, span: span}
}

func (s *Stream) Span() parse.Span { return s.span }
func (*Stream) indirectValue()     {}

func (s *Stream) String() string {
	return fmt.Sprintf("%s stream(%d bytes)", s.Dictionary, len(s.Data))
}

// ParseStream recognizes a dictionary, the stream keyword, one end-of-line
// marker, Length bytes of data, and endstream. Length may be a reference
// into lookup. A missing stream keyword is Recoverable; any later error is
// a Failure.
func ParseStream(buf []byte, off int, lookup Lookup) (*Stream, error) {
	start := off
	d, err := ParseDictionary(buf, off)
	if err != nil {
		return nil, err
	}
	off = parse.SkipWhitespaceAndComments(buf, d.Span().End)
	if err := expect("Stream", buf, off, KeywordStream); err != nil {
		return nil, err
	}
	off += len(KeywordStream)
	if off < len(buf) && buf[off] == '\r' {
		off++
	}
	if off >= len(buf) || buf[off] != '\n' {
		return nil, parse.NewRecoverable("Stream", off, parse.NotFound).WithToken("EOL")
	}
	off++

	length, err := streamLength(d, lookup)
	if err != nil {
		return nil, parse.NewFailure("Stream", start, lengthCode(err)).WithKey(KeyLength).Wrap(err)
	}
	if length > uint64(len(buf)-off) {
		return nil, parse.NewFailure("Stream", off, parse.MissingData).WithToken(fmt.Sprintf("%d bytes", length))
	}
	data := buf[off : off+int(length)]
	off += int(length)
	off += parse.EOL(buf, off)
	if !parse.Tag(buf, off, KeywordEndStream) {
		return nil, parse.NewFailure("Stream", off, parse.MissingClosing).WithToken(KeywordEndStream)
	}
	off += len(KeywordEndStream)
	return &Stream{Dictionary: d, Data: data, span: parse.Span{Start: start, End: off}}, nil
}

func lengthCode(err error) parse.Code {
	var entry *EntryError
	switch {
	case errors.As(err, &entry) && entry.Code == MissingEntry:
		return parse.MissingKey
	case errors.As(err, &entry):
		return parse.WrongObjectType
	default:
		return parse.Unresolved
	}
}

func streamLength(d *Dictionary, lookup Lookup) (uint64, error) {
	v, err := d.Required(KeyLength)
	if err != nil {
		return 0, err
	}
	resolved, err := Resolve(v, lookup)
	if err != nil {
		return 0, err
	}
	return asUint64(KeyLength, resolved)
}
