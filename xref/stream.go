// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import (
	"errors"
	"fmt"
	"math"

	"github.com/sassoftware/viya-pdf-inspect/object"
	"github.com/sassoftware/viya-pdf-inspect/parse"
)

var errNoDecoder = errors.New("no decoder")

// XRefStream is a cross-reference stream: an indirect object whose stream
// dictionary is the trailer and whose decoded data are binary rows.
type XRefStream struct {
	ID        object.ID
	Stream    *object.Stream
	StartXRef *StartXRef
	trailer   *Trailer
	span      parse.Span
}

func (x *XRefStream) Trailer() *Trailer { return x.trailer }
func (x *XRefStream) Span() parse.Span  { return x.span }

func (x *XRefStream) Prev() (uint64, bool) {
	if x.trailer.Prev == nil {
		return 0, false
	}
	return *x.trailer.Prev, true
}

// ParseXRefStream recognizes an indirect stream object of type XRef at off,
// optionally followed by a startxref footer. The stream Length must be
// direct.
func ParseXRefStream(buf []byte, off int) (*XRefStream, error) {
	obj, err := object.ParseIndirectObject(buf, off, nil)
	if err != nil {
		return nil, err
	}
	s, ok := obj.Stream()
	if !ok {
		return nil, parse.NewFailure("XRefStream", obj.Value.Span().Start, parse.WrongObjectType).WithToken("Stream")
	}
	typ, err := s.Dictionary.RequiredName(KeyType)
	if err != nil {
		return nil, parse.NewFailure("XRefStream", s.Span().Start, parse.MissingKey).WithKey(KeyType).Wrap(err)
	}
	if typ.Key() != TypeXRef {
		return nil, parse.NewFailure("XRefStream", typ.Span().Start, parse.WrongObjectType).WithKey(KeyType).WithToken(TypeXRef)
	}
	t, err := NewTrailer(s.Dictionary, true)
	if err != nil {
		return nil, parse.NewFailure("XRefStream", s.Span().Start, parse.MissingSubobject).WithToken("Trailer").Wrap(err)
	}
	x := &XRefStream{ID: obj.ID, Stream: s, trailer: t}
	var end int
	x.StartXRef, end = optStartXRef(buf, obj.Span().End)
	x.span = parse.Span{Start: off, End: end}
	return x, nil
}

// Table decodes the stream and classifies its rows against the Index
// ranges, which default to [0 Size].
func (x *XRefStream) Table(dec Decoder) (*Table, error) {
	t := x.trailer
	if len(t.W) != 3 {
		return nil, &Error{Code: InvalidTrailer, Object: x.ID.Number, Err: &object.EntryError{Key: KeyW, Code: object.MissingEntry}}
	}
	if dec == nil {
		return nil, &Error{Code: Decode, Object: x.ID.Number, Err: errNoDecoder}
	}
	data, err := dec.Decode(x.Stream.Dictionary, x.Stream.Data)
	if err != nil {
		return nil, &Error{Code: Decode, Object: x.ID.Number, Err: err}
	}
	rowLen := t.W[0] + t.W[1] + t.W[2]
	if rowLen == 0 || len(data)%rowLen != 0 {
		return nil, &Error{
			Code:   EntriesLength,
			Object: x.ID.Number,
			Detail: fmt.Sprintf("W %v, %d bytes", t.W, len(data)),
		}
	}
	rows := len(data) / rowLen

	ranges := t.Index
	if len(ranges) == 0 {
		ranges = []IndexRange{{First: 0, Count: t.Size}}
	}

	table := NewTable()
	seen := make(map[uint64]bool)
	row := 0
	for _, r := range ranges {
		for i := uint64(0); i < r.Count; i++ {
			if row >= rows {
				return nil, &Error{
					Code:   EntriesTooShort,
					Object: x.ID.Number,
					Detail: fmt.Sprintf("range %d %d is missing entry %d", r.First, r.Count, i),
				}
			}
			num := r.First + i
			if seen[num] {
				return nil, &Error{Code: DuplicateObjectNumber, Object: num}
			}
			seen[num] = true
			e, err := streamEntry(data[row*rowLen:(row+1)*rowLen], t.W)
			if err != nil {
				return nil, err
			}
			if err := table.Insert(num, e); err != nil {
				return nil, err
			}
			row++
		}
	}
	return table, nil
}

// streamEntry interprets one row. A zero-width type field means in use.
func streamEntry(row []byte, w []int) (Entry, error) {
	var f [3]uint64
	pos := 0
	for i, width := range w {
		v, ok := bigEndian(row[pos : pos+width])
		if !ok {
			return Entry{}, &Error{Code: FieldOverflow, Detail: fmt.Sprintf("field %d % x", i+1, row[pos:pos+width])}
		}
		f[i] = v
		pos += width
	}
	if w[0] == 0 {
		f[0] = 1
	}
	switch f[0] {
	case 0, 1:
		if f[2] > math.MaxUint16 {
			return Entry{}, &Error{Code: InvalidEntry, Detail: fmt.Sprintf("generation %d", f[2])}
		}
		if f[0] == 0 {
			return FreeEntry(f[1], uint16(f[2])), nil
		}
		return InUseEntry(f[1], uint16(f[2])), nil
	case 2:
		if f[1] == 0 {
			return Entry{}, &Error{Code: InvalidEntry, Detail: "object stream number 0"}
		}
		return CompressedEntry(f[1], f[2]), nil
	}
	return NullReferenceEntry(f[0], f[1], f[2]), nil
}

// bigEndian decodes b, failing if the value does not fit in 64 bits.
func bigEndian(b []byte) (uint64, bool) {
	var v uint64
	for _, c := range b {
		if v>>56 != 0 {
			return 0, false
		}
		v = v<<8 | uint64(c)
	}
	return v, true
}
