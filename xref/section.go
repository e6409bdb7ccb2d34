// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/object"
	"github.com/sassoftware/viya-pdf-inspect/parse"
)

const (
	KeywordXRef    = "xref"
	KeywordTrailer = "trailer"

	// entryLen is the width of a section entry including its EOL.
	entryLen = 20
)

// Section is a textual cross-reference section with its trailer.
type Section struct {
	Subsections []Subsection
	trailer     *Trailer
	StartXRef   *StartXRef
	span        parse.Span
}

func (s *Section) Trailer() *Trailer { return s.trailer }
func (s *Section) Span() parse.Span  { return s.span }

func (s *Section) Prev() (uint64, bool) {
	if s.trailer.Prev == nil {
		return 0, false
	}
	return *s.trailer.Prev, true
}

// Table classifies the section's rows. An object number declared twice is
// an error.
func (s *Section) Table(Decoder) (*Table, error) {
	t := NewTable()
	seen := make(map[uint64]bool)
	for _, sub := range s.Subsections {
		for i, e := range sub.Entries {
			num := sub.First + uint64(i)
			if seen[num] {
				return nil, &Error{Code: DuplicateObjectNumber, Object: num, Offset: int64(s.span.Start)}
			}
			seen[num] = true
			if err := t.Insert(num, e); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// ParseSection recognizes "xref", its subsections, "trailer" and the
// trailer dictionary, optionally followed by a startxref footer. Errors
// before the xref keyword and its EOL are Recoverable.
func ParseSection(buf []byte, off int) (*Section, error) {
	start := off
	off = parse.SkipWhitespaceAndComments(buf, off)
	if !parse.Tag(buf, off, KeywordXRef) {
		return nil, parse.NewRecoverable("Section", off, parse.NotFound).WithToken(KeywordXRef)
	}
	off += len(KeywordXRef)
	next := parse.SkipWhitespace(buf, off)
	if !parse.EndsWithEOL(buf, off, next) {
		return nil, parse.NewRecoverable("Section", off, parse.NotFound).WithToken("EOL")
	}
	off = next

	s := &Section{}
	for {
		sub, end, matched, err := parseSubsection(buf, off)
		if err != nil {
			return nil, parse.NewFailure("Section", off, parse.MissingSubobject).WithToken("Subsection").Wrap(err)
		}
		if !matched {
			break
		}
		s.Subsections = append(s.Subsections, sub)
		off = end
	}

	off = parse.SkipWhitespace(buf, off)
	if !parse.Tag(buf, off, KeywordTrailer) {
		return nil, parse.NewFailure("Section", off, parse.MissingClosing).WithToken(KeywordTrailer)
	}
	off = parse.SkipWhitespaceAndComments(buf, off+len(KeywordTrailer))
	d, err := object.ParseDictionary(buf, off)
	if err != nil {
		return nil, parse.NewFailure("Section", off, parse.MissingSubobject).WithToken("Trailer").Wrap(err)
	}
	if s.trailer, err = NewTrailer(d, false); err != nil {
		return nil, parse.NewFailure("Section", off, parse.MissingSubobject).WithToken("Trailer").Wrap(err)
	}
	off = d.Span().End

	s.StartXRef, off = optStartXRef(buf, off)
	s.span = parse.Span{Start: start, End: off}
	return s, nil
}

// optStartXRef parses a footer after whitespace and comments at off. It
// returns the end of the footer, or off when there is none.
func optStartXRef(buf []byte, off int) (*StartXRef, int) {
	sx, matched, _ := parse.Opt(parseStartXRefAt, buf, parse.SkipWhitespaceAndComments(buf, off))
	if !matched {
		return nil, off
	}
	return sx, sx.span.End
}

// parseSubsection recognizes "first count" EOL followed by count entries.
// matched is false when no header is present.
func parseSubsection(buf []byte, off int) (sub Subsection, end int, matched bool, err error) {
	n1 := parse.Digits(buf, off)
	if n1 == 0 || off+n1 >= len(buf) || buf[off+n1] != ' ' {
		return Subsection{}, off, false, nil
	}
	n2 := parse.Digits(buf, off+n1+1)
	if n2 == 0 {
		return Subsection{}, off, false, nil
	}
	first, ok := parse.ParseUint64(buf[off : off+n1])
	if !ok {
		return Subsection{}, off, true, parse.NewFailure("Subsection", off, parse.ObjectNumber)
	}
	countOff := off + n1 + 1
	count, ok := parse.ParseUint64(buf[countOff : countOff+n2])
	if !ok {
		return Subsection{}, off, true, parse.NewFailure("Subsection", countOff, parse.NumericOverflow).WithToken("entry count")
	}
	hdrEnd := countOff + n2
	next := parse.SkipWhitespace(buf, hdrEnd)
	if !parse.EndsWithEOL(buf, hdrEnd, next) {
		return Subsection{}, off, false, nil
	}
	off = next
	if count > uint64(len(buf)-off)/(entryLen-1) {
		return Subsection{}, off, true, parse.NewFailure("Subsection", off, parse.MissingData).WithToken(fmt.Sprintf("%d entries", count))
	}

	sub = Subsection{First: first, Entries: make([]Entry, 0, count)}
	for i := uint64(0); i < count; i++ {
		e, n, err := parseSectionEntry(buf, off)
		if err != nil {
			return Subsection{}, off, true, err
		}
		sub.Entries = append(sub.Entries, e)
		off += n
	}
	return sub, off, true, nil
}

// parseSectionEntry reads "oooooooooo ggggg n" or "... f" and its two-byte
// end: a space or CR followed by CR or LF. A lone LF is accepted too.
func parseSectionEntry(buf []byte, off int) (Entry, int, error) {
	if off+entryLen-1 > len(buf) {
		return Entry{}, 0, parse.NewFailure("Entry", off, parse.MissingData)
	}
	b := buf[off : off+entryLen-2]
	if parse.Digits(b, 0) != 10 || b[10] != ' ' || parse.Digits(b, 11) != 5 || b[16] != ' ' {
		return Entry{}, 0, parse.NewFailure("Entry", off, parse.NotFound).WithToken("entry")
	}
	field, _ := parse.ParseUint64(b[:10])
	gen, ok := parse.ParseUint16(b[11:16])
	if !ok {
		return Entry{}, 0, parse.NewFailure("Entry", off+11, parse.GenerationNumber)
	}
	var e Entry
	switch b[17] {
	case 'n':
		e = InUseEntry(field, gen)
	case 'f':
		e = FreeEntry(field, gen)
	default:
		return Entry{}, 0, parse.NewFailure("Entry", off+17, parse.NotFound).WithToken("n or f")
	}

	n := entryLen - 2
	switch {
	case off+n+1 < len(buf) && (buf[off+n] == ' ' || buf[off+n] == '\r') && parse.IsEOL(buf[off+n+1]):
		n += 2
	case off+n < len(buf) && parse.IsEOL(buf[off+n]):
		n++
	default:
		return Entry{}, 0, parse.NewFailure("Entry", off+n, parse.NotFound).WithToken("EOL")
	}
	return e, n, nil
}
