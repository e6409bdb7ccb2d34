// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import (
	"bytes"
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

const (
	KeywordStartXRef = "startxref"
	MarkerEOF        = "%%EOF"

	// startXRefMaxSize bounds "startxref EOL offset EOL %%EOF" once trailing
	// whitespace is removed.
	startXRefMaxSize = 30
	// startXRefMinSize is the length of "startxref\n0\n%%EOF".
	startXRefMinSize = 17
)

// StartXRef is the file footer pointing at the newest increment.
type StartXRef struct {
	Offset uint64
	span   parse.Span
}

func (s *StartXRef) Span() parse.Span { return s.span }

func (s *StartXRef) String() string {
	return fmt.Sprintf("%s\n%d\n%s", KeywordStartXRef, s.Offset, MarkerEOF)
}

// ParseStartXRef finds the footer at the end of buf. Only trailing
// whitespace may follow %%EOF. Every error is a Failure.
func ParseStartXRef(buf []byte) (*StartXRef, error) {
	end := len(buf)
	for end > 0 && parse.IsWhitespace(buf[end-1]) {
		end--
	}
	if end < startXRefMinSize {
		return nil, parse.NewFailure("StartXRef", 0, parse.TooSmallBuffer)
	}
	start := max(0, end-startXRefMaxSize)
	i := bytes.LastIndex(buf[start:end], []byte(KeywordStartXRef))
	if i < 0 {
		return nil, parse.NewFailure("StartXRef", start, parse.NotFound).WithToken(KeywordStartXRef)
	}
	s, err := parseStartXRefAt(buf[:end], start+i)
	if err != nil {
		return nil, err.(*parse.Error).Commit()
	}
	if s.span.End != end {
		return nil, parse.NewFailure("StartXRef", s.span.End, parse.MissingClosing).WithToken("end of file")
	}
	return s, nil
}

// parseStartXRefAt recognizes a footer at off, as may follow a trailer.
// Every error is Recoverable.
func parseStartXRefAt(buf []byte, off int) (*StartXRef, error) {
	start := off
	if !parse.Tag(buf, off, KeywordStartXRef) {
		return nil, parse.NewRecoverable("StartXRef", off, parse.NotFound).WithToken(KeywordStartXRef)
	}
	off += len(KeywordStartXRef)
	if next := parse.SkipWhitespace(buf, off); next > off {
		off = next
	} else {
		return nil, parse.NewRecoverable("StartXRef", off, parse.NotFound).WithToken("whitespace")
	}
	n := parse.Digits(buf, off)
	if n == 0 {
		return nil, parse.NewRecoverable("StartXRef", off, parse.NotFound).WithToken("offset")
	}
	offset, ok := parse.ParseUint64(buf[off : off+n])
	if !ok {
		return nil, parse.NewRecoverable("StartXRef", off, parse.NumericOverflow)
	}
	off += n
	if next := parse.SkipWhitespace(buf, off); next > off {
		off = next
	} else {
		return nil, parse.NewRecoverable("StartXRef", off, parse.NotFound).WithToken("whitespace")
	}
	if !parse.Tag(buf, off, MarkerEOF) {
		return nil, parse.NewRecoverable("StartXRef", off, parse.NotFound).WithToken(MarkerEOF)
	}
	off += len(MarkerEOF)
	off += parse.EOL(buf, off)
	return &StartXRef{Offset: offset, span: parse.Span{Start: start, End: off}}, nil
}
