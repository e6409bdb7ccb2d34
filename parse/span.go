// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package parse holds the byte-level building blocks shared by the object
// and xref grammars: spans, the recoverable/failure error model and
// character classes.
package parse

import "fmt"

// Span is the half-open byte range [Start, End) of the buffer that produced
// a value.
type Span struct {
	Start int
	End   int
}

// NewSpan returns the span of length bytes beginning at start.
func NewSpan(start, length int) Span {
	return Span{Start: start, End: start + length}
}

// Len returns the number of bytes covered by s.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether off lies inside s.
func (s Span) Contains(off int) bool {
	return off >= s.Start && off < s.End
}

// Valid reports whether s lies within a buffer of length n.
func (s Span) Valid(n int) bool {
	return 0 <= s.Start && s.Start <= s.End && s.End <= n
}

// Slice returns the bytes of buf covered by s, or nil if s does not fit.
func (s Span) Slice(buf []byte) []byte {
	if !s.Valid(len(buf)) {
		return nil
	}
	return buf[s.Start:s.End]
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}
