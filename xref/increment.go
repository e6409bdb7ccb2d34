// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import "github.com/sassoftware/viya-pdf-inspect/parse"

// Increment is one revision's cross-reference data: a *Section or an
// *XRefStream.
type Increment interface {
	Trailer() *Trailer
	// Prev returns the offset of the previous increment.
	Prev() (uint64, bool)
	Span() parse.Span
	// Table classifies the increment's rows. Decoding is only needed for
	// streams.
	Table(dec Decoder) (*Table, error)
}

// ParseIncrement tries a Section, then an XRefStream.
func ParseIncrement(buf []byte, off int) (Increment, error) {
	return parse.Alt("Increment", buf, off,
		func(buf []byte, off int) (Increment, error) {
			s, err := ParseSection(buf, off)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		func(buf []byte, off int) (Increment, error) {
			x, err := ParseXRefStream(buf, off)
			if err != nil {
				return nil, err
			}
			return x, nil
		},
	)
}
