// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import (
	"fmt"
	"strings"
)

// Code identifies the cause of an Error.
type Code int

const (
	DuplicateObjectNumber Code = iota + 1
	InUseObjectZero
	CompressedObjectZero
	EntriesLength
	EntriesTooShort
	FieldOverflow
	InvalidEntry
	NotXRefStream
	InvalidTrailer
	Decode
	PrevCycle
)

var codeNames = map[Code]string{
	DuplicateObjectNumber: "duplicate object number",
	InUseObjectZero:       "in-use entry for object 0",
	CompressedObjectZero:  "compressed entry for object 0",
	EntriesLength:         "decoded length is not a multiple of the row width",
	EntriesTooShort:       "entries too short",
	FieldOverflow:         "field overflow",
	InvalidEntry:          "invalid entry",
	NotXRefStream:         "not a cross-reference stream",
	InvalidTrailer:        "invalid trailer",
	Decode:                "decoding failed",
	PrevCycle:             "cyclic prev chain",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error reports a malformed cross-reference increment.
type Error struct {
	Code   Code
	Object uint64
	Offset int64
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("xref: ")
	b.WriteString(e.Code.String())
	if e.Object != 0 {
		fmt.Fprintf(&b, " (object %d)", e.Object)
	}
	if e.Offset != 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}
