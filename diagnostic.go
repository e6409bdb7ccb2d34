// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package inspect

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/object"
)

// DiagnosticKind classifies a problem found while building a document.
type DiagnosticKind int

const (
	// OutOfBounds: an in-use row points at offset 0 or past the end of file.
	OutOfBounds DiagnosticKind = iota
	// IDMismatch: the object at a row's offset declares another id. The
	// object is kept.
	IDMismatch
	// Parse: the object at a row's offset could not be parsed.
	Parse
	// DuplicateKey: a dictionary repeats a key; the last value was kept.
	DuplicateKey
	// NullReference: a cross-reference stream row has an unknown type.
	NullReference
	// Increment: an increment's rows could not be turned into a table.
	Increment
	// Prev: the Prev chain could not be followed to its end.
	Prev
)

var diagnosticKindNames = map[DiagnosticKind]string{
	OutOfBounds:   "out-of-bounds",
	IDMismatch:    "id-mismatch",
	Parse:         "parse",
	DuplicateKey:  "duplicate-key",
	NullReference: "null-reference",
	Increment:     "increment",
	Prev:          "prev",
}

func (k DiagnosticKind) String() string {
	if s, ok := diagnosticKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("DiagnosticKind(%d)", int(k))
}

func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Diagnostic is a non-fatal problem. ID is zero for problems that are not
// tied to an object.
type Diagnostic struct {
	Kind   DiagnosticKind
	ID     object.ID
	Offset uint64
	Err    error
}

func (d Diagnostic) Error() string {
	switch d.Kind {
	case Increment, Prev:
		return fmt.Sprintf("%s: %v", d.Kind, d.Err)
	case NullReference:
		return fmt.Sprintf("%s: object %d: %v", d.Kind, d.ID.Number, d.Err)
	}
	if d.ID == (object.ID{}) {
		return fmt.Sprintf("%s at offset %d: %v", d.Kind, d.Offset, d.Err)
	}
	return fmt.Sprintf("%s: object %s at offset %d: %v", d.Kind, d.ID, d.Offset, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
