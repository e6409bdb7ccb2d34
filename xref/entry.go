// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package xref reads cross-reference sections and streams and folds a chain
// of incremental updates into a single Table (ISO 32000-1 §7.5.4 to §7.5.8).
package xref

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/object"
)

// EntryType classifies a cross-reference row.
type EntryType uint8

const (
	Free EntryType = iota
	InUse
	Compressed
	// NullReference is a stream row whose type field is outside 0..2.
	NullReference
)

func (t EntryType) String() string {
	switch t {
	case Free:
		return "free"
	case InUse:
		return "in-use"
	case Compressed:
		return "compressed"
	case NullReference:
		return "null-reference"
	}
	return fmt.Sprintf("EntryType(%d)", t)
}

// Entry is one cross-reference row. Which fields are meaningful depends on
// Type: Free uses NextFree and Generation, InUse uses Offset and Generation,
// Compressed uses Stream and Index, NullReference keeps the raw row in
// Fields.
type Entry struct {
	Type       EntryType
	Offset     uint64
	NextFree   uint64
	Generation uint16
	Stream     object.ID
	Index      uint64
	Fields     [3]uint64
}

func FreeEntry(nextFree uint64, generation uint16) Entry {
	return Entry{Type: Free, NextFree: nextFree, Generation: generation}
}

func InUseEntry(offset uint64, generation uint16) Entry {
	return Entry{Type: InUse, Offset: offset, Generation: generation}
}

// CompressedEntry is an object stored at index within the object stream
// numbered stream. Object streams always have generation zero.
func CompressedEntry(stream uint64, index uint64) Entry {
	return Entry{Type: Compressed, Stream: object.ID{Number: stream}, Index: index}
}

func NullReferenceEntry(f1, f2, f3 uint64) Entry {
	return Entry{Type: NullReference, Fields: [3]uint64{f1, f2, f3}}
}

// ID returns the id the entry gives to object number num.
func (e Entry) ID(num uint64) object.ID {
	switch e.Type {
	case Free, InUse:
		return object.ID{Number: num, Generation: e.Generation}
	}
	return object.ID{Number: num}
}

func (e Entry) String() string {
	switch e.Type {
	case Free:
		return fmt.Sprintf("%010d %05d f", e.NextFree, e.Generation)
	case InUse:
		return fmt.Sprintf("%010d %05d n", e.Offset, e.Generation)
	case Compressed:
		return fmt.Sprintf("compressed in %s at %d", e.Stream, e.Index)
	}
	return fmt.Sprintf("null reference %d %d %d", e.Fields[0], e.Fields[1], e.Fields[2])
}

// Subsection is a run of entries for consecutive object numbers.
type Subsection struct {
	First   uint64
	Entries []Entry
}
