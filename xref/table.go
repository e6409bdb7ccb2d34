// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import (
	"fmt"
	"sort"

	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/object"
)

// MergeOrder decides which increment keeps an id that several increments
// declare.
type MergeOrder int

const (
	// OldestWins lets each older increment overwrite what newer ones
	// declared.
	OldestWins MergeOrder = iota
	// NewestWins keeps the most recent declaration, as incremental updates
	// intend.
	NewestWins
)

func (o MergeOrder) String() string {
	if o == NewestWins {
		return "newest-wins"
	}
	return "oldest-wins"
}

// ParseMergeOrder accepts "oldest-wins" and "newest-wins".
func ParseMergeOrder(s string) (MergeOrder, error) {
	switch s {
	case "oldest-wins", "":
		return OldestWins, nil
	case "newest-wins":
		return NewestWins, nil
	}
	return OldestWins, fmt.Errorf("unknown merge order %q", s)
}

// Location is an in-use row: the offset of the object with the given id.
type Location struct {
	Offset uint64
	ID     object.ID
}

// CompressedRef locates an object inside an object stream.
type CompressedRef struct {
	Stream object.ID
	Index  uint64
}

// Override records an id declared by two increments and which row was
// discarded.
type Override struct {
	ID        object.ID
	Kept      Entry
	Discarded Entry
}

// Table is the resolved cross-reference state. Object number 0 is never
// stored.
type Table struct {
	entries   map[object.ID]Entry
	overrides []Override
	nullRefs  []Row
}

// Row is an entry together with the object number it was declared for.
type Row struct {
	Number uint64
	Entry  Entry
}

func NewTable() *Table {
	return &Table{entries: make(map[object.ID]Entry)}
}

// Insert adds the row for object number num. A free row for object 0 is
// dropped since it heads the free list; in-use and compressed rows for
// object 0 are errors. NullReference rows are set aside and reported by
// NullReferences.
func (t *Table) Insert(num uint64, e Entry) error {
	if num == 0 && e.Type != NullReference {
		switch e.Type {
		case InUse:
			return &Error{Code: InUseObjectZero, Offset: int64(e.Offset), Detail: e.String()}
		case Compressed:
			return &Error{Code: CompressedObjectZero, Detail: e.String()}
		}
		return nil
	}
	if e.Type == NullReference {
		logger.Debug(fmt.Sprintf("xref: null reference row for object %d: %s", num, e))
		t.nullRefs = append(t.nullRefs, Row{Number: num, Entry: e})
		return nil
	}
	t.entries[e.ID(num)] = e
	return nil
}

// Merge folds older, an increment written before the ones already in t,
// into t. Ids present in both are resolved by order and recorded as
// overrides.
func (t *Table) Merge(older *Table, order MergeOrder) {
	for _, id := range older.ids() {
		e := older.entries[id]
		cur, ok := t.entries[id]
		if !ok {
			t.entries[id] = e
			continue
		}
		if order == OldestWins {
			t.entries[id] = e
			t.overrides = append(t.overrides, Override{ID: id, Kept: e, Discarded: cur})
		} else {
			t.overrides = append(t.overrides, Override{ID: id, Kept: cur, Discarded: e})
		}
	}
	t.overrides = append(t.overrides, older.overrides...)
	t.nullRefs = append(t.nullRefs, older.nullRefs...)
}

func (t *Table) ids() []object.ID {
	ids := make([]object.ID, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// Len returns the number of ids in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the row for id.
func (t *Table) Lookup(id object.ID) (Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

// InUse returns the in-use rows ordered by offset, then id.
func (t *Table) InUse() []Location {
	var locs []Location
	for id, e := range t.entries {
		if e.Type == InUse {
			locs = append(locs, Location{Offset: e.Offset, ID: id})
		}
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Offset != locs[j].Offset {
			return locs[i].Offset < locs[j].Offset
		}
		return locs[i].ID.Less(locs[j].ID)
	})
	return locs
}

// Free maps free ids to the next free object number.
func (t *Table) Free() map[object.ID]uint64 {
	free := make(map[object.ID]uint64)
	for id, e := range t.entries {
		if e.Type == Free {
			free[id] = e.NextFree
		}
	}
	return free
}

func (t *Table) Compressed() map[object.ID]CompressedRef {
	c := make(map[object.ID]CompressedRef)
	for id, e := range t.entries {
		if e.Type == Compressed {
			c[id] = CompressedRef{Stream: e.Stream, Index: e.Index}
		}
	}
	return c
}

// NullReferences lists the rows whose type field was out of range.
func (t *Table) NullReferences() []Row {
	return t.nullRefs
}

// Overrides lists every id that more than one increment declared.
func (t *Table) Overrides() []Override {
	return t.overrides
}
