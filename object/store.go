// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"fmt"
	"sort"
)

// Lookup finds parsed indirect objects by id.
type Lookup interface {
	Lookup(id ID) (*IndirectObject, bool)
}

// Objects is a store of parsed indirect objects.
type Objects map[ID]*IndirectObject

func (o Objects) Lookup(id ID) (*IndirectObject, bool) {
	obj, ok := o[id]
	return obj, ok
}

// IDs returns the stored ids in ascending order.
func (o Objects) IDs() []ID {
	ids := make([]ID, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// Resolve follows references starting at v until it reaches a direct value
// that is not a reference.
func Resolve(v Value, lookup Lookup) (Value, error) {
	var seen map[ID]bool
	for {
		ref, ok := v.(Reference)
		if !ok {
			return v, nil
		}
		if seen[ref.ID] {
			return nil, fmt.Errorf("%w: %s", ErrCyclicReference, ref)
		}
		if seen == nil {
			seen = make(map[ID]bool)
		}
		seen[ref.ID] = true
		if lookup == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingObject, ref)
		}
		obj, ok := lookup.Lookup(ref.ID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingObject, ref)
		}
		next, ok := obj.Value.(Value)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrReferenceToStream, ref)
		}
		v = next
	}
}
