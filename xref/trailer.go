// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/object"
	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// Trailer and cross-reference stream keys.
const (
	KeySize    = "Size"
	KeyPrev    = "Prev"
	KeyRoot    = "Root"
	KeyEncrypt = "Encrypt"
	KeyInfo    = "Info"
	KeyID      = "ID"
	KeyXRefStm = "XRefStm"
	KeyType    = "Type"
	KeyIndex   = "Index"
	KeyW       = "W"

	TypeXRef = "XRef"
)

var streamKeys = map[string]bool{
	object.KeyLength:       true,
	object.KeyFilter:       true,
	object.KeyDecodeParms:  true,
	object.KeyF:            true,
	object.KeyFFilter:      true,
	object.KeyFDecodeParms: true,
	object.KeyDL:           true,
}

// IndexRange is one "first count" pair of a cross-reference stream's Index.
type IndexRange struct {
	First uint64
	Count uint64
}

// Trailer holds the entries of a trailer dictionary, or of a
// cross-reference stream dictionary, that describe the increment.
type Trailer struct {
	Size uint64
	// Prev is the offset of the previous increment.
	Prev *uint64
	Root *object.Reference
	// Encrypt is a Reference or a direct Dictionary.
	Encrypt object.Value
	Info    *object.Reference
	ID      []object.String
	XRefStm *uint64
	Type    string
	Index   []IndexRange
	W       []int
	// Others keeps every entry not listed above.
	Others map[string]object.Value

	dict *object.Dictionary
}

// NewTrailer reads a trailer from d. When stream is true d is the
// dictionary of a cross-reference stream and its stream keys are not
// collected in Others.
func NewTrailer(d *object.Dictionary, stream bool) (*Trailer, error) {
	t := &Trailer{Others: make(map[string]object.Value), dict: d}
	var err error
	if t.Size, err = d.RequiredUint64(KeySize); err != nil {
		return nil, trailerError(err)
	}
	if t.Prev, err = optUint64(d, KeyPrev); err != nil {
		return nil, trailerError(err)
	}
	if t.XRefStm, err = optUint64(d, KeyXRefStm); err != nil {
		return nil, trailerError(err)
	}
	if t.Root, err = optReference(d, KeyRoot); err != nil {
		return nil, trailerError(err)
	}
	if t.Info, err = optReference(d, KeyInfo); err != nil {
		return nil, trailerError(err)
	}
	if v, ok := d.Get(KeyEncrypt); ok {
		switch v.(type) {
		case object.Reference, *object.Dictionary:
			t.Encrypt = v
		default:
			return nil, trailerError(&object.EntryError{Key: KeyEncrypt, Code: object.WrongType, Want: "Reference or Dictionary", Value: v})
		}
	}
	if n, ok, err := d.Name(KeyType); err != nil {
		return nil, trailerError(err)
	} else if ok {
		t.Type = n.Key()
	}
	if t.ID, err = fileID(d); err != nil {
		return nil, trailerError(err)
	}
	if t.W, err = widths(d); err != nil {
		return nil, trailerError(err)
	}
	if t.Index, err = index(d); err != nil {
		return nil, trailerError(err)
	}

	known := map[string]bool{
		KeySize: true, KeyPrev: true, KeyRoot: true, KeyEncrypt: true, KeyInfo: true,
		KeyID: true, KeyXRefStm: true, KeyType: true, KeyIndex: true, KeyW: true,
	}
	for _, k := range d.Keys() {
		if known[k] || (stream && streamKeys[k]) {
			continue
		}
		v, _ := d.Get(k)
		t.Others[k] = v
		logger.Debug(fmt.Sprintf("trailer: unexpected key /%s", k))
	}
	if t.Root == nil {
		logger.Debug("trailer: no /Root entry")
	}
	return t, nil
}

// Dictionary returns the dictionary the trailer was read from.
func (t *Trailer) Dictionary() *object.Dictionary { return t.dict }

func (t *Trailer) Span() parse.Span { return t.dict.Span() }

func (t *Trailer) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<<\n/Size %d\n", t.Size)
	if t.Prev != nil {
		fmt.Fprintf(&b, "/Prev %d\n", *t.Prev)
	}
	if t.Root != nil {
		fmt.Fprintf(&b, "/Root %s\n", t.Root)
	}
	if t.Encrypt != nil {
		fmt.Fprintf(&b, "/Encrypt %s\n", t.Encrypt)
	}
	if t.Info != nil {
		fmt.Fprintf(&b, "/Info %s\n", t.Info)
	}
	if len(t.ID) == 2 {
		fmt.Fprintf(&b, "/ID [%s %s]\n", t.ID[0], t.ID[1])
	}
	if t.XRefStm != nil {
		fmt.Fprintf(&b, "/XRefStm %d\n", *t.XRefStm)
	}
	if t.Type != "" {
		fmt.Fprintf(&b, "/Type /%s\n", t.Type)
	}
	if len(t.Index) > 0 {
		b.WriteString("/Index [")
		for _, r := range t.Index {
			fmt.Fprintf(&b, " %d %d", r.First, r.Count)
		}
		b.WriteString(" ]\n")
	}
	if len(t.W) == 3 {
		fmt.Fprintf(&b, "/W [%d %d %d]\n", t.W[0], t.W[1], t.W[2])
	}
	keys := make([]string, 0, len(t.Others))
	for k := range t.Others {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "/%s %s\n", k, t.Others[k])
	}
	b.WriteString(">>")
	return b.String()
}

func trailerError(err error) error {
	return &Error{Code: InvalidTrailer, Err: err}
}

func optUint64(d *object.Dictionary, key string) (*uint64, error) {
	v, ok, err := d.Uint64(key)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func optReference(d *object.Dictionary, key string) (*object.Reference, error) {
	r, ok, err := d.Reference(key)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func fileID(d *object.Dictionary) ([]object.String, error) {
	a, ok, err := d.Array(KeyID)
	if err != nil || !ok {
		return nil, err
	}
	if a.Len() != 2 {
		return nil, &object.EntryError{Key: KeyID, Code: object.WrongType, Want: "array of two strings", Value: a}
	}
	id := make([]object.String, 2)
	for i, e := range a.Elements {
		s, ok := e.(object.String)
		if !ok {
			return nil, &object.EntryError{Key: KeyID, Code: object.WrongType, Want: "array of two strings", Value: a}
		}
		id[i] = s
	}
	return id, nil
}

func widths(d *object.Dictionary) ([]int, error) {
	a, ok, err := d.Array(KeyW)
	if err != nil || !ok {
		return nil, err
	}
	if a.Len() != 3 {
		return nil, &object.EntryError{Key: KeyW, Code: object.WrongType, Want: "array of three integers", Value: a}
	}
	w := make([]int, 3)
	for i, e := range a.Elements {
		n, ok := e.(object.Integer)
		if !ok {
			return nil, &object.EntryError{Key: KeyW, Code: object.WrongType, Want: "Integer", Value: e}
		}
		v, ok := n.Int()
		if !ok || v > 8 {
			return nil, &object.EntryError{Key: KeyW, Code: object.OutOfRange, Want: "width in 0..8", Value: e}
		}
		w[i] = v
	}
	return w, nil
}

func index(d *object.Dictionary) ([]IndexRange, error) {
	a, ok, err := d.Array(KeyIndex)
	if err != nil || !ok {
		return nil, err
	}
	if a.Len()%2 != 0 {
		return nil, &object.EntryError{Key: KeyIndex, Code: object.WrongType, Want: "array of integer pairs", Value: a}
	}
	ranges := make([]IndexRange, 0, a.Len()/2)
	for i := 0; i < a.Len(); i += 2 {
		var pair [2]uint64
		for j := range pair {
			e := a.Elements[i+j]
			n, ok := e.(object.Integer)
			if !ok {
				return nil, &object.EntryError{Key: KeyIndex, Code: object.WrongType, Want: "Integer", Value: e}
			}
			if pair[j], ok = n.Uint64(); !ok {
				return nil, &object.EntryError{Key: KeyIndex, Code: object.OutOfRange, Want: "non-negative integer", Value: e}
			}
		}
		ranges = append(ranges, IndexRange{First: pair[0], Count: pair[1]})
	}
	return ranges, nil
}
