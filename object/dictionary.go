// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"fmt"
	"strings"

	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// DuplicateKey records a key that appeared more than once in a dictionary.
// The later value replaced the earlier one.
type DuplicateKey struct {
	Key      string
	Previous Value
	Value    Value
}

func (d DuplicateKey) Error() string {
	return fmt.Sprintf("duplicate key /%s: %s overwritten by %s", d.Key, d.Previous, d.Value)
}

// Dictionary maps escaped names to direct values, remembering insertion
// order.
type Dictionary struct {
	direct
	keys       []string
	entries    map[string]Value
	duplicates []DuplicateKey
	span       parse.Span
}

func NewDictionary(span parse.Span) *Dictionary {
	return &Dictionary{entries: make(map[string]Value), span: span}
}

func (d *Dictionary) Span() parse.Span { return d.span }
func (d *Dictionary) Len() int         { return len(d.keys) }

// Keys returns the keys in the order they were first inserted.
func (d *Dictionary) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Duplicates returns the keys overwritten while the dictionary was built.
func (d *Dictionary) Duplicates() []DuplicateKey {
	return d.duplicates
}

// Set stores v under key. An existing value is replaced and recorded as a
// duplicate.
func (d *Dictionary) Set(key string, v Value) {
	if d.entries == nil {
		d.entries = make(map[string]Value)
	}
	if old, ok := d.entries[key]; ok {
		d.duplicates = append(d.duplicates, DuplicateKey{Key: key, Previous: old, Value: v})
		logger.Debug(fmt.Sprintf("dictionary: overwriting /%s: %s -> %s", key, old, v))
	} else {
		d.keys = append(d.keys, key)
	}
	d.entries[key] = v
}

func (d *Dictionary) Get(key string) (Value, bool) {
	v, ok := d.entries[key]
	return v, ok
}

func (d *Dictionary) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// Required returns the value for key or a MissingEntry error.
func (d *Dictionary) Required(key string) (Value, error) {
	v, ok := d.entries[key]
	if !ok {
		return nil, &EntryError{Key: key, Code: MissingEntry}
	}
	return v, nil
}

func (d *Dictionary) String() string {
	var b strings.Builder
	b.WriteString("<<")
	for i, k := range d.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "/%s %s", k, d.entries[k])
	}
	b.WriteString(">>")
	return b.String()
}

// Name returns the name stored under key. ok is false when the key is
// absent.
func (d *Dictionary) Name(key string) (n Name, ok bool, err error) {
	v, ok := d.entries[key]
	if !ok {
		return Name{}, false, nil
	}
	n, isName := v.(Name)
	if !isName {
		return Name{}, true, &EntryError{Key: key, Code: WrongType, Want: "Name", Value: v}
	}
	return n, true, nil
}

func (d *Dictionary) RequiredName(key string) (Name, error) {
	n, ok, err := d.Name(key)
	if err == nil && !ok {
		err = &EntryError{Key: key, Code: MissingEntry}
	}
	return n, err
}

// Uint64 returns the non-negative integer stored under key.
func (d *Dictionary) Uint64(key string) (uint64, bool, error) {
	v, ok := d.entries[key]
	if !ok {
		return 0, false, nil
	}
	u, err := asUint64(key, v)
	return u, true, err
}

func (d *Dictionary) RequiredUint64(key string) (uint64, error) {
	u, ok, err := d.Uint64(key)
	if err == nil && !ok {
		err = &EntryError{Key: key, Code: MissingEntry}
	}
	return u, err
}

// Int returns the non-negative integer stored under key as an int.
func (d *Dictionary) Int(key string) (int, bool, error) {
	v, ok := d.entries[key]
	if !ok {
		return 0, false, nil
	}
	i, err := asInt(key, v)
	return i, true, err
}

func (d *Dictionary) Array(key string) (*Array, bool, error) {
	v, ok := d.entries[key]
	if !ok {
		return nil, false, nil
	}
	a, isArray := v.(*Array)
	if !isArray {
		return nil, true, &EntryError{Key: key, Code: WrongType, Want: "Array", Value: v}
	}
	return a, true, nil
}

func (d *Dictionary) RequiredArray(key string) (*Array, error) {
	a, ok, err := d.Array(key)
	if err == nil && !ok {
		err = &EntryError{Key: key, Code: MissingEntry}
	}
	return a, err
}

func (d *Dictionary) Reference(key string) (Reference, bool, error) {
	v, ok := d.entries[key]
	if !ok {
		return Reference{}, false, nil
	}
	r, isRef := v.(Reference)
	if !isRef {
		return Reference{}, true, &EntryError{Key: key, Code: WrongType, Want: "Reference", Value: v}
	}
	return r, true, nil
}

func (d *Dictionary) Dict(key string) (*Dictionary, bool, error) {
	v, ok := d.entries[key]
	if !ok {
		return nil, false, nil
	}
	sub, isDict := v.(*Dictionary)
	if !isDict {
		return nil, true, &EntryError{Key: key, Code: WrongType, Want: "Dictionary", Value: v}
	}
	return sub, true, nil
}

func asUint64(key string, v Value) (uint64, error) {
	i, ok := v.(Integer)
	if !ok {
		return 0, &EntryError{Key: key, Code: WrongType, Want: "Integer", Value: v}
	}
	u, ok := i.Uint64()
	if !ok {
		return 0, &EntryError{Key: key, Code: OutOfRange, Want: "uint64", Value: v}
	}
	return u, nil
}

func asInt(key string, v Value) (int, error) {
	i, ok := v.(Integer)
	if !ok {
		return 0, &EntryError{Key: key, Code: WrongType, Want: "Integer", Value: v}
	}
	n, ok := i.Int()
	if !ok {
		return 0, &EntryError{Key: key, Code: OutOfRange, Want: "int", Value: v}
	}
	return n, nil
}

// ParseDictionary recognizes "<<", name/value pairs, and ">>". Keys are
// stored escaped; a key that fails to escape is stored raw. A repeated key
// keeps its last value. After "<<" every error is a Failure.
func ParseDictionary(buf []byte, off int) (*Dictionary, error) {
	start := off
	if !parse.Tag(buf, off, "<<") {
		return nil, parse.NewRecoverable("Dictionary", off, parse.NotFound).WithToken("<<")
	}
	off = parse.SkipWhitespaceAndComments(buf, off+2)
	d := &Dictionary{entries: make(map[string]Value)}
	for {
		if parse.Tag(buf, off, ">>") {
			off += 2
			break
		}
		key, err := ParseName(buf, off)
		if err != nil {
			return nil, parse.NewFailure("Dictionary", off, parse.MissingClosing).WithToken(">>").Wrap(err)
		}
		off = parse.SkipWhitespaceAndComments(buf, key.Span().End)
		v, err := ParseDirectValue(buf, off)
		if err != nil {
			return nil, parse.NewFailure("Dictionary", off, parse.MissingValue).WithKey(key.Key()).Wrap(err)
		}
		off = parse.SkipWhitespaceAndComments(buf, v.Span().End)
		d.Set(key.Key(), v)
	}
	d.span = parse.Span{Start: start, End: off}
	return d, nil
}
