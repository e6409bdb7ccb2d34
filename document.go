// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package inspect

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/sassoftware/viya-pdf-inspect/filter"
	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/object"
	"github.com/sassoftware/viya-pdf-inspect/parse"
	"github.com/sassoftware/viya-pdf-inspect/xref"
)

// Stage names the step of a build that failed.
type Stage string

const (
	StageRead      Stage = "read"
	StageStartXRef Stage = "startxref"
	StagePreTable  Stage = "pretable"
)

// FatalError is returned when no document could be built at all.
type FatalError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e *FatalError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Document is a PDF file whose cross-reference data has been merged and
// whose in-use objects have been parsed.
type Document struct {
	Path string

	buf         []byte
	startXRef   *xref.StartXRef
	pretable    *xref.PreTable
	table       *xref.Table
	objects     object.Objects
	diagnostics []Diagnostic

	maxDecodedSize int64
}

// Open reads the file at path and builds it.
func Open(path string, cfg *Config) (*Document, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read PDF", "path", path, "err", err)
		return nil, &FatalError{Path: path, Stage: StageRead, Err: err}
	}
	doc, err := Build(buf, cfg)
	if err != nil {
		var fe *FatalError
		if errors.As(err, &fe) {
			fe.Path = path
		}
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Build locates the newest increment through the startxref footer, follows
// the Prev chain, merges the increments into one table and parses every
// in-use object. Problems past the first increment are reported as
// diagnostics rather than errors.
func Build(buf []byte, cfg *Config) (*Document, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	sx, err := xref.ParseStartXRef(buf)
	if err != nil {
		return nil, &FatalError{Stage: StageStartXRef, Err: err}
	}
	pt, err := xref.ParsePreTable(buf, sx.Offset)
	if err != nil {
		return nil, &FatalError{Stage: StagePreTable, Err: err}
	}
	if pt.Len() == 0 {
		return nil, &FatalError{Stage: StagePreTable, Err: errors.New("no increment found")}
	}

	d := &Document{
		buf:       buf,
		startXRef: sx,
		pretable:  pt,
		objects:   make(object.Objects),

		maxDecodedSize: cfg.maxDecodedSize(),
	}
	for _, err := range pt.Errors() {
		d.add(Diagnostic{Kind: Prev, Offset: incrementOffset(err), Err: err})
	}

	table, errs := pt.Table(filter.NewChain(d.maxDecodedSize, d.objects), cfg.mergeOrder())
	for _, err := range errs {
		d.add(Diagnostic{Kind: Increment, Offset: incrementOffset(err), Err: err})
	}
	d.table = table
	for _, row := range table.NullReferences() {
		d.add(Diagnostic{
			Kind: NullReference,
			ID:   object.ID{Number: row.Number},
			Err:  fmt.Errorf("unknown entry type %d", row.Entry.Fields[0]),
		})
	}

	d.resolve(table.InUse())
	d.collectDuplicateKeys()
	logger.Debug("document built", "increments", pt.Len(), "objects", len(d.objects), "diagnostics", len(d.diagnostics))
	return d, nil
}

// attempt is an in-use row together with its last parse error.
type attempt struct {
	loc xref.Location
	err error
}

// resolve parses the objects at locs. Objects that fail are retried while
// each pass parses at least one more object, since a stream whose Length
// is a reference can only be read once the referenced object is known.
func (d *Document) resolve(locs []xref.Location) {
	pending := make([]attempt, 0, len(locs))
	for _, loc := range locs {
		if loc.Offset == 0 || loc.Offset >= uint64(len(d.buf)) {
			d.add(Diagnostic{
				Kind:   OutOfBounds,
				ID:     loc.ID,
				Offset: loc.Offset,
				Err:    fmt.Errorf("offset %d outside file of %d bytes", loc.Offset, len(d.buf)),
			})
			continue
		}
		pending = append(pending, attempt{loc: loc})
	}

	for pass := 1; len(pending) > 0; pass++ {
		var failed []attempt
		for _, a := range pending {
			obj, err := object.ParseIndirectObject(d.buf, int(a.loc.Offset), d.objects)
			if err != nil {
				failed = append(failed, attempt{loc: a.loc, err: err})
				continue
			}
			if obj.ID != a.loc.ID {
				d.add(Diagnostic{
					Kind:   IDMismatch,
					ID:     a.loc.ID,
					Offset: a.loc.Offset,
					Err:    fmt.Errorf("found object %s", obj.ID),
				})
			}
			d.objects[a.loc.ID] = obj
		}
		logger.Debug(fmt.Sprintf("resolve: pass %d parsed %d of %d objects", pass, len(pending)-len(failed), len(pending)), true)
		stalled := len(failed) == len(pending)
		pending = failed
		if stalled {
			break
		}
	}

	for _, a := range pending {
		d.add(Diagnostic{Kind: Parse, ID: a.loc.ID, Offset: a.loc.Offset, Err: a.err})
	}
}

// collectDuplicateKeys reports keys overwritten in any parsed dictionary,
// trailers included.
func (d *Document) collectDuplicateKeys() {
	report := func(id object.ID, offset uint64) func(object.Value) {
		return func(v object.Value) {
			dict, ok := v.(*object.Dictionary)
			if !ok {
				return
			}
			for _, dup := range dict.Duplicates() {
				d.add(Diagnostic{Kind: DuplicateKey, ID: id, Offset: offset, Err: dup})
			}
		}
	}
	for _, id := range d.objects.IDs() {
		obj := d.objects[id]
		object.Walk(obj.Value, report(id, uint64(obj.Span().Start)))
	}
	for i, inc := range d.pretable.Increments() {
		t := inc.Trailer()
		if t == nil || t.Dictionary() == nil {
			continue
		}
		if x, ok := inc.(*xref.XRefStream); ok {
			// walked above when it has an in-use row
			if _, parsed := d.objects[x.ID]; parsed {
				continue
			}
		}
		object.Walk(t.Dictionary(), report(object.ID{}, d.pretable.Offsets()[i]))
	}
}

func (d *Document) add(diag Diagnostic) {
	logger.Debug(diag.Error())
	d.diagnostics = append(d.diagnostics, diag)
}

func incrementOffset(err error) uint64 {
	var ie *xref.IncrementError
	if errors.As(err, &ie) {
		return ie.Offset
	}
	return 0
}

// Bytes returns the file contents.
func (d *Document) Bytes() []byte { return d.buf }

// Objects returns the parsed in-use objects, keyed by the id their table
// row declares.
func (d *Document) Objects() object.Objects { return d.objects }

func (d *Document) Object(id object.ID) (*object.IndirectObject, bool) {
	return d.objects.Lookup(id)
}

func (d *Document) Table() *xref.Table { return d.table }

func (d *Document) PreTable() *xref.PreTable { return d.pretable }

func (d *Document) StartXRef() *xref.StartXRef { return d.startXRef }

// Trailer returns the newest trailer.
func (d *Document) Trailer() *xref.Trailer { return d.pretable.Trailer() }

func (d *Document) Diagnostics() []Diagnostic { return d.diagnostics }

// Status joins every diagnostic into one error; it is nil for a clean
// document.
func (d *Document) Status() error {
	if len(d.diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(d.diagnostics))
	for i := range d.diagnostics {
		errs[i] = d.diagnostics[i]
	}
	return errors.Join(errs...)
}

func (d *Document) Summary() string {
	return fmt.Sprintf("# In-use Objects: %d, # Overridden: %d, # Errors: %d",
		len(d.objects), len(d.table.Overrides()), len(d.diagnostics))
}

// Resolve follows v through the parsed objects.
func (d *Document) Resolve(v object.Value) (object.Value, error) {
	return object.Resolve(v, d.objects)
}

// JoinSpans partitions the file into the ranges covered by parsed objects
// and cross-reference data, and the gaps between them. Overlapping and
// adjacent ranges are coalesced.
func (d *Document) JoinSpans() (parsed, notParsed []parse.Span) {
	spans := make([]parse.Span, 0, len(d.objects)+2*d.pretable.Len()+1)
	for _, obj := range d.objects {
		spans = append(spans, obj.Span())
	}
	for _, inc := range d.pretable.Increments() {
		spans = append(spans, inc.Span())
	}
	spans = append(spans, d.startXRef.Span())
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})

	var cur parse.Span
	open := false
	for _, s := range spans {
		if open && s.Start <= cur.End {
			cur.End = max(cur.End, s.End)
			continue
		}
		if open {
			parsed = append(parsed, cur)
		}
		gapStart := 0
		if open {
			gapStart = cur.End
		}
		if s.Start > gapStart {
			notParsed = append(notParsed, parse.Span{Start: gapStart, End: s.Start})
		}
		cur, open = s, true
	}
	end := 0
	if open {
		parsed = append(parsed, cur)
		end = cur.End
	}
	if end < len(d.buf) {
		notParsed = append(notParsed, parse.Span{Start: end, End: len(d.buf)})
	}
	return parsed, notParsed
}
