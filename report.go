// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package inspect

import (
	"encoding/json"
	"io"
)

// Report is what the Processor records for one file.
type Report struct {
	Path        string    `json:"path" msgpack:"path"`
	Size        int       `json:"size" msgpack:"size"`
	Digest      uint64    `json:"digest" msgpack:"digest"`
	Version     string    `json:"version,omitempty" msgpack:"version,omitempty"`
	Increments  int       `json:"increments" msgpack:"increments"`
	InUse       int       `json:"inUse" msgpack:"inUse"`
	Free        int       `json:"free" msgpack:"free"`
	Compressed  int       `json:"compressed" msgpack:"compressed"`
	Objects     int       `json:"objects" msgpack:"objects"`
	Overridden  int       `json:"overridden" msgpack:"overridden"`
	Diagnostics []Finding `json:"diagnostics,omitempty" msgpack:"diagnostics,omitempty"`
	Summary     string    `json:"summary" msgpack:"summary"`
	Metadata    *Metadata `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
	Cached      bool      `json:"cached,omitempty" msgpack:"-"`
	Error       string    `json:"error,omitempty" msgpack:"-"`

	// Err is the error Inspect returned for the file.
	Err error `json:"-" msgpack:"-"`
}

// Finding is the serialisable form of a Diagnostic.
type Finding struct {
	Kind    string `json:"kind" msgpack:"kind"`
	Object  string `json:"object,omitempty" msgpack:"object,omitempty"`
	Offset  uint64 `json:"offset" msgpack:"offset"`
	Message string `json:"message" msgpack:"message"`
}

// NewReport summarises doc.
func NewReport(doc *Document, digest uint64) *Report {
	t := doc.Table()
	r := &Report{
		Path:       doc.Path,
		Size:       len(doc.Bytes()),
		Digest:     digest,
		Version:    headerVersion(doc.Bytes()),
		Increments: doc.PreTable().Len(),
		InUse:      len(t.InUse()),
		Free:       len(t.Free()),
		Compressed: len(t.Compressed()),
		Objects:    len(doc.Objects()),
		Overridden: len(t.Overrides()),
		Summary:    doc.Summary(),
	}
	for _, d := range doc.Diagnostics() {
		f := Finding{Kind: d.Kind.String(), Offset: d.Offset, Message: d.Error()}
		if d.ID.Number != 0 {
			f.Object = d.ID.String()
		}
		r.Diagnostics = append(r.Diagnostics, f)
	}
	return r
}

// Failed reports whether the build recorded any diagnostic.
func (r *Report) Failed() bool {
	return len(r.Diagnostics) > 0
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteReports writes reports as one indented JSON array.
func WriteReports(w io.Writer, reports []*Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if reports == nil {
		reports = []*Report{}
	}
	return enc.Encode(reports)
}
