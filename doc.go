// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package inspect builds the object graph of a PDF file from its
// cross-reference data and reports what could not be resolved.
//
// # Overview
//
// A PDF file ends with a startxref footer pointing at the newest
// cross-reference increment. Each increment is either a classic xref
// section with a trailer or a cross-reference stream, and may name an
// older increment through /Prev. Build follows that chain, merges the
// increments into one table and parses every in-use object at its
// recorded offset. Streams whose /Length is an indirect reference are
// retried once the referenced object is known.
//
// Problems found after the first increment is located do not stop the
// build. They are collected as Diagnostics on the Document:
//
//	doc, err := inspect.Open("report.pdf", nil)
//	if err != nil {
//		// no startxref, or no increment could be read
//	}
//	for _, d := range doc.Diagnostics() {
//		fmt.Println(d)
//	}
//
// For many files, NewProcessor bounds concurrency, applies a strict or
// best-effort verdict and can cache reports by file content.
package inspect
