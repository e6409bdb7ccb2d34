// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package pdftest assembles small PDF files in memory with correct
// cross-reference offsets.
package pdftest

import (
	"bytes"
	"fmt"
	"sort"
)

// Builder appends PDF syntax and remembers where each object starts.
type Builder struct {
	buf     bytes.Buffer
	offsets map[uint64]int
}

// New starts a file with a %PDF-version header and a binary comment.
func New(version string) *Builder {
	b := &Builder{offsets: make(map[uint64]int)}
	fmt.Fprintf(&b.buf, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
	return b
}

// Raw appends s and returns its offset.
func (b *Builder) Raw(s string) int {
	off := b.buf.Len()
	b.buf.WriteString(s)
	return off
}

// Object appends "num 0 obj body endobj" and returns its offset.
func (b *Builder) Object(num uint64, body string) int {
	off := b.Raw(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", num, body))
	b.offsets[num] = off
	return off
}

// Stream appends a stream object. dict holds the dictionary entries other
// than Length, which is set to len(data) unless length is not empty.
func (b *Builder) Stream(num uint64, dict string, data []byte, length ...string) int {
	l := fmt.Sprint(len(data))
	if len(length) > 0 {
		l = length[0]
	}
	off := b.buf.Len()
	fmt.Fprintf(&b.buf, "%d 0 obj\n<<%s /Length %s>>\nstream\n", num, dict, l)
	b.buf.Write(data)
	b.buf.WriteString("\nendstream\nendobj\n")
	b.offsets[num] = off
	return off
}

// Offset returns the offset of object num.
func (b *Builder) Offset(num uint64) int {
	return b.offsets[num]
}

func (b *Builder) Len() int { return b.buf.Len() }

// XRef appends a section listing the given objects, or every object written
// so far when nums is empty, followed by "trailer" and a dictionary made of
// /Size and extra. It returns the offset of the section.
func (b *Builder) XRef(extra string, nums ...uint64) int {
	if len(nums) == 0 {
		for n := range b.offsets {
			nums = append(nums, n)
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	size := uint64(1)
	for n := range b.offsets {
		size = max(size, n+1)
	}

	off := b.buf.Len()
	b.buf.WriteString("xref\n0 1\n0000000000 65535 f\r\n")
	for _, n := range nums {
		fmt.Fprintf(&b.buf, "%d 1\n%010d 00000 n\r\n", n, b.offsets[n])
	}
	fmt.Fprintf(&b.buf, "trailer\n<</Size %d %s>>\n", size, extra)
	return off
}

// Row is one cross-reference stream row.
type Row [3]uint64

// XRefStream appends an uncompressed cross-reference stream object num with
// W [1 4 2]. dict holds extra entries such as /Size, /Index and /Prev.
func (b *Builder) XRefStream(num uint64, dict string, rows ...Row) int {
	var data bytes.Buffer
	for _, r := range rows {
		data.WriteByte(byte(r[0]))
		data.Write([]byte{byte(r[1] >> 24), byte(r[1] >> 16), byte(r[1] >> 8), byte(r[1])})
		data.Write([]byte{byte(r[2] >> 8), byte(r[2])})
	}
	return b.Stream(num, "/Type /XRef /W [1 4 2] "+dict, data.Bytes())
}

// StartXRef appends the footer pointing at offset.
func (b *Builder) StartXRef(offset int) {
	fmt.Fprintf(&b.buf, "startxref\n%d\n%%%%EOF\n", offset)
}

// Bytes returns the file so far.
func (b *Builder) Bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}
