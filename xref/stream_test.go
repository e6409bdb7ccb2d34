// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import (
	"bytes"
	"compress/zlib"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sassoftware/viya-pdf-inspect/filter"
	"github.com/sassoftware/viya-pdf-inspect/internal/pdftest"
	"github.com/sassoftware/viya-pdf-inspect/object"
	"github.com/sassoftware/viya-pdf-inspect/parse"
)

func TestParseXRefStream(t *testing.T) {
	b := pdftest.New("1.5")
	o1 := b.Object(1, "<</Type /Catalog>>")
	o2 := b.Object(2, "(hello)")
	o3 := b.Len()
	b.XRefStream(3, "/Size 6 /Root 1 0 R",
		pdftest.Row{0, 0, 65535},
		pdftest.Row{1, uint64(o1), 0},
		pdftest.Row{1, uint64(o2), 0},
		pdftest.Row{1, uint64(o3), 0},
		pdftest.Row{2, 7, 0},
		pdftest.Row{9, 1, 2},
	)
	b.StartXRef(o3)
	buf := b.Bytes()

	x, err := ParseXRefStream(buf, o3)
	require.NoError(t, err)
	assert.Equal(t, object.ID{Number: 3}, x.ID)
	assert.Equal(t, uint64(6), x.Trailer().Size)
	require.NotNil(t, x.StartXRef)
	assert.Equal(t, uint64(o3), x.StartXRef.Offset)
	assert.Equal(t, parse.Span{Start: o3, End: len(buf)}, x.Span())

	table, err := x.Table(&filter.Chain{})
	require.NoError(t, err)
	assert.Equal(t, []Location{
		{Offset: uint64(o1), ID: object.ID{Number: 1}},
		{Offset: uint64(o2), ID: object.ID{Number: 2}},
		{Offset: uint64(o3), ID: object.ID{Number: 3}},
	}, table.InUse())
	assert.Equal(t, map[object.ID]CompressedRef{{Number: 4}: {Stream: object.ID{Number: 7}, Index: 0}}, table.Compressed())
	assert.Empty(t, table.Free())
	assert.Equal(t, []Row{{Number: 5, Entry: NullReferenceEntry(9, 1, 2)}}, table.NullReferences())
}

func TestXRefStreamIndex(t *testing.T) {
	b := pdftest.New("1.5")
	off := b.XRefStream(1, "/Size 10 /Index [2 1 7 2]",
		pdftest.Row{1, 10, 0},
		pdftest.Row{0, 0, 3},
		pdftest.Row{1, 30, 0},
	)
	x, err := ParseXRefStream(b.Bytes(), off)
	require.NoError(t, err)

	table, err := x.Table(&filter.Chain{})
	require.NoError(t, err)
	assert.Equal(t, []Location{{10, object.ID{Number: 2}}, {30, object.ID{Number: 8}}}, table.InUse())
	assert.Equal(t, map[object.ID]uint64{{Number: 7, Generation: 3}: 0}, table.Free())
}

func TestXRefStreamDefaultType(t *testing.T) {
	b := pdftest.New("1.5")
	off := b.Stream(1, "/Type /XRef /Size 2 /Index [1 1] /W [0 2 1]", []byte{0x00, 0x10, 0x00})
	x, err := ParseXRefStream(b.Bytes(), off)
	require.NoError(t, err)

	table, err := x.Table(&filter.Chain{})
	require.NoError(t, err)
	assert.Equal(t, []Location{{16, object.ID{Number: 1}}}, table.InUse())
}

func TestXRefStreamFlatePredictor(t *testing.T) {
	var packed bytes.Buffer
	w := zlib.NewWriter(&packed)
	_, err := w.Write([]byte{2, 1, 0, 16, 0, 2, 0, 0, 16, 0})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	b := pdftest.New("1.5")
	off := b.Stream(1, "/Type /XRef /Size 3 /Index [1 2] /W [1 2 1] /Filter /FlateDecode /DecodeParms <</Predictor 12 /Columns 4>>", packed.Bytes())
	x, err := ParseXRefStream(b.Bytes(), off)
	require.NoError(t, err)

	table, err := x.Table(&filter.Chain{})
	require.NoError(t, err)
	assert.Equal(t, []Location{{16, object.ID{Number: 1}}, {32, object.ID{Number: 2}}}, table.InUse())
}

func TestParseXRefStreamErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *pdftest.Builder) int
		code  parse.Code
	}{
		{
			"not a stream",
			func(b *pdftest.Builder) int { return b.Object(1, "<</Type /XRef /Size 1>>") },
			parse.WrongObjectType,
		},
		{
			"wrong type",
			func(b *pdftest.Builder) int { return b.Stream(1, "/Type /XObject /Size 1", nil) },
			parse.WrongObjectType,
		},
		{
			"missing type",
			func(b *pdftest.Builder) int { return b.Stream(1, "/Size 1", nil) },
			parse.MissingKey,
		},
		{
			"missing size",
			func(b *pdftest.Builder) int { return b.Stream(1, "/Type /XRef /W [1 1 1]", nil) },
			parse.MissingSubobject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pdftest.New("1.5")
			off := tt.build(b)
			_, err := ParseXRefStream(b.Bytes(), off)
			require.Error(t, err)
			assert.True(t, parse.IsFailure(err))
			var perr *parse.Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.code, perr.Code)
		})
	}

	t.Run("not an object", func(t *testing.T) {
		_, err := ParseXRefStream([]byte("xref\n0 0\ntrailer<<>>"), 0)
		assert.True(t, parse.IsRecoverable(err))
	})
}

func TestXRefStreamTableErrors(t *testing.T) {
	tests := []struct {
		name string
		dict string
		data []byte
		dec  Decoder
		code Code
	}{
		{"missing w", "/Type /XRef /Size 1", nil, &filter.Chain{}, InvalidTrailer},
		{"no decoder", "/Type /XRef /Size 1 /W [1 1 1]", []byte{1, 2, 0}, nil, Decode},
		{"unsupported filter", "/Type /XRef /Size 1 /W [1 1 1] /Filter /DCTDecode", []byte{1, 2, 0}, &filter.Chain{}, Decode},
		{"ragged rows", "/Type /XRef /Size 1 /W [1 2 1]", []byte{1, 0, 9, 0, 1}, &filter.Chain{}, EntriesLength},
		{"zero width rows", "/Type /XRef /Size 1 /W [0 0 0]", nil, &filter.Chain{}, EntriesLength},
		{"too short", "/Type /XRef /Size 4 /Index [1 3] /W [1 1 1]", []byte{1, 9, 0, 1, 12, 0}, &filter.Chain{}, EntriesTooShort},
		{"duplicate", "/Type /XRef /Size 3 /Index [1 1 1 1] /W [1 1 1]", []byte{1, 9, 0, 1, 12, 0}, &filter.Chain{}, DuplicateObjectNumber},
		{"in-use zero", "/Type /XRef /Size 1 /W [1 1 1]", []byte{1, 9, 0}, &filter.Chain{}, InUseObjectZero},
		{"stream zero", "/Type /XRef /Size 2 /Index [1 1] /W [1 1 1]", []byte{2, 0, 0}, &filter.Chain{}, InvalidEntry},
		{"generation overflow", "/Type /XRef /Size 2 /Index [1 1] /W [1 1 3]", []byte{1, 9, 1, 0, 0}, &filter.Chain{}, InvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pdftest.New("1.5")
			off := b.Stream(1, tt.dict, tt.data)
			x, err := ParseXRefStream(b.Bytes(), off)
			require.NoError(t, err)
			_, err = x.Table(tt.dec)
			var xerr *Error
			require.True(t, errors.As(err, &xerr), "got %v", err)
			assert.Equal(t, tt.code, xerr.Code)
		})
	}

	t.Run("decode error wraps the filter error", func(t *testing.T) {
		b := pdftest.New("1.5")
		off := b.Stream(1, "/Type /XRef /Size 1 /W [1 1 1] /Filter /JPXDecode", []byte{0})
		x, err := ParseXRefStream(b.Bytes(), off)
		require.NoError(t, err)
		_, err = x.Table(&filter.Chain{})
		assert.ErrorIs(t, err, filter.ErrUnsupportedFilter)
	})
}
