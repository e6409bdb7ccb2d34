// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/sassoftware/viya-pdf-inspect/internal/pdftest"
	"github.com/sassoftware/viya-pdf-inspect/object"
	"github.com/sassoftware/viya-pdf-inspect/parse"
	"github.com/sassoftware/viya-pdf-inspect/tracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(n uint64) object.ID { return object.ID{Number: n} }

func simplePDF() []byte {
	b := pdftest.New("1.7")
	b.Object(1, "<</Type /Catalog /Pages 2 0 R>>")
	b.Object(2, "<</Type /Pages /Kids [] /Count 0>>")
	b.Object(3, "<</Title (Simple)>>")
	x := b.XRef("/Root 1 0 R /Info 3 0 R")
	b.StartXRef(x)
	return b.Bytes()
}

// twoRevisionPDF declares object 2 in both revisions.
func twoRevisionPDF() []byte {
	b := pdftest.New("1.7")
	b.Object(1, "<</Type /Catalog>>")
	b.Object(2, "(first)")
	x1 := b.XRef("/Root 1 0 R")
	b.StartXRef(x1)
	b.Object(2, "(second)")
	b.Object(3, "(third)")
	x2 := b.XRef(fmt.Sprintf("/Root 1 0 R /Prev %d", x1), 2, 3)
	b.StartXRef(x2)
	return b.Bytes()
}

// lengthChainPDF writes n streams whose Length is a reference to an
// integer object written after them.
func lengthChainPDF(n int) []byte {
	b := pdftest.New("1.7")
	b.Object(1, "<</Type /Catalog>>")
	for k := 2; k <= n+1; k++ {
		b.Stream(uint64(k), "", bytes.Repeat([]byte{'x'}, k), fmt.Sprintf("%d 0 R", n+k))
	}
	for k := 2; k <= n+1; k++ {
		b.Object(uint64(n+k), fmt.Sprint(k))
	}
	x := b.XRef("/Root 1 0 R")
	b.StartXRef(x)
	return b.Bytes()
}

func xrefStreamPDF() []byte {
	b := pdftest.New("1.7")
	o1 := b.Object(1, "<</Type /Catalog>>")
	o2 := b.Object(2, "<</A 1>>")
	off := b.Len()
	b.XRefStream(3, "/Size 6 /Root 1 0 R",
		pdftest.Row{0, 0, 65535},
		pdftest.Row{1, uint64(o1), 0},
		pdftest.Row{1, uint64(o2), 0},
		pdftest.Row{1, uint64(off), 0},
		pdftest.Row{2, 9, 0},
		pdftest.Row{7, 1, 2},
	)
	b.StartXRef(off)
	return b.Bytes()
}

func kinds(diags []Diagnostic) map[DiagnosticKind][]object.ID {
	out := make(map[DiagnosticKind][]object.ID)
	for _, d := range diags {
		out[d.Kind] = append(out[d.Kind], d.ID)
	}
	return out
}

func literal(t *testing.T, doc *Document, n uint64) string {
	t.Helper()
	obj, ok := doc.Object(id(n))
	require.True(t, ok, "object %d not parsed", n)
	l, ok := obj.Value.(object.Literal)
	require.True(t, ok, "object %d is %T", n, obj.Value)
	return string(l.Raw())
}

func TestBuild_Simple(t *testing.T) {
	doc, err := Build(simplePDF(), nil)
	require.NoError(t, err)

	assert.NoError(t, doc.Status())
	assert.Empty(t, doc.Diagnostics())
	assert.Equal(t, []object.ID{id(1), id(2), id(3)}, doc.Objects().IDs())
	assert.Equal(t, "# In-use Objects: 3, # Overridden: 0, # Errors: 0", doc.Summary())
	assert.Equal(t, 1, doc.PreTable().Len())
	require.NotNil(t, doc.Trailer().Root)
	assert.Equal(t, id(1), doc.Trailer().Root.ID)
}

func TestBuild_MergeOrder(t *testing.T) {
	tests := []struct {
		name   string
		order  string
		object string
	}{
		{name: "oldest wins by default", order: "", object: "first"},
		{name: "oldest wins", order: "oldest-wins", object: "first"},
		{name: "newest wins", order: "newest-wins", object: "second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.MergeOrder = tt.order
			doc, err := Build(twoRevisionPDF(), cfg)
			require.NoError(t, err)

			assert.NoError(t, doc.Status())
			assert.Equal(t, 2, doc.PreTable().Len())
			assert.Equal(t, []object.ID{id(1), id(2), id(3)}, doc.Objects().IDs())
			assert.Equal(t, tt.object, literal(t, doc, 2))
			assert.Equal(t, "third", literal(t, doc, 3))
			assert.Equal(t, "# In-use Objects: 3, # Overridden: 1, # Errors: 0", doc.Summary())
		})
	}
}

func TestBuild_LengthChain(t *testing.T) {
	const n = 6
	tracer.Reset()
	doc, err := Build(lengthChainPDF(n), nil)
	require.NoError(t, err)

	assert.NoError(t, doc.Status())
	assert.Len(t, doc.Objects(), 2*n+1)
	for k := 2; k <= n+1; k++ {
		obj, ok := doc.Object(id(uint64(k)))
		require.True(t, ok)
		s, ok := obj.Stream()
		require.True(t, ok)
		assert.Len(t, s.Data, k)
	}

	// the first pass parses the catalog and the lengths, which follow the
	// streams in the file; the second parses every stream
	var passes []string
	for _, m := range tracer.Messages() {
		if strings.HasPrefix(m, "resolve: pass") {
			passes = append(passes, m)
		}
	}
	assert.Equal(t, []string{
		fmt.Sprintf("resolve: pass 1 parsed %d of %d objects", n+1, 2*n+1),
		fmt.Sprintf("resolve: pass 2 parsed %d of %d objects", n, n),
	}, passes)
}

func TestBuild_UnresolvableLength(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *pdftest.Builder)
		want  []object.ID
	}{
		{
			name: "missing object",
			build: func(b *pdftest.Builder) {
				b.Stream(2, "", []byte("abc"), "99 0 R")
			},
			want: []object.ID{id(2)},
		},
		{
			name: "cycle",
			build: func(b *pdftest.Builder) {
				b.Stream(2, "", []byte("abc"), "3 0 R")
				b.Stream(3, "", []byte("abc"), "2 0 R")
			},
			want: []object.ID{id(2), id(3)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pdftest.New("1.7")
			b.Object(1, "<</Type /Catalog>>")
			tt.build(b)
			x := b.XRef("/Root 1 0 R")
			b.StartXRef(x)

			doc, err := Build(b.Bytes(), nil)
			require.NoError(t, err)
			assert.Error(t, doc.Status())
			assert.ElementsMatch(t, tt.want, kinds(doc.Diagnostics())[Parse])
			_, ok := doc.Object(id(1))
			assert.True(t, ok)
		})
	}
}

func TestBuild_OutOfBounds(t *testing.T) {
	b := pdftest.New("1.7")
	o1 := b.Object(1, "<</Type /Catalog>>")
	x := b.Raw(fmt.Sprintf("xref\n0 4\n0000000000 65535 f\r\n%010d 00000 n\r\n9999999999 00000 n\r\n0000000000 00000 n\r\ntrailer\n<</Size 4 /Root 1 0 R>>\n", o1))
	b.StartXRef(x)

	doc, err := Build(b.Bytes(), nil)
	require.NoError(t, err)

	got := kinds(doc.Diagnostics())
	assert.ElementsMatch(t, []object.ID{id(2), id(3)}, got[OutOfBounds])
	assert.Len(t, doc.Diagnostics(), 2)
	assert.Equal(t, []object.ID{id(1)}, doc.Objects().IDs())

	var diag Diagnostic
	require.ErrorAs(t, doc.Status(), &diag)
	assert.Equal(t, OutOfBounds, diag.Kind)
}

func TestBuild_IDMismatch(t *testing.T) {
	b := pdftest.New("1.7")
	o1 := b.Object(1, "<</Type /Catalog>>")
	x := b.Raw(fmt.Sprintf("xref\n0 3\n0000000000 65535 f\r\n%010d 00000 n\r\n%010d 00000 n\r\ntrailer\n<</Size 3 /Root 1 0 R>>\n", o1, o1))
	b.StartXRef(x)

	doc, err := Build(b.Bytes(), nil)
	require.NoError(t, err)

	assert.Equal(t, []object.ID{id(2)}, kinds(doc.Diagnostics())[IDMismatch])
	obj, ok := doc.Object(id(2))
	require.True(t, ok, "mismatched object is kept")
	assert.Equal(t, id(1), obj.ID)
}

func TestBuild_DuplicateKey(t *testing.T) {
	b := pdftest.New("1.7")
	b.Object(1, "<</Type /Catalog /Extra <</A 1/A 2>>>>")
	x := b.XRef("/Root 1 0 R /Root 1 0 R")
	b.StartXRef(x)

	doc, err := Build(b.Bytes(), nil)
	require.NoError(t, err)

	dups := kinds(doc.Diagnostics())[DuplicateKey]
	assert.ElementsMatch(t, []object.ID{id(1), {}}, dups)

	catalog, ok := doc.Object(id(1))
	require.True(t, ok)
	extra, ok, err := catalog.Value.(*object.Dictionary).Dict("Extra")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, extra.Len())
	v, ok := extra.Get("A")
	require.True(t, ok)
	n, _ := v.(object.Integer).Int()
	assert.Equal(t, 2, n)

	var dk object.DuplicateKey
	require.ErrorAs(t, doc.Status(), &dk)
	assert.Equal(t, "A", dk.Key)
}

func TestBuild_XRefStream(t *testing.T) {
	doc, err := Build(xrefStreamPDF(), nil)
	require.NoError(t, err)

	assert.Equal(t, []object.ID{id(1), id(2), id(3)}, doc.Objects().IDs())
	assert.Len(t, doc.Table().Compressed(), 1)
	assert.Equal(t, map[DiagnosticKind][]object.ID{NullReference: {id(5)}}, kinds(doc.Diagnostics()))
	assert.Contains(t, doc.Status().Error(), "unknown entry type 7")
}

func TestBuild_BrokenPrev(t *testing.T) {
	b := pdftest.New("1.7")
	b.Object(1, "<</Type /Catalog>>")
	x := b.XRef("/Root 1 0 R /Prev 999999")
	b.StartXRef(x)

	doc, err := Build(b.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PreTable().Len())
	diags := doc.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, Prev, diags[0].Kind)
	assert.Equal(t, uint64(999999), diags[0].Offset)
}

func TestBuild_Fatal(t *testing.T) {
	tests := []struct {
		name  string
		buf   []byte
		stage Stage
	}{
		{name: "empty", buf: nil, stage: StageStartXRef},
		{name: "no footer", buf: []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF\n"), stage: StageStartXRef},
		{name: "footer to garbage", buf: []byte("%PDF-1.7\ngarbage\nstartxref\n9\n%%EOF\n"), stage: StagePreTable},
		{name: "footer past end", buf: []byte("%PDF-1.7\nstartxref\n4000\n%%EOF\n"), stage: StagePreTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Build(tt.buf, nil)
			assert.Nil(t, doc)
			var fe *FatalError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, tt.stage, fe.Stage)
		})
	}
}

func TestOpen(t *testing.T) {
	path := writePDF(t, "simple.pdf", simplePDF())
	doc, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)

	_, err = Open(path+".missing", nil)
	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageRead, fe.Stage)
	assert.Equal(t, path+".missing", fe.Path)
}

func TestJoinSpans(t *testing.T) {
	buf := twoRevisionPDF()
	doc, err := Build(buf, nil)
	require.NoError(t, err)

	parsed, notParsed := doc.JoinSpans()
	require.NotEmpty(t, parsed)
	require.NotEmpty(t, notParsed)

	// the header comment is never parsed
	assert.Equal(t, 0, notParsed[0].Start)

	all := append(append([]parse.Span(nil), parsed...), notParsed...)
	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	end := 0
	for _, s := range all {
		assert.Equal(t, end, s.Start, "spans must tile the file")
		assert.Less(t, s.Start, s.End)
		end = s.End
	}
	assert.Equal(t, len(buf), end)

	for i := 1; i < len(parsed); i++ {
		assert.Less(t, parsed[i-1].End, parsed[i].Start, "parsed spans are coalesced")
	}
}

func TestDiagnostic_Error(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "object",
			diag: Diagnostic{Kind: Parse, ID: object.ID{Number: 4, Generation: 1}, Offset: 120, Err: errors.New("boom")},
			want: "parse: object 4 1 at offset 120: boom",
		},
		{
			name: "trailer",
			diag: Diagnostic{Kind: DuplicateKey, Offset: 300, Err: errors.New("dup")},
			want: "duplicate-key at offset 300: dup",
		},
		{
			name: "increment",
			diag: Diagnostic{Kind: Prev, Offset: 7, Err: errors.New("gone")},
			want: "prev: gone",
		},
		{
			name: "null reference",
			diag: Diagnostic{Kind: NullReference, ID: id(5), Err: errors.New("unknown entry type 7")},
			want: "null-reference: object 5: unknown entry type 7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.diag, tt.want)
		})
	}
	assert.Equal(t, "DiagnosticKind(42)", DiagnosticKind(42).String())
}
