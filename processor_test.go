// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package inspect

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sassoftware/viya-pdf-inspect/internal/pdftest"
	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePDF(t *testing.T, name string, buf []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

// duplicateKeyPDF builds cleanly but carries one diagnostic.
func duplicateKeyPDF() []byte {
	b := pdftest.New("1.7")
	b.Object(1, "<</Type /Catalog /A 1 /A 2>>")
	x := b.XRef("/Root 1 0 R")
	b.StartXRef(x)
	return b.Bytes()
}

// create a Processor
func newTestProcessor(t *testing.T, mode ParsingMode) *processor {
	cfg := NewDefaultConfig()
	cfg.ParsingMode = mode
	cfg.WorkerTimeout = 5 * time.Second
	p := NewProcessor(cfg)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestNewProcessor_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MaxConcurrentPDFs = 0
	assert.Panics(t, func() { NewProcessor(cfg) })
}

func TestLevelFilter(t *testing.T) {
	var levels []logger.LogLevel
	f := func(level logger.LogLevel, msg string, keyvals ...interface{}) {
		levels = append(levels, level)
	}

	quiet := levelFilter(f, false)
	quiet(logger.DebugLevel, "dropped")
	quiet(logger.ErrorLevel, "kept")
	assert.Equal(t, []logger.LogLevel{logger.ErrorLevel}, levels)

	levels = nil
	verbose := levelFilter(f, true)
	verbose(logger.DebugLevel, "kept")
	assert.Equal(t, []logger.LogLevel{logger.DebugLevel}, levels)
}

func TestStrictInspector_Accept(t *testing.T) {
	s := &StrictInspector{}
	assert.NoError(t, s.Accept(&Report{}))
	err := s.Accept(&Report{Diagnostics: []Finding{{Kind: "parse", Message: "boom"}}})
	assert.ErrorContains(t, err, "strict mode: 1 diagnostics, first: boom")
}

func TestBestEffortInspector_Accept(t *testing.T) {
	b := &BestEffortInspector{}
	assert.NoError(t, b.Accept(&Report{}))
	assert.NoError(t, b.Accept(&Report{Diagnostics: []Finding{{Kind: "parse"}}}))
}

func TestProcessor_Inspect(t *testing.T) {
	clean := writePDF(t, "clean.pdf", simplePDF())
	dirty := writePDF(t, "dirty.pdf", duplicateKeyPDF())

	tests := []struct {
		name      string
		mode      ParsingMode
		path      string
		shouldErr bool
		findings  int
	}{
		{name: "best-effort clean", mode: BestEffort, path: clean},
		{name: "strict clean", mode: Strict, path: clean},
		{name: "best-effort with diagnostics", mode: BestEffort, path: dirty, findings: 1},
		{name: "strict with diagnostics", mode: Strict, path: dirty, findings: 1, shouldErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t, tt.mode)
			r, err := p.Inspect(context.Background(), tt.path)
			require.NotNil(t, r)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.Equal(t, err, r.Err)
				assert.NotEmpty(t, r.Error)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.path, r.Path)
			assert.Len(t, r.Diagnostics, tt.findings)
			assert.Equal(t, "1.7", r.Version)
			assert.Equal(t, 1, r.Increments)
			assert.NotZero(t, r.Digest)
			require.NotNil(t, r.Metadata)
		})
	}
}

func TestProcessor_Inspect_Fatal(t *testing.T) {
	p := newTestProcessor(t, BestEffort)

	_, err := p.Inspect(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageRead, fe.Stage)

	junk := writePDF(t, "junk.pdf", []byte("this is not a pdf file at all"))
	r, err := p.Inspect(context.Background(), junk)
	assert.Nil(t, r)
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageStartXRef, fe.Stage)
	assert.Equal(t, junk, fe.Path)
}

func TestProcessor_Inspect_Cancelled(t *testing.T) {
	p := newTestProcessor(t, BestEffort)
	path := writePDF(t, "clean.pdf", simplePDF())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Inspect(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_InspectAll(t *testing.T) {
	paths := []string{
		writePDF(t, "a.pdf", simplePDF()),
		writePDF(t, "b.pdf", twoRevisionPDF()),
		filepath.Join(t.TempDir(), "missing.pdf"),
		writePDF(t, "c.pdf", duplicateKeyPDF()),
	}

	t.Run("best-effort", func(t *testing.T) {
		p := newTestProcessor(t, BestEffort)
		reports, err := p.InspectAll(context.Background(), paths)
		require.Error(t, err)
		require.Len(t, reports, len(paths))
		for i, r := range reports {
			require.NotNil(t, r)
			assert.Equal(t, paths[i], r.Path)
		}
		assert.NoError(t, reports[0].Err)
		assert.Equal(t, 2, reports[1].Increments)
		assert.Equal(t, 1, reports[1].Overridden)
		assert.Error(t, reports[2].Err)
		assert.NoError(t, reports[3].Err)
		assert.Len(t, reports[3].Diagnostics, 1)
	})

	t.Run("strict", func(t *testing.T) {
		p := newTestProcessor(t, Strict)
		reports, err := p.InspectAll(context.Background(), paths)
		require.Error(t, err)
		assert.NoError(t, reports[0].Err)
		assert.Error(t, reports[2].Err)
		assert.Error(t, reports[3].Err)
	})

	t.Run("empty", func(t *testing.T) {
		p := newTestProcessor(t, BestEffort)
		reports, err := p.InspectAll(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, reports)
	})
}

func TestProcessor_Cache(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CachePath = filepath.Join(t.TempDir(), "reports.db")
	p := NewProcessor(cfg)
	defer p.Close()

	path := writePDF(t, "a.pdf", twoRevisionPDF())
	first, err := p.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := p.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Metadata, second.Metadata)

	// a changed file misses the cache
	require.NoError(t, os.WriteFile(path, simplePDF(), 0o644))
	third, err := p.Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 3, third.Objects)
}

func TestProcessor_CacheSettings(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "reports.db")
	path := writePDF(t, "a.pdf", twoRevisionPDF())

	inspectWith := func(mutate func(*Config)) *Report {
		t.Helper()
		cfg := NewDefaultConfig()
		cfg.CachePath = cachePath
		mutate(cfg)
		p := NewProcessor(cfg)
		defer p.Close()
		r, err := p.Inspect(context.Background(), path)
		require.NoError(t, err)
		return r
	}

	first := inspectWith(func(*Config) {})
	assert.False(t, first.Cached)

	tests := []struct {
		name   string
		mutate func(*Config)
		cached bool
	}{
		{name: "same settings", mutate: func(*Config) {}, cached: true},
		{name: "other merge order", mutate: func(c *Config) { c.MergeOrder = "newest-wins" }, cached: false},
		{name: "other decode limit", mutate: func(c *Config) { c.MaxDecodedSize = 4 }, cached: false},
		{name: "parsing mode does not matter", mutate: func(c *Config) { c.ParsingMode = Strict }, cached: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := inspectWith(tt.mutate)
			assert.Equal(t, tt.cached, r.Cached)
		})
	}
}

func TestConfig_Fingerprint(t *testing.T) {
	a := NewDefaultConfig()
	b := NewDefaultConfig()
	assert.Equal(t, a.fingerprint(), b.fingerprint())

	b.MergeOrder = ""
	assert.Equal(t, a.fingerprint(), b.fingerprint(), "empty merge order is oldest-wins")

	b.MaxDecodedSize = 1024
	assert.NotEqual(t, a.fingerprint(), b.fingerprint())
}

func TestProcessor_Metadata(t *testing.T) {
	p := newTestProcessor(t, BestEffort)
	path := writePDF(t, "meta.pdf", metadataPDF(""))

	var buf bytes.Buffer
	require.NoError(t, p.Metadata(context.Background(), path, &buf))

	var md Metadata
	require.NoError(t, json.Unmarshal(buf.Bytes(), &md))
	assert.Equal(t, "XMP Title", md.Title)
	assert.Equal(t, 3, md.NPages)
}

func TestReport_WriteJSON(t *testing.T) {
	doc, err := Build(duplicateKeyPDF(), nil)
	require.NoError(t, err)
	r := NewReport(doc, 99)

	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, float64(99), got["digest"])
	assert.Equal(t, "# In-use Objects: 1, # Overridden: 0, # Errors: 1", got["summary"])
	diags, ok := got["diagnostics"].([]any)
	require.True(t, ok)
	require.Len(t, diags, 1)
	assert.Equal(t, "duplicate-key", diags[0].(map[string]any)["kind"])
	assert.Equal(t, "1 0", diags[0].(map[string]any)["object"])

	buf.Reset()
	require.NoError(t, WriteReports(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())
}
