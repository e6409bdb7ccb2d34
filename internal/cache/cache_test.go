// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Path    string   `msgpack:"path"`
	Objects int      `msgpack:"objects"`
	Errors  []string `msgpack:"errors"`
}

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDigest(t *testing.T) {
	assert.Equal(t, Digest([]byte("%PDF-1.7")), Digest([]byte("%PDF-1.7")))
	assert.NotEqual(t, Digest([]byte("%PDF-1.7")), Digest([]byte("%PDF-1.4")))
}

func TestPutGet(t *testing.T) {
	c := openTemp(t)
	in := record{Path: "a.pdf", Objects: 3, Errors: []string{"parse: object 4 0"}}
	require.NoError(t, c.Put(Key{Path: "a.pdf", Config: 5, Digest: 42}, in))

	tests := []struct {
		name  string
		key   Key
		found bool
	}{
		{name: "hit", key: Key{Path: "a.pdf", Config: 5, Digest: 42}, found: true},
		{name: "other digest", key: Key{Path: "a.pdf", Config: 5, Digest: 43}, found: false},
		{name: "other config", key: Key{Path: "a.pdf", Config: 6, Digest: 42}, found: false},
		{name: "other path", key: Key{Path: "b.pdf", Config: 5, Digest: 42}, found: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out record
			found, err := c.Get(tt.key, &out)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, in, out)
			}
		})
	}

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPutReplaces(t *testing.T) {
	c := openTemp(t)
	k := Key{Path: "a.pdf", Digest: 1}
	require.NoError(t, c.Put(k, record{Objects: 1}))
	require.NoError(t, c.Put(k, record{Objects: 2}))

	var out record
	found, err := c.Get(k, &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, out.Objects)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	c, err := Open(path)
	require.NoError(t, err)
	k := Key{Path: "a.pdf", Config: 3, Digest: 7}
	require.NoError(t, c.Put(k, record{Path: "a.pdf"}))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()
	var out record
	found, err := c.Get(k, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a.pdf", out.Path)
}

func TestClosed(t *testing.T) {
	c := openTemp(t)
	require.NoError(t, c.Close())

	_, err := c.Get(Key{Path: "a.pdf"}, &record{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Put(Key{Path: "a.pdf"}, record{}), ErrClosed)
	assert.NoError(t, c.Close())
}
