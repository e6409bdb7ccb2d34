// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package cache keeps inspection reports in a bbolt file, keyed by path,
// build settings and content digest so that an edited file or a change of
// settings misses.
package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

var bucketReports = []byte("reports")

var ErrClosed = errors.New("cache: closed")

type Cache struct {
	bdb *bbolt.DB
}

// Digest is the content hash reports are keyed by.
func Digest(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// Open opens or creates the cache file at path.
func Open(path string) (*Cache, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	bopt.FreelistType = bbolt.FreelistMapType

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	err = bdb.Update(func(btx *bbolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(bucketReports)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("cache: %w", err)
	}
	logger.Debug("cache opened", "path", path)
	return &Cache{bdb: bdb}, nil
}

// Key identifies a stored report: the file path, a digest of the settings
// the report was built with and the digest of the file content.
type Key struct {
	Path   string
	Config uint64
	Digest uint64
}

// bytes is the path, a NUL byte, then the big-endian config and content
// digests.
func (k Key) bytes() []byte {
	b := make([]byte, 0, len(k.Path)+17)
	b = append(b, k.Path...)
	b = append(b, 0)
	b = binary.BigEndian.AppendUint64(b, k.Config)
	return binary.BigEndian.AppendUint64(b, k.Digest)
}

// Get decodes the value stored under k into v. It reports whether an entry
// was found.
func (c *Cache) Get(k Key, v any) (bool, error) {
	if c == nil || c.bdb == nil {
		return false, ErrClosed
	}
	var found bool
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		raw := btx.Bucket(bucketReports).Get(k.bytes())
		if raw == nil {
			return nil
		}
		found = true
		dec := msgpack.GetDecoder()
		defer msgpack.PutDecoder(dec)
		dec.Reset(bytes.NewReader(raw))
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("cache: failed to decode %s: %w", k.Path, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	logger.Debug("cache lookup", "path", k.Path, "hit", found)
	return found, nil
}

// Put stores v under k, replacing any earlier value.
func (c *Cache) Put(k Key, v any) error {
	if c == nil || c.bdb == nil {
		return ErrClosed
	}
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return fmt.Errorf("cache: failed to encode %T: %w", v, err)
	}
	return c.bdb.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(bucketReports).Put(k.bytes(), buf.Bytes())
	})
}

// Len returns the number of stored reports.
func (c *Cache) Len() (int, error) {
	if c == nil || c.bdb == nil {
		return 0, ErrClosed
	}
	var n int
	err := c.bdb.View(func(btx *bbolt.Tx) error {
		n = btx.Bucket(bucketReports).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *Cache) Close() error {
	if c == nil || c.bdb == nil {
		return nil
	}
	err := c.bdb.Close()
	c.bdb = nil
	return err
}
