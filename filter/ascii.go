// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"bytes"
	"encoding/ascii85"
	"fmt"
	"io"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// decodeASCIIHex decodes pairs of hex digits up to the '>' end marker.
// Whitespace is ignored and an odd final digit is padded with zero.
func decodeASCIIHex(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var (
		hi   byte
		half bool
	)
	for i, c := range data {
		if parse.IsWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, ok := parse.HexValue(c)
		if !ok {
			return nil, fmt.Errorf("invalid hex digit %q at %d", c, i)
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return out, nil
}

// alphaReader yields only the characters of an ASCII85 stream that belong
// to the encoding: whitespace is dropped, a leading "<~" is skipped and
// reading stops at the "~>" end marker.
type alphaReader struct {
	data []byte
	pos  int
	done bool
}

func newASCII85Reader(data []byte) io.Reader {
	data = bytes.TrimLeft(data, "\x00\t\n\f\r ")
	data = bytes.TrimPrefix(data, []byte("<~"))
	return ascii85.NewDecoder(&alphaReader{data: data})
}

func (a *alphaReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && !a.done && a.pos < len(a.data) {
		c := a.data[a.pos]
		a.pos++
		switch {
		case parse.IsWhitespace(c):
		case c == '~':
			a.done = true
		default:
			p[n] = c
			n++
		}
	}
	if n == 0 && (a.done || a.pos >= len(a.data)) {
		return 0, io.EOF
	}
	return n, nil
}
