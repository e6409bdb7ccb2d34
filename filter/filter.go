// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package filter decodes stream data through the filters named by a stream
// dictionary (ISO 32000-1 §7.4).
package filter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/object"
)

// DefaultMaxDecodedSize bounds the output of a decode chain.
const DefaultMaxDecodedSize = 1 << 30

var (
	ErrUnsupportedFilter = errors.New("unsupported filter")
	ErrDecodedTooLarge   = errors.New("decoded data exceeds size limit")
	ErrParms             = errors.New("invalid decode parameters")
)

// Error reports a failure in one filter of a chain.
type Error struct {
	Filter string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Filter, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Full filter names, and the abbreviations allowed in inline images.
const (
	ASCIIHexDecode  = "ASCIIHexDecode"
	ASCII85Decode   = "ASCII85Decode"
	LZWDecode       = "LZWDecode"
	FlateDecode     = "FlateDecode"
	RunLengthDecode = "RunLengthDecode"
	CCITTFaxDecode  = "CCITTFaxDecode"
	JBIG2Decode     = "JBIG2Decode"
	DCTDecode       = "DCTDecode"
	JPXDecode       = "JPXDecode"
	Crypt           = "Crypt"
)

var abbreviations = map[string]string{
	"AHx": ASCIIHexDecode,
	"A85": ASCII85Decode,
	"LZW": LZWDecode,
	"Fl":  FlateDecode,
	"RL":  RunLengthDecode,
	"CCF": CCITTFaxDecode,
	"DCT": DCTDecode,
}

// Chain decodes stream data. The zero value uses DefaultMaxDecodedSize and
// does not resolve references in the stream dictionary.
type Chain struct {
	MaxDecodedSize int64
	// Lookup resolves indirect Filter and DecodeParms entries.
	Lookup object.Lookup
}

// NewChain returns a Chain bounded to maxDecodedSize bytes of output.
func NewChain(maxDecodedSize int64, lookup object.Lookup) *Chain {
	return &Chain{MaxDecodedSize: maxDecodedSize, Lookup: lookup}
}

func (c *Chain) limit() int64 {
	if c == nil || c.MaxDecodedSize <= 0 {
		return DefaultMaxDecodedSize
	}
	return c.MaxDecodedSize
}

// step is one filter of a chain with its parameters.
type step struct {
	name  string
	parms *object.Dictionary
}

// Decode applies the filters listed in d to raw. When d has an F entry the
// FFilter and FDecodeParms entries are used instead of Filter and
// DecodeParms.
func (c *Chain) Decode(d *object.Dictionary, raw []byte) ([]byte, error) {
	filterKey, parmsKey := object.KeyFilter, object.KeyDecodeParms
	if d.Has(object.KeyF) {
		filterKey, parmsKey = object.KeyFFilter, object.KeyFDecodeParms
	}
	var lookup object.Lookup
	if c != nil {
		lookup = c.Lookup
	}
	steps, err := chainSteps(d, filterKey, parmsKey, lookup)
	if err != nil {
		return nil, err
	}
	data := raw
	for _, s := range steps {
		logger.Debug(fmt.Sprintf("filter: %s (in=%d bytes)", s.name, len(data)), true)
		data, err = c.apply(s, data)
		if err != nil {
			return nil, &Error{Filter: s.name, Err: err}
		}
	}
	return data, nil
}

func (c *Chain) apply(s step, data []byte) ([]byte, error) {
	limit := c.limit()
	var (
		out []byte
		err error
	)
	switch s.name {
	case ASCIIHexDecode:
		out, err = decodeASCIIHex(data)
	case ASCII85Decode:
		out, err = readLimited(newASCII85Reader(data), limit)
	case LZWDecode:
		out, err = decodeLZW(data, s.parms, limit)
	case FlateDecode:
		out, err = decodeFlate(data, s.parms, limit)
	case RunLengthDecode:
		out, err = decodeRunLength(data, limit)
	case CCITTFaxDecode:
		out, err = decodeCCITT(data, s.parms, limit)
	case JBIG2Decode, DCTDecode, JPXDecode, Crypt:
		return nil, ErrUnsupportedFilter
	default:
		return nil, fmt.Errorf("%w: /%s", ErrUnsupportedFilter, s.name)
	}
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, ErrDecodedTooLarge
	}
	return out, nil
}

// chainSteps pairs filter names with their parameter dictionaries. Filter
// may be a name or an array of names; DecodeParms may be absent, null, a
// dictionary, or an array of dictionaries and nulls of the same length as
// the filter array.
func chainSteps(d *object.Dictionary, filterKey, parmsKey string, lookup object.Lookup) ([]step, error) {
	fv, ok := d.Get(filterKey)
	if !ok {
		return nil, nil
	}
	fv, err := object.Resolve(fv, lookup)
	if err != nil {
		return nil, err
	}
	var pv object.Value
	if v, ok := d.Get(parmsKey); ok {
		if pv, err = object.Resolve(v, lookup); err != nil {
			return nil, err
		}
	}

	switch f := fv.(type) {
	case object.Name:
		parms, err := parmsDict(pv, lookup)
		if err != nil {
			return nil, err
		}
		return []step{{name: canonical(f), parms: parms}}, nil
	case *object.Array:
		steps := make([]step, f.Len())
		for i, e := range f.Elements {
			e, err := object.Resolve(e, lookup)
			if err != nil {
				return nil, err
			}
			n, ok := e.(object.Name)
			if !ok {
				return nil, fmt.Errorf("%w: /%s element %d is %s, not a name", ErrParms, filterKey, i, e)
			}
			steps[i].name = canonical(n)
		}
		switch p := pv.(type) {
		case nil, object.Null:
		case *object.Array:
			if p.Len() != len(steps) {
				return nil, fmt.Errorf("%w: /%s has %d entries for %d filters", ErrParms, parmsKey, p.Len(), len(steps))
			}
			for i, e := range p.Elements {
				if steps[i].parms, err = parmsDict(e, lookup); err != nil {
					return nil, err
				}
			}
		case *object.Dictionary:
			if len(steps) != 1 {
				return nil, fmt.Errorf("%w: single /%s for %d filters", ErrParms, parmsKey, len(steps))
			}
			steps[0].parms = p
		default:
			return nil, fmt.Errorf("%w: /%s is %s", ErrParms, parmsKey, pv)
		}
		return steps, nil
	default:
		return nil, fmt.Errorf("%w: /%s is %s", ErrParms, filterKey, fv)
	}
}

func parmsDict(v object.Value, lookup object.Lookup) (*object.Dictionary, error) {
	if v == nil {
		return nil, nil
	}
	v, err := object.Resolve(v, lookup)
	if err != nil {
		return nil, err
	}
	switch p := v.(type) {
	case object.Null:
		return nil, nil
	case *object.Dictionary:
		return p, nil
	}
	return nil, fmt.Errorf("%w: expected a dictionary, found %s", ErrParms, v)
}

func canonical(n object.Name) string {
	k := n.Key()
	if full, ok := abbreviations[k]; ok {
		return full
	}
	return k
}

// intParm returns the integer parameter key of parms, or def when it is
// absent.
func intParm(parms *object.Dictionary, key string, def int) (int, error) {
	if parms == nil {
		return def, nil
	}
	v, ok, err := parms.Int(key)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParms, err)
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// signedParm is intParm for parameters that may be negative, such as the
// CCITT K.
func signedParm(parms *object.Dictionary, key string, def int) (int, error) {
	if parms == nil {
		return def, nil
	}
	v, ok := parms.Get(key)
	if !ok {
		return def, nil
	}
	i, ok := v.(object.Integer)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, not an integer", ErrParms, key, v)
	}
	n, ok := i.Int64()
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s %s out of range", ErrParms, key, i)
	}
	return int(n), nil
}

// boolParm returns the boolean parameter key of parms, false when absent.
func boolParm(parms *object.Dictionary, key string) (bool, error) {
	if parms == nil {
		return false, nil
	}
	v, ok := parms.Get(key)
	if !ok {
		return false, nil
	}
	b, ok := v.(object.Boolean)
	if !ok {
		return false, fmt.Errorf("%w: %s is %T, not a boolean", ErrParms, key, v)
	}
	return b.Bool(), nil
}

// readLimited reads r to the end, failing once more than limit bytes are
// produced. On a read error the bytes read so far are returned with it.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if n > limit {
		return nil, ErrDecodedTooLarge
	}
	return buf.Bytes(), err
}
