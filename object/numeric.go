// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"math"
	"math/big"
	"strconv"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// Integer is a signed integer with a 128-bit range.
type Integer struct {
	direct
	value parse.Int128
	span  parse.Span
}

// NewInteger returns an Integer holding v.
func NewInteger(v int64, span parse.Span) Integer {
	i := parse.Int128{Neg: v < 0}
	if v < 0 {
		i.Lo = uint64(-(v + 1)) + 1
	} else {
		i.Lo = uint64(v)
	}
	return Integer{value: i, span: span}
}

func (i Integer) Span() parse.Span       { return i.span }
func (i Integer) Int128() parse.Int128   { return i.value }
func (i Integer) Int64() (int64, bool)   { return i.value.Int64() }
func (i Integer) Uint64() (uint64, bool) { return i.value.Uint64() }
func (i Integer) Float64() float64       { return i.value.Float64() }

// Int returns i as an int when it is non-negative and fits.
func (i Integer) Int() (int, bool) {
	u, ok := i.value.Uint64()
	if !ok || u > math.MaxInt {
		return 0, false
	}
	return int(u), true
}

func (i Integer) String() string {
	if v, ok := i.value.Int64(); ok {
		return strconv.FormatInt(v, 10)
	}
	n := new(big.Int).Lsh(new(big.Int).SetUint64(i.value.Hi), 64)
	n.Or(n, new(big.Int).SetUint64(i.value.Lo))
	if i.value.Neg {
		n.Neg(n)
	}
	return n.String()
}

// ParseInteger recognizes an optionally signed run of digits. A value that
// is followed by '.' or that overflows 128 bits is Recoverable so that Real
// may be tried instead.
func ParseInteger(buf []byte, off int) (Integer, error) {
	start := off
	if off < len(buf) && (buf[off] == '+' || buf[off] == '-') {
		off++
	}
	n := parse.Digits(buf, off)
	if n == 0 {
		return Integer{}, parse.NewRecoverable("Integer", start, parse.NotFound).WithToken("digit")
	}
	end := off + n
	if end < len(buf) && buf[end] == '.' {
		return Integer{}, parse.NewRecoverable("Integer", start, parse.WrongObjectType).WithToken("Real")
	}
	v, ok := parse.ParseInt128(buf[start:end])
	if !ok {
		return Integer{}, parse.NewRecoverable("Integer", start, parse.NumericOverflow)
	}
	return Integer{value: v, span: parse.Span{Start: start, End: end}}, nil
}

// Real is a decimal number without an exponent.
type Real struct {
	direct
	value float64
	span  parse.Span
}

func NewReal(v float64, span parse.Span) Real {
	return Real{value: v, span: span}
}

func (r Real) Span() parse.Span { return r.span }
func (r Real) Float64() float64 { return r.value }

func (r Real) String() string {
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

// ParseReal recognizes digits with an optional fraction, or a fraction
// alone, optionally signed. An integer part beyond 64 bits is a Failure.
func ParseReal(buf []byte, off int) (Real, error) {
	start := off
	if off < len(buf) && (buf[off] == '+' || buf[off] == '-') {
		off++
	}
	intDigits := parse.Digits(buf, off)
	off += intDigits
	fracDigits := 0
	if off < len(buf) && buf[off] == '.' {
		fracDigits = parse.Digits(buf, off+1)
		if intDigits > 0 || fracDigits > 0 {
			off += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return Real{}, parse.NewRecoverable("Real", start, parse.NotFound).WithToken("digit or '.'")
	}
	v, ok := parse.ParseDecimal(buf[start:off])
	if !ok {
		return Real{}, parse.NewFailure("Real", start, parse.NumericOverflow)
	}
	return Real{value: v, span: parse.Span{Start: start, End: off}}, nil
}

// ParseNumeric tries Integer, then Real.
func ParseNumeric(buf []byte, off int) (Numeric, error) {
	return parse.Alt("Numeric", buf, off,
		numeric(ParseInteger),
		numeric(ParseReal),
	)
}

func numeric[T Numeric](p func([]byte, int) (T, error)) parse.Parser[Numeric] {
	return func(buf []byte, off int) (Numeric, error) {
		v, err := p(buf, off)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
