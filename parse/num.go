// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package parse

import (
	"math"
	"math/bits"
)

// ParseUint64 converts a run of decimal digits, reporting false on a non-digit
// or overflow.
func ParseUint64(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var n uint64
	for _, c := range b {
		if !IsDigit(c) {
			return 0, false
		}
		hi, lo := bits.Mul64(n, 10)
		if hi != 0 {
			return 0, false
		}
		lo, carry := bits.Add64(lo, uint64(c-'0'), 0)
		if carry != 0 {
			return 0, false
		}
		n = lo
	}
	return n, true
}

// ParseUint16 is ParseUint64 bounded to 16 bits.
func ParseUint16(b []byte) (uint16, bool) {
	n, ok := ParseUint64(b)
	if !ok || n > math.MaxUint16 {
		return 0, false
	}
	return uint16(n), true
}

// Int128 is a signed integer with a 128-bit two's complement range, held as
// a sign and a magnitude.
type Int128 struct {
	Neg bool
	Hi  uint64
	Lo  uint64
}

// ParseInt128 converts an optionally signed run of decimal digits. It
// reports false when the value does not fit in 128 bits.
func ParseInt128(b []byte) (Int128, bool) {
	var v Int128
	if len(b) > 0 && (b[0] == '-' || b[0] == '+') {
		v.Neg = b[0] == '-'
		b = b[1:]
	}
	if len(b) == 0 {
		return Int128{}, false
	}
	for _, c := range b {
		if !IsDigit(c) {
			return Int128{}, false
		}
		// (hi, lo) * 10 + digit
		hiHi, hiLo := bits.Mul64(v.Hi, 10)
		if hiHi != 0 {
			return Int128{}, false
		}
		loHi, loLo := bits.Mul64(v.Lo, 10)
		hi, carry := bits.Add64(hiLo, loHi, 0)
		if carry != 0 {
			return Int128{}, false
		}
		lo, carry := bits.Add64(loLo, uint64(c-'0'), 0)
		hi, carry = bits.Add64(hi, 0, carry)
		if carry != 0 {
			return Int128{}, false
		}
		v.Hi, v.Lo = hi, lo
	}
	// magnitude limit: 2^127-1 for positive values, 2^127 for negative ones
	const signBit = uint64(1) << 63
	if v.Hi > signBit || (v.Hi == signBit && (!v.Neg || v.Lo != 0)) {
		return Int128{}, false
	}
	if v.Hi == 0 && v.Lo == 0 {
		v.Neg = false
	}
	return v, true
}

// Int64 returns v as an int64 when it fits.
func (v Int128) Int64() (int64, bool) {
	if v.Hi != 0 {
		return 0, false
	}
	if v.Neg {
		if v.Lo > 1<<63 {
			return 0, false
		}
		return -int64(v.Lo), true
	}
	if v.Lo > math.MaxInt64 {
		return 0, false
	}
	return int64(v.Lo), true
}

// Uint64 returns v as a uint64 when it is non-negative and fits.
func (v Int128) Uint64() (uint64, bool) {
	if v.Neg || v.Hi != 0 {
		return 0, false
	}
	return v.Lo, true
}

// Float64 returns the nearest float64 to v.
func (v Int128) Float64() float64 {
	f := float64(v.Hi)*(1<<64) + float64(v.Lo)
	if v.Neg {
		return -f
	}
	return f
}

// ParseDecimal converts an optionally signed decimal number without an
// exponent: digits with an optional fraction, or a fraction alone. The
// integer part must fit in an int64. Fraction digits beyond uint64 precision
// are ignored.
func ParseDecimal(b []byte) (float64, bool) {
	neg := false
	if len(b) > 0 && (b[0] == '-' || b[0] == '+') {
		neg = b[0] == '-'
		b = b[1:]
	}
	var (
		integer        int64
		fraction       uint64
		fractionDigits int
		decimal        bool
		seen           bool
	)
	for _, c := range b {
		switch {
		case c == '.' && !decimal:
			decimal = true
		case IsDigit(c) && decimal:
			seen = true
			hi, lo := bits.Mul64(fraction, 10)
			lo, carry := bits.Add64(lo, uint64(c-'0'), 0)
			if hi != 0 || carry != 0 || fractionDigits >= 19 {
				// ignore the rest of the digits
				continue
			}
			fraction = lo
			fractionDigits++
		case IsDigit(c):
			seen = true
			d := int64(c - '0')
			if integer > (math.MaxInt64-d)/10 {
				return 0, false
			}
			integer = integer*10 + d
		default:
			return 0, false
		}
	}
	if !seen {
		return 0, false
	}
	f := float64(integer) + float64(fraction)/math.Pow10(fractionDigits)
	if neg {
		f = -f
	}
	return f, true
}
