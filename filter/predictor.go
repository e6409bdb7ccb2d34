// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/object"
)

// PNG row filter types.
const (
	pngNone = iota
	pngSub
	pngUp
	pngAverage
	pngPaeth
)

// predict undoes the Predictor named in parms. Predictor 1 is identity,
// 2 is TIFF horizontal differencing and 10 to 15 are PNG row filters.
func predict(data []byte, parms *object.Dictionary) ([]byte, error) {
	predictor, err := signedParm(parms, "Predictor", 1)
	if err != nil {
		return nil, err
	}
	if predictor == 1 {
		return data, nil
	}
	colors, err := intParm(parms, "Colors", 1)
	if err != nil {
		return nil, err
	}
	bpc, err := intParm(parms, "BitsPerComponent", 8)
	if err != nil {
		return nil, err
	}
	columns, err := intParm(parms, "Columns", 1)
	if err != nil {
		return nil, err
	}
	if colors < 1 || columns < 1 {
		return nil, fmt.Errorf("%w: Colors %d Columns %d", ErrParms, colors, columns)
	}
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("%w: BitsPerComponent %d", ErrParms, bpc)
	}
	bpp := (colors*bpc + 7) / 8
	rowLen := (colors*bpc*columns + 7) / 8

	switch {
	case predictor == 2:
		if bpc != 8 {
			return nil, fmt.Errorf("%w: TIFF predictor with %d bits per component", ErrUnsupportedFilter, bpc)
		}
		return tiffPredict(data, rowLen, colors), nil
	case predictor >= 10 && predictor <= 15:
		return pngPredict(data, rowLen, bpp)
	}
	return nil, fmt.Errorf("%w: Predictor %d", ErrParms, predictor)
}

func tiffPredict(data []byte, rowLen, colors int) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	for row := 0; row < len(out); row += rowLen {
		end := min(row+rowLen, len(out))
		for i := row + colors; i < end; i++ {
			out[i] += out[i-colors]
		}
	}
	return out
}

// pngPredict reverses per-row PNG filters. Each row starts with its filter
// type byte; a short final row is decoded as far as it goes.
func pngPredict(data []byte, rowLen, bpp int) ([]byte, error) {
	out := make([]byte, 0, len(data)/(rowLen+1)*rowLen+rowLen)
	prev := make([]byte, rowLen)
	for pos := 0; pos < len(data); pos += rowLen + 1 {
		tag := data[pos]
		src := data[pos+1 : min(pos+1+rowLen, len(data))]
		cur := make([]byte, len(src))
		for i, x := range src {
			var a, c byte
			if i >= bpp {
				a = cur[i-bpp]
				c = prev[i-bpp]
			}
			b := prev[i]
			switch tag {
			case pngNone:
				cur[i] = x
			case pngSub:
				cur[i] = x + a
			case pngUp:
				cur[i] = x + b
			case pngAverage:
				cur[i] = x + byte((int(a)+int(b))/2)
			case pngPaeth:
				cur[i] = x + paeth(a, b, c)
			default:
				return nil, fmt.Errorf("unknown PNG filter type %d at %d", tag, pos)
			}
		}
		out = append(out, cur...)
		copy(prev, cur)
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
