// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package filter

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
	tifflzw "golang.org/x/image/tiff/lzw"

	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/object"
)

// decodeFlate inflates zlib data. A stream truncated before its checksum
// still yields the bytes decoded so far.
func decodeFlate(data []byte, parms *object.Dictionary, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := readLimited(zr, limit)
	if errors.Is(err, io.ErrUnexpectedEOF) && len(out) > 0 {
		logger.Debug(fmt.Sprintf("filter: FlateDecode truncated after %d bytes", len(out)), true)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return predict(out, parms)
}

// decodeLZW expands LZW data. EarlyChange 1, the default, is the variant
// TIFF uses; EarlyChange 0 is the plain variant of compress/lzw.
func decodeLZW(data []byte, parms *object.Dictionary, limit int64) ([]byte, error) {
	early, err := intParm(parms, "EarlyChange", 1)
	if err != nil {
		return nil, err
	}
	var r io.ReadCloser
	switch early {
	case 0:
		r = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	case 1:
		r = tifflzw.NewReader(bytes.NewReader(data), tifflzw.MSB, 8)
	default:
		return nil, fmt.Errorf("%w: EarlyChange %d", ErrParms, early)
	}
	defer r.Close()
	out, err := readLimited(r, limit)
	if err != nil {
		return nil, err
	}
	return predict(out, parms)
}

// decodeRunLength expands run-length encoded data up to the 128 end marker.
func decodeRunLength(data []byte, limit int64) ([]byte, error) {
	var out []byte
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out, nil
		case n < 128:
			if i+n+1 > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes at %d exceeds input", n+1, i-1)
			}
			out = append(out, data[i:i+n+1]...)
			i += n + 1
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("repeat run at %d has no byte", i-1)
			}
			out = append(out, bytes.Repeat(data[i:i+1], 257-n)...)
			i++
		}
		if int64(len(out)) > limit {
			return nil, ErrDecodedTooLarge
		}
	}
	return out, nil
}

// decodeCCITT expands Group 3 or Group 4 fax data to one bit per pixel with
// byte-aligned rows. K < 0 selects Group 4. Rows 0 reads until the data or
// an end-of-block code runs out.
func decodeCCITT(data []byte, parms *object.Dictionary, limit int64) ([]byte, error) {
	k, err := signedParm(parms, "K", 0)
	if err != nil {
		return nil, err
	}
	columns, err := intParm(parms, "Columns", 1728)
	if err != nil {
		return nil, err
	}
	rows, err := intParm(parms, "Rows", 0)
	if err != nil {
		return nil, err
	}
	if columns <= 0 || rows < 0 {
		return nil, fmt.Errorf("%w: Columns %d Rows %d", ErrParms, columns, rows)
	}
	if rows == 0 {
		rows = ccitt.AutoDetectHeight
	}
	blackIs1, err := boolParm(parms, "BlackIs1")
	if err != nil {
		return nil, err
	}
	align, err := boolParm(parms, "EncodedByteAlign")
	if err != nil {
		return nil, err
	}

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}
	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows,
		&ccitt.Options{Align: align, Invert: blackIs1})
	return readLimited(r, limit)
}
