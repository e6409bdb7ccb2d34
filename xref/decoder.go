// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import "github.com/sassoftware/viya-pdf-inspect/object"

// Decoder turns the raw data of a stream into its decoded bytes according
// to the filters named in the stream dictionary.
type Decoder interface {
	Decode(d *object.Dictionary, raw []byte) ([]byte, error)
}
