// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import "github.com/sassoftware/viya-pdf-inspect/parse"

var directValueParsers []parse.Parser[Value]

func init() {
	// Reference must precede Numeric: "12 0 R" starts with an integer.
	directValueParsers = []parse.Parser[Value]{
		value(ParseName),
		value(ParseArray),
		value(ParseDictionary),
		value(ParseLiteral),
		value(ParseHexadecimal),
		value(ParseBoolean),
		value(ParseNull),
		value(ParseReference),
		value(ParseInteger),
		value(ParseReal),
	}
}

// ParseDirectValue tries each direct object grammar in priority order.
func ParseDirectValue(buf []byte, off int) (Value, error) {
	return parse.Alt("DirectValue", buf, off, directValueParsers...)
}
