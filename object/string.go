// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"bytes"

	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// Literal is a parenthesized string. Raw holds the bytes between the
// outermost parentheses, escapes unresolved.
type Literal struct {
	direct
	raw  []byte
	span parse.Span
}

func NewLiteral(raw []byte, span parse.Span) Literal {
	return Literal{raw: raw, span: span}
}

func (l Literal) Raw() []byte      { return l.raw }
func (l Literal) Span() parse.Span { return l.span }
func (l Literal) String() string   { return "(" + string(l.raw) + ")" }

// ParseLiteral recognizes a literal string with balanced, unescaped
// parentheses. A missing closing parenthesis is a Failure.
func ParseLiteral(buf []byte, off int) (Literal, error) {
	if off >= len(buf) || buf[off] != '(' {
		return Literal{}, parse.NewRecoverable("Literal", off, parse.NotFound).WithToken("(")
	}
	depth := 0
	for i := off + 1; i < len(buf); i++ {
		switch buf[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return Literal{raw: buf[off+1 : i], span: parse.Span{Start: off, End: i + 1}}, nil
			}
			depth--
		}
	}
	return Literal{}, parse.NewFailure("Literal", len(buf), parse.MissingClosing).WithToken(")")
}

type literalState int

const (
	litOther literalState = iota
	litSolidus
	litCR
	litOctal
)

// Escape resolves backslash escapes (ISO 32000-1 Table 3), octal escapes of
// one to three digits, and end-of-line markers: CR, LF and CRLF all become
// LF, and a backslash before an end-of-line marker removes both.
func (l Literal) Escape() ([]byte, error) {
	if bytes.IndexAny(l.raw, "\\\r") < 0 {
		return l.raw, nil
	}
	out := make([]byte, 0, len(l.raw))
	state := litOther
	var octal, digits byte
	for _, c := range l.raw {
		if state == litOctal {
			if parse.IsOctal(c) && digits < 3 && octal < 32 {
				octal = octal*8 + (c - '0')
				digits++
				continue
			}
			out = append(out, octal)
			state = litOther
			if parse.IsOctal(c) {
				// a fourth digit, or a value that would overflow, stays literal
				out = append(out, c)
				continue
			}
		}
		switch state {
		case litSolidus:
			state = litOther
			switch c {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, c)
			case '\r':
				// \CR and \CRLF vanish
				state = litCR
			case '\n':
			default:
				if parse.IsOctal(c) {
					octal, digits, state = c-'0', 1, litOctal
				} else {
					out = append(out, c)
				}
			}
			continue
		case litCR:
			state = litOther
			if c == '\n' {
				continue
			}
		}
		switch c {
		case '\\':
			state = litSolidus
		case '\r':
			out = append(out, '\n')
			state = litCR
		default:
			out = append(out, c)
		}
	}
	if state == litOctal {
		out = append(out, octal)
	}
	return out, nil
}

// Hexadecimal is a string of hexadecimal digits between angle brackets.
// Raw holds the bytes between the brackets, whitespace and comments
// included.
type Hexadecimal struct {
	direct
	raw  []byte
	span parse.Span
}

func NewHexadecimal(raw []byte, span parse.Span) Hexadecimal {
	return Hexadecimal{raw: raw, span: span}
}

func (h Hexadecimal) Raw() []byte      { return h.raw }
func (h Hexadecimal) Span() parse.Span { return h.span }
func (h Hexadecimal) String() string   { return "<" + string(h.raw) + ">" }

// ParseHexadecimal recognizes a hexadecimal string. A leading "<<" is left
// for the dictionary grammar. Once '<' is matched, anything but hexadecimal
// digits, whitespace and comments before '>' is a Failure.
func ParseHexadecimal(buf []byte, off int) (Hexadecimal, error) {
	if parse.Tag(buf, off, "<<") {
		return Hexadecimal{}, parse.NewRecoverable("Hexadecimal", off, parse.WrongObjectType).WithToken("Dictionary")
	}
	if off >= len(buf) || buf[off] != '<' {
		return Hexadecimal{}, parse.NewRecoverable("Hexadecimal", off, parse.NotFound).WithToken("<")
	}
	i := off + 1
	for {
		i = parse.SkipWhitespaceAndComments(buf, i)
		if i >= len(buf) || !parse.IsHex(buf[i]) {
			break
		}
		for i < len(buf) && parse.IsHex(buf[i]) {
			i++
		}
	}
	if i >= len(buf) || buf[i] != '>' {
		return Hexadecimal{}, parse.NewFailure("Hexadecimal", i, parse.MissingClosing).WithToken(">")
	}
	return Hexadecimal{raw: buf[off+1 : i], span: parse.Span{Start: off, End: i + 1}}, nil
}

// Escape decodes the hexadecimal digits, ignoring whitespace and comments.
// An odd final digit is completed with a zero nibble.
func (h Hexadecimal) Escape() ([]byte, error) {
	out := make([]byte, 0, len(h.raw)/2+1)
	var hi byte
	half := false
	for i := 0; i < len(h.raw); i++ {
		c := h.raw[i]
		if c == '%' {
			i = parse.SkipComment(h.raw, i) - 1
			continue
		}
		if parse.IsWhitespace(c) {
			continue
		}
		v, ok := parse.HexValue(c)
		if !ok {
			return nil, &EscapeError{Object: "Hexadecimal", Code: InvalidHexDigit, Input: h.raw, Byte: c}
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

// ParseString tries Literal, then Hexadecimal.
func ParseString(buf []byte, off int) (String, error) {
	return parse.Alt("String", buf, off,
		str(ParseLiteral),
		str(ParseHexadecimal),
	)
}

func str[T String](p func([]byte, int) (T, error)) parse.Parser[String] {
	return func(buf []byte, off int) (String, error) {
		v, err := p(buf, off)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
