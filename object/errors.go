// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package object

import (
	"errors"
	"fmt"
)

var (
	ErrCyclicReference   = errors.New("cyclic reference")
	ErrMissingObject     = errors.New("referenced object not found")
	ErrReferenceToStream = errors.New("reference to a stream where a direct value is required")
)

// EscapeCode identifies why a name or string could not be escaped.
type EscapeCode int

const (
	TrailingNumberSign EscapeCode = iota
	TrailingHexDigit
	InvalidHexDigit
	IncompleteHexCode
)

func (c EscapeCode) String() string {
	switch c {
	case TrailingNumberSign:
		return "trailing number sign"
	case TrailingHexDigit:
		return "trailing hexadecimal digit"
	case InvalidHexDigit:
		return "invalid hexadecimal digit"
	case IncompleteHexCode:
		return "incomplete hexadecimal code"
	}
	return fmt.Sprintf("escape(%d)", int(c))
}

type EscapeError struct {
	Object string
	Code   EscapeCode
	Input  []byte
	Byte   byte
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("%s: %s %q in %q", e.Object, e.Code, e.Byte, e.Input)
}

// EntryCode identifies why a dictionary entry could not be read.
type EntryCode int

const (
	MissingEntry EntryCode = iota
	WrongType
	OutOfRange
)

// EntryError reports a dictionary entry that is absent or has the wrong
// type or value.
type EntryError struct {
	Key   string
	Code  EntryCode
	Want  string
	Value Value
}

func (e *EntryError) Error() string {
	switch e.Code {
	case MissingEntry:
		return fmt.Sprintf("missing required entry /%s", e.Key)
	case WrongType:
		return fmt.Sprintf("entry /%s: expected %s, found %s", e.Key, e.Want, e.Value)
	default:
		return fmt.Sprintf("entry /%s: value %s out of range for %s", e.Key, e.Value, e.Want)
	}
}
