// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package parse

import (
	"errors"
	"fmt"
	"strings"
)

// Kind separates ambiguous grammar mismatches from committed failures.
type Kind int

const (
	// Recoverable means the input did not start with the construct, so a
	// sibling alternative may be tried at the same offset.
	Recoverable Kind = iota
	// Failure means the construct was recognized but is malformed.
	Failure
)

func (k Kind) String() string {
	if k == Failure {
		return "failure"
	}
	return "recoverable"
}

// Code identifies the cause of a grammar error.
type Code int

const (
	NotFound Code = iota
	NotFoundUnion
	MissingClosing
	MissingSubobject
	MissingValue
	WrongObjectType
	NumericOverflow
	ObjectNumber
	GenerationNumber
	MissingKey
	MissingData
	LengthMismatch
	OutOfBounds
	TooSmallBuffer
	Unresolved
)

var codeNames = map[Code]string{
	NotFound:         "not found",
	NotFoundUnion:    "no alternative matched",
	MissingClosing:   "missing closing",
	MissingSubobject: "missing subobject",
	MissingValue:     "missing value",
	WrongObjectType:  "wrong object type",
	NumericOverflow:  "numeric overflow",
	ObjectNumber:     "invalid object number",
	GenerationNumber: "invalid generation number",
	MissingKey:       "missing key",
	MissingData:      "missing data",
	LengthMismatch:   "length mismatch",
	OutOfBounds:      "offset out of bounds",
	TooSmallBuffer:   "buffer too small",
	Unresolved:       "unresolved reference",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a grammar error. Object names the construct being parsed and
// Offset is where the offending input starts.
type Error struct {
	Kind   Kind
	Object string
	Code   Code
	Offset int
	// Token names the expected token class, delimiter or subobject.
	Token string
	// Key is the dictionary key whose value failed to parse.
	Key string
	Err error
}

// NewRecoverable returns a Recoverable error for object at off.
func NewRecoverable(object string, off int, code Code) *Error {
	return &Error{Kind: Recoverable, Object: object, Code: code, Offset: off}
}

// NewFailure returns a Failure for object at off.
func NewFailure(object string, off int, code Code) *Error {
	return &Error{Kind: Failure, Object: object, Code: code, Offset: off}
}

// WithToken sets the expected token class and returns e.
func (e *Error) WithToken(token string) *Error {
	e.Token = token
	return e
}

// WithKey sets the dictionary key and returns e.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// Wrap sets the nested error and returns e.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Commit returns a copy of e promoted to Failure.
func (e *Error) Commit() *Error {
	c := *e
	c.Kind = Failure
	return &c
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Object, e.Code)
	if e.Token != "" {
		fmt.Fprintf(&b, " %s", e.Token)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " for key /%s", e.Key)
	}
	fmt.Fprintf(&b, " at offset %d", e.Offset)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether the outermost grammar error in err is
// Recoverable.
func IsRecoverable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == Recoverable
}

// IsFailure reports whether err is a non-nil error that must not be
// suppressed by alternation. Errors that are not grammar errors count as
// failures.
func IsFailure(err error) bool {
	return err != nil && !IsRecoverable(err)
}
