// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package parse

// Parser recognizes a T at buf[off:].
type Parser[T any] func(buf []byte, off int) (T, error)

// Alt tries each alternative in order at the same offset. The first success
// or Failure is returned; a Recoverable error moves on to the next
// alternative. If none match, Alt returns a Recoverable NotFoundUnion error
// for object.
func Alt[T any](object string, buf []byte, off int, alternatives ...Parser[T]) (T, error) {
	for _, p := range alternatives {
		v, matched, err := Opt(p, buf, off)
		if err != nil {
			return v, err
		}
		if matched {
			return v, nil
		}
	}
	var zero T
	return zero, NewRecoverable(object, off, NotFoundUnion)
}

// Opt runs p and converts a Recoverable error into "no match". Success and
// Failure pass through.
func Opt[T any](p Parser[T], buf []byte, off int) (v T, matched bool, err error) {
	v, err = p(buf, off)
	switch {
	case err == nil:
		return v, true, nil
	case IsRecoverable(err):
		var zero T
		return zero, false, nil
	default:
		var zero T
		return zero, false, err
	}
}
