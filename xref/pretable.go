// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xref

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-inspect/logger"
	"github.com/sassoftware/viya-pdf-inspect/parse"
)

// IncrementError reports an increment that could not be read or turned
// into a table. Offset is where the increment was expected.
type IncrementError struct {
	Offset uint64
	Err    error
}

func (e *IncrementError) Error() string {
	return fmt.Sprintf("increment at offset %d: %v", e.Offset, e.Err)
}

func (e *IncrementError) Unwrap() error {
	return e.Err
}

// PreTable is the chain of increments, newest first. A hybrid section's
// XRefStm stream follows the section it belongs to.
type PreTable struct {
	increments []Increment
	offsets    []uint64
	errs       []error
}

// ParsePreTable reads the increment at offset and every increment reached
// through Prev links. Failing to read the first increment is an error.
// Later failures, including a Prev chain that loops, end the traversal and
// are reported by Errors.
func ParsePreTable(buf []byte, offset uint64) (*PreTable, error) {
	p := &PreTable{}
	visited := make(map[uint64]bool)
	next, ok := offset, true
	for ok {
		if visited[next] {
			p.errs = append(p.errs, &IncrementError{
				Offset: next,
				Err:    &Error{Code: PrevCycle, Offset: int64(next)},
			})
			break
		}
		visited[next] = true

		inc, err := parseIncrementAt(buf, next)
		if err != nil {
			if len(p.increments) == 0 {
				return nil, &IncrementError{Offset: next, Err: err}
			}
			p.errs = append(p.errs, &IncrementError{Offset: next, Err: err})
			break
		}
		logger.Debug(fmt.Sprintf("xref: increment at %d (%T)", next, inc), true)
		p.add(inc, next)

		if sec, isSection := inc.(*Section); isSection && sec.trailer.XRefStm != nil {
			stm := *sec.trailer.XRefStm
			x, err := parseXRefStreamAt(buf, stm)
			if err != nil {
				p.errs = append(p.errs, &IncrementError{Offset: stm, Err: err})
			} else {
				p.add(x, stm)
			}
		}
		next, ok = inc.Prev()
	}
	return p, nil
}

func (p *PreTable) add(inc Increment, offset uint64) {
	p.increments = append(p.increments, inc)
	p.offsets = append(p.offsets, offset)
}

func parseIncrementAt(buf []byte, offset uint64) (Increment, error) {
	if offset >= uint64(len(buf)) {
		return nil, parse.NewFailure("Increment", len(buf), parse.OutOfBounds)
	}
	return ParseIncrement(buf, int(offset))
}

func parseXRefStreamAt(buf []byte, offset uint64) (*XRefStream, error) {
	if offset >= uint64(len(buf)) {
		return nil, parse.NewFailure("XRefStream", len(buf), parse.OutOfBounds)
	}
	return ParseXRefStream(buf, int(offset))
}

// Increments returns the increments, newest first.
func (p *PreTable) Increments() []Increment { return p.increments }

// Offsets returns the offset each increment was read from.
func (p *PreTable) Offsets() []uint64 { return p.offsets }

func (p *PreTable) Len() int { return len(p.increments) }

// Errors returns the traversal failures after the first increment.
func (p *PreTable) Errors() []error { return p.errs }

// Trailer returns the newest trailer.
func (p *PreTable) Trailer() *Trailer {
	if len(p.increments) == 0 {
		return nil
	}
	return p.increments[0].Trailer()
}

// Table merges the increments from newest to oldest. An increment whose
// rows cannot be classified is skipped and reported in the returned errors.
func (p *PreTable) Table(dec Decoder, order MergeOrder) (*Table, []error) {
	t := NewTable()
	var errs []error
	for i, inc := range p.increments {
		it, err := inc.Table(dec)
		if err != nil {
			errs = append(errs, &IncrementError{Offset: p.offsets[i], Err: err})
			continue
		}
		t.Merge(it, order)
	}
	return t, errs
}
