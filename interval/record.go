// Package interval implements the BED-style interval source the core
// consumes to restrict which parts of each reference are scanned: zero or
// more (sequenceName, start, end, isForward, name) records over 0-based
// half-open coordinates, sorted and non-overlapping per sequence once
// loaded. When no source is supplied, the whole reference is a single
// interval per sequence.
package interval

import (
	"github.com/biogo/store/interval"
)

// Record is one BED-style interval.
type Record struct {
	SeqName   string
	Start     int // 0-based, inclusive
	End       int // 0-based, exclusive
	IsForward bool
	Name      string
}

func (r Record) rangeOf() interval.IntRange {
	return interval.IntRange{Start: r.Start, End: r.End}
}

// entry adapts a Record to biogo/store/interval's Interface, so a sequence's
// intervals can be indexed in an IntTree for overlap validation and range
// queries.
type entry struct {
	Record
	id uintptr
}

func (e *entry) ID() uintptr              { return e.id }
func (e *entry) Range() interval.IntRange { return e.rangeOf() }
func (e *entry) Overlap(b interval.IntRange) bool {
	return e.End > b.Start && e.Start < b.End
}
