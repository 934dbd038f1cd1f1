package active

import "github.com/paudano/kestrel-sub001/kmer"

// Region is an active region: a half-open interval [LIdx, RIdx) over
// region offsets bounded by anchor k-mers. Either both anchors are present,
// or exactly one end-anchor is missing when end-calling permitted the
// region to touch a reference end.
type Region struct {
	LIdx, RIdx              int
	LeftAnchor, RightAnchor kmer.Kmer
	LeftEnd, RightEnd       bool
}

// HasLeftAnchor reports whether LeftAnchor is a true anchor k-mer.
func (r Region) HasLeftAnchor() bool { return !r.LeftEnd }

// HasRightAnchor reports whether RightAnchor is a true anchor k-mer.
func (r Region) HasRightAnchor() bool { return !r.RightEnd }

// Len returns the region's offset span, RIdx-LIdx.
func (r Region) Len() int { return r.RIdx - r.LIdx }
