package hap

import "github.com/paudano/kestrel-sub001/align"

// Haplotype is one resolved haplotype over an active region: its full
// sequence (anchor bases included, in reference-forward orientation), the
// CIGAR of its alignment against the region, and the minimum per-base
// support depth observed while building it.
type Haplotype struct {
	Seq      string
	CIGAR    align.CIGAR
	MinDepth uint32
	// AtEnd reports whether the walk reached the opposite anchor exactly
	// (false only for a haplotype accepted under region end-calling).
	AtEnd bool
}
