// Package refregion implements the reference region model: a
// sub-range of a reference sequence padded with flanks, its per-base k-mer
// frequency vector, and the region/reference coordinate mapping consumed by
// the active-region detector and the haplotype builder.
package refregion

import (
	"github.com/paudano/kestrel-sub001/kerrors"
	"github.com/paudano/kestrel-sub001/kmer"
)

// DefaultFlankFactor is the ⌊k·1.5⌋ default flank length.
const DefaultFlankFactor = 1.5

// DefaultFlankLen returns the default flank length for a k-mer length k.
func DefaultFlankLen(k int) int {
	return int(float64(k) * DefaultFlankFactor)
}

// Region is an immutable view of a reference sub-range plus its flanks.
// Once built, its sequence and frequency vector are read-only and are
// shared freely across the active-region detector and every haplotype
// builder walk over it.
type Region struct {
	refName string

	// seq is the region sequence, flanks included.
	seq string
	// refOffset is the 0-based reference offset of seq[0] (i.e. coreStart -
	// leftFlank).
	refOffset int
	// leftFlank, rightFlank are the actual (boundary-clipped) flank lengths.
	leftFlank, rightFlank int
	// coreLen is the length of the core (non-flank) sub-range.
	coreLen int

	kmerLen int
	// freq[i] is the summed k-mer frequency for the window seq[i:i+kmerLen).
	// len(freq) == len(seq) - kmerLen + 1.
	freq []uint32
}

// Opts configures region construction.
type Opts struct {
	KmerLen int
	// FlankLen is the requested flank length; if 0, DefaultFlankLen(KmerLen)
	// is used.
	FlankLen int
	// CountBothStrands sums the reverse-complement count into each frequency
	// entry in addition to the forward count.
	CountBothStrands bool
}

// New builds a Region covering the reference core range [start, end) in
// refSeq (0-based, half-open), padded by flanks and consulting counter for
// every successive k-mer's frequency.
func New(refName, refSeq string, start, end int, counter kmer.Counter, opts Opts) (*Region, error) {
	if opts.KmerLen < 4 {
		return nil, kerrors.E(kerrors.Usage, "kmer length must be >= 4")
	}
	if start < 0 || end > len(refSeq) || start >= end {
		return nil, kerrors.E(kerrors.Usage, "invalid region range", start, end)
	}
	flankLen := opts.FlankLen
	if flankLen == 0 {
		flankLen = DefaultFlankLen(opts.KmerLen)
	}
	if flankLen < 0 {
		return nil, kerrors.E(kerrors.Usage, "flank length must be non-negative")
	}

	leftFlank := flankLen
	if leftFlank > start {
		leftFlank = start
	}
	rightFlank := flankLen
	if rightFlank > len(refSeq)-end {
		rightFlank = len(refSeq) - end
	}

	seq := refSeq[start-leftFlank : end+rightFlank]
	r := &Region{
		refName:    refName,
		seq:        seq,
		refOffset:  start - leftFlank,
		leftFlank:  leftFlank,
		rightFlank: rightFlank,
		coreLen:    end - start,
		kmerLen:    opts.KmerLen,
	}
	r.freq = buildFrequencyVector(seq, opts.KmerLen, counter, opts.CountBothStrands)
	return r, nil
}

// buildFrequencyVector walks seq, streaming k-mers through counter and
// summing forward (and, if requested, reverse-complement) counts. A window
// touching an ambiguous base is queried as if that base were A; this
// never aborts construction.
func buildFrequencyVector(seq string, k int, counter kmer.Counter, bothStrands bool) []uint32 {
	n := len(seq) - k + 1
	if n <= 0 {
		return nil
	}
	freq := make([]uint32, n)
	for i := 0; i < n; i++ {
		window := seq[i : i+k]
		fwd := kmer.EncodeSubstituting(window, k, kmer.A)
		v := counter.Get(fwd)
		if bothStrands {
			v += counter.Get(kmer.ReverseComplement(fwd, k))
		}
		freq[i] = v
	}
	return freq
}

// RefName returns the reference sequence this region was cut from.
func (r *Region) RefName() string { return r.refName }

// Seq returns the region sequence, flanks included.
func (r *Region) Seq() string { return r.seq }

// Len returns len(Seq()).
func (r *Region) Len() int { return len(r.seq) }

// KmerLen returns the k-mer length used to build the frequency vector.
func (r *Region) KmerLen() int { return r.kmerLen }

// Freq returns the per-base k-mer frequency vector, length Len()-KmerLen()+1.
// The returned slice must not be mutated; it is shared by every reader of
// this Region.
func (r *Region) Freq() []uint32 { return r.freq }

// LeftFlank, RightFlank return the actual (boundary-clipped) flank lengths.
func (r *Region) LeftFlank() int  { return r.leftFlank }
func (r *Region) RightFlank() int { return r.rightFlank }

// CoreLen returns the length of the core (non-flank) sub-range.
func (r *Region) CoreLen() int { return r.coreLen }

// RefOffset maps a 0-based region-sequence offset to a 0-based reference
// offset.
func (r *Region) RefOffset(regionSeqOffset int) int {
	return r.refOffset + regionSeqOffset
}

// RegionCoord converts a 0-based region-sequence offset to the 1-based
// region coordinate, where coordinate 1 is the first core base.
func (r *Region) RegionCoord(regionSeqOffset int) int {
	return regionSeqOffset - r.leftFlank + 1
}

// SeqOffset is the inverse of RegionCoord.
func (r *Region) SeqOffset(regionCoord int) int {
	return regionCoord + r.leftFlank - 1
}

// IsFlank reports whether the inclusive region-coordinate range [start, end]
// lies entirely within a flank; used by the variant caller to drop
// flank-only variants.
func (r *Region) IsFlank(start, end int) bool {
	return end < 1 || start > r.coreLen
}
