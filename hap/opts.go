// Package hap builds candidate haplotypes by walking a k-mer graph guided
// by a reference-anchored aligner, and collects the survivors in a bounded
// container.
package hap

// Opts configures the haplotype builder.
type Opts struct {
	// CountBothStrands adds the reverse-complement count to each candidate
	// next k-mer's score (countReverse).
	CountBothStrands bool
	// MaxRepeatCount is how many times a walk may revisit an already-seen
	// k-mer before the walk is abandoned.
	MaxRepeatCount int
	// MaxState bounds the aligner's backtracking save-point stack.
	MaxState int
	// MaxHaplotypes bounds the haplotype container per region.
	MaxHaplotypes int
}

// DefaultOpts holds the builder's default parameters.
var DefaultOpts = Opts{
	CountBothStrands: true,
	MaxRepeatCount:   0,
	MaxState:         15,
	MaxHaplotypes:    15,
}
