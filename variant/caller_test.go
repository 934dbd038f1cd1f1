package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/paudano/kestrel-sub001/active"
	"github.com/paudano/kestrel-sub001/align"
	"github.com/paudano/kestrel-sub001/counter"
	"github.com/paudano/kestrel-sub001/hap"
	"github.com/paudano/kestrel-sub001/refregion"
)

func buildRegion(t *testing.T, seq string, k int) *refregion.Region {
	t.Helper()
	cnt := counter.NewMemCounter()
	rr, err := refregion.New("chr1", seq, 0, len(seq), cnt, refregion.Opts{KmerLen: k})
	assert.NoError(t, err)
	return rr
}

func TestDecomposeSNP(t *testing.T) {
	seq := "AAAAACCCCCAAAAA" // core only, no flanks since FlankLen defaults clip to 0 at the boundary
	rr := buildRegion(t, seq, 4)
	ar := active.Region{LIdx: 0, RIdx: len(seq) - 4}

	h := hap.Haplotype{
		Seq:   "AAAAACCCCGAAAAA",
		CIGAR: align.CIGAR{{Len: 9, Op: '='}, {Len: 1, Op: 'X'}, {Len: 5, Op: '='}},
	}
	c := NewCaller(DefaultOpts)
	c.AddRegion(rr, ar, []hap.Haplotype{h}, 0, "chr1:1-15")

	calls := c.Calls()
	assert.Len(t, calls, 1)
	assert.Equal(t, SNP, calls[0].Type)
	assert.Equal(t, "C", calls[0].Ref)
	assert.Equal(t, "G", calls[0].Alt)
	assert.Equal(t, "chr1:1-15", calls[0].RegionName)
}

func TestDecomposeInsertionAndDeletion(t *testing.T) {
	seq := "AAAAACCCCCAAAAA"
	rr := buildRegion(t, seq, 4)
	ar := active.Region{LIdx: 0, RIdx: len(seq) - 4}

	h := hap.Haplotype{
		Seq:   "AAAAACCCTTAAAAA",
		CIGAR: align.CIGAR{{Len: 8, Op: '='}, {Len: 2, Op: 'I'}, {Len: 2, Op: 'D'}, {Len: 5, Op: '='}},
	}
	c := NewCaller(DefaultOpts)
	c.AddRegion(rr, ar, []hap.Haplotype{h}, 0, "chr1:1-15")

	calls := c.Calls()
	assert.Len(t, calls, 2)
	assert.Equal(t, Insertion, calls[0].Type)
	assert.Equal(t, "TT", calls[0].Alt)
	assert.Equal(t, Deletion, calls[1].Type)
	assert.Equal(t, "CC", calls[1].Ref)
}

func TestFlankVariantsDropped(t *testing.T) {
	k := 4
	seq := "AAAAACCCCCAAAAA"
	cnt := counter.NewMemCounter()
	// Build a region with a real flank so offsets 0..leftFlank-1 are flank.
	rr, err := refregion.New("chr1", "TTTT"+seq+"TTTT", 4, 4+len(seq), cnt, refregion.Opts{KmerLen: k, FlankLen: 4})
	assert.NoError(t, err)
	// lIdx 0 sits at the very start of the region sequence, inside the
	// 4-base left flank (core starts at offset 4).
	ar := active.Region{LIdx: 0, RIdx: len(seq) - k}

	// A mismatch at region-sequence offset 0, inside the left flank.
	h := hap.Haplotype{
		Seq:   "GTTT" + seq,
		CIGAR: align.CIGAR{{Len: 1, Op: 'X'}, {Len: len(seq) + 3, Op: '='}},
	}
	c := NewCaller(DefaultOpts)
	c.AddRegion(rr, ar, []hap.Haplotype{h}, 0, "chr1:1-15")
	assert.Empty(t, c.Calls())
}

func TestMergeAcrossHaplotypesSumsDepth(t *testing.T) {
	seq := "AAAAACCCCCAAAAA"
	rr := buildRegion(t, seq, 4)
	ar := active.Region{LIdx: 0, RIdx: len(seq) - 4}

	h1 := hap.Haplotype{
		Seq: "AAAAACCCCGAAAAA", MinDepth: 5,
		CIGAR: align.CIGAR{{Len: 9, Op: '='}, {Len: 1, Op: 'X'}, {Len: 5, Op: '='}},
	}
	h2 := hap.Haplotype{
		Seq: "AAAAACCCCGAAAAA", MinDepth: 7,
		CIGAR: align.CIGAR{{Len: 9, Op: '='}, {Len: 1, Op: 'X'}, {Len: 5, Op: '='}},
	}
	c := NewCaller(DefaultOpts)
	c.AddRegion(rr, ar, []hap.Haplotype{h1, h2}, 0, "chr1:1-15")

	calls := c.Calls()
	assert.Len(t, calls, 1)
	assert.Equal(t, uint32(12), calls[0].VariantDepth)
	assert.Len(t, calls[0].Haplotypes, 2)
}
