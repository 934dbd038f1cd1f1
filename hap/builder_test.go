package hap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/paudano/kestrel-sub001/active"
	"github.com/paudano/kestrel-sub001/align"
	"github.com/paudano/kestrel-sub001/counter"
	"github.com/paudano/kestrel-sub001/kmer"
	"github.com/paudano/kestrel-sub001/refregion"
)

// pathCounter scores every k-length window of a fixed sequence with depth
// and everything else 0, so the builder walk has exactly one live path.
func pathCounter(t *testing.T, seq string, k int, depth uint32) kmer.Counter {
	t.Helper()
	m := counter.NewMemCounter()
	for i := 0; i+k <= len(seq); i++ {
		km, ok := kmer.Encode(seq[i:i+k], k)
		assert.True(t, ok)
		m.Add(km, depth)
	}
	return m
}

func TestBuildForwardPerfectPath(t *testing.T) {
	seq := "CCGAGAAAGCCAATGA"
	k := 4
	cnt := pathCounter(t, seq, k, 10)

	rr, err := refregion.New("chr1", seq, 0, len(seq), cnt, refregion.Opts{KmerLen: k, FlankLen: 0})
	assert.NoError(t, err)

	leftAnchor, ok := kmer.Encode(seq[0:k], k)
	assert.True(t, ok)
	rightAnchor, ok := kmer.Encode(seq[len(seq)-k:], k)
	assert.True(t, ok)
	ar := active.Region{LIdx: 0, RIdx: len(seq) - k, LeftAnchor: leftAnchor, RightAnchor: rightAnchor}

	maxGapLen := align.MaxGapLen(align.DefaultWeights)
	c := Build(rr, ar, cnt, align.DefaultWeights, maxGapLen, DefaultOpts)

	haps := c.Haplotypes()
	assert.Len(t, haps, 1)
	assert.Equal(t, seq, haps[0].Seq)
	assert.True(t, haps[0].AtEnd)
	assert.Greater(t, haps[0].MinDepth, uint32(0))
}

func TestBuildTerminatesWithNoCandidates(t *testing.T) {
	seq := "ACGTACGT"
	k := 4
	// Only the anchor k-mer itself is ever scored; every extension is 0.
	cnt := counter.NewMemCounter()
	leftAnchor, ok := kmer.Encode(seq[0:k], k)
	assert.True(t, ok)
	cnt.Add(leftAnchor, 10)
	rightAnchor, ok := kmer.Encode(seq[len(seq)-k:], k)
	assert.True(t, ok)

	rr, err := refregion.New("chr1", seq, 0, len(seq), cnt, refregion.Opts{KmerLen: k, FlankLen: 0})
	assert.NoError(t, err)
	ar := active.Region{LIdx: 0, RIdx: len(seq) - k, LeftAnchor: leftAnchor, RightAnchor: rightAnchor}

	maxGapLen := align.MaxGapLen(align.DefaultWeights)
	c := Build(rr, ar, cnt, align.DefaultWeights, maxGapLen, DefaultOpts)
	assert.Equal(t, 0, c.Len())
}
