package refregion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paudano/kestrel-sub001/kmer"
)

type constCounter uint32

func (c constCounter) Get(kmer.Kmer) uint32 { return uint32(c) }

func TestNewBasic(t *testing.T) {
	ref := "AAAATGCAAAATGCAAAATGC" // len 21
	r, err := New("chr1", ref, 5, 15, constCounter(10), Opts{KmerLen: 5, FlankLen: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, r.LeftFlank())
	assert.Equal(t, 3, r.RightFlank())
	assert.Equal(t, 10, r.CoreLen())
	assert.Equal(t, ref[2:18], r.Seq())
	assert.Len(t, r.Freq(), len(r.Seq())-5+1)
	for _, f := range r.Freq() {
		assert.EqualValues(t, 10, f)
	}
}

func TestFlankClippedAtBoundary(t *testing.T) {
	ref := "AAAATGCAAAATGCAAAATGC"
	r, err := New("chr1", ref, 0, 10, constCounter(1), Opts{KmerLen: 5, FlankLen: 8})
	require.NoError(t, err)
	assert.Equal(t, 0, r.LeftFlank())
	assert.Equal(t, 8, r.RightFlank())
}

func TestDefaultFlankLen(t *testing.T) {
	assert.Equal(t, 7, DefaultFlankLen(5)) // floor(5*1.5) == 7
}

func TestRegionCoordRoundTrip(t *testing.T) {
	ref := "AAAATGCAAAATGCAAAATGC"
	r, err := New("chr1", ref, 5, 15, constCounter(1), Opts{KmerLen: 5, FlankLen: 3})
	require.NoError(t, err)
	for off := 0; off < r.Len(); off++ {
		coord := r.RegionCoord(off)
		assert.Equal(t, off, r.SeqOffset(coord))
	}
	assert.Equal(t, 1, r.RegionCoord(r.LeftFlank()))
}

func TestIsFlank(t *testing.T) {
	ref := "AAAATGCAAAATGCAAAATGC"
	r, err := New("chr1", ref, 5, 15, constCounter(1), Opts{KmerLen: 5, FlankLen: 3})
	require.NoError(t, err)
	assert.True(t, r.IsFlank(-2, 0))
	assert.True(t, r.IsFlank(r.CoreLen()+1, r.CoreLen()+3))
	assert.False(t, r.IsFlank(0, 1))
	assert.False(t, r.IsFlank(-1, 1)) // spans into the core
}

func TestAmbiguousBaseSubstitution(t *testing.T) {
	ref := "AAAANGCAAAATGCAAAATGC"
	r, err := New("chr1", ref, 5, 15, constCounter(1), Opts{KmerLen: 5, FlankLen: 3})
	require.NoError(t, err)
	// Construction must not abort, and every queried window gets the counter's
	// (constant, here) answer regardless of the ambiguous base.
	for _, f := range r.Freq() {
		assert.EqualValues(t, 1, f)
	}
}
