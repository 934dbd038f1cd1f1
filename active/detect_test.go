package active

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatSeq returns a length-n sequence cycling through A,C,G,T with no
// ambiguous bases, long enough to back any freq slice used below.
func flatSeq(n int) string {
	const cycle = "ACGT"
	b := make([]byte, n)
	for i := range b {
		b[i] = cycle[i%4]
	}
	return string(b)
}

func TestDiffThresholdUsesMinDiffFloor(t *testing.T) {
	// A constant frequency vector has every neighbor diff equal to 0, so the
	// quantile term never exceeds MinDiff.
	f := []uint32{10, 10, 10, 10, 10}
	assert.Equal(t, 3.0, diffThreshold(f, 3.0, 0.9))
}

func TestDiffThresholdInterpolatesAtQuantile(t *testing.T) {
	// diffs = |10-0|, |0-10|, |40-0| = [10, 10, 40], sorted = [10, 10, 40].
	// idxF = (n-2)*0.5 = 1.0 -> q=1, frac=0 -> interpolated = diffs[1] = 10.
	f := []uint32{0, 10, 0, 40}
	assert.Equal(t, 10.0, diffThreshold(f, 0, 0.5))
}

func TestRegionsFlatFrequencyYieldsNoRegions(t *testing.T) {
	f := make([]uint32, 20)
	for i := range f {
		f[i] = 50
	}
	s := NewScanner(f, flatSeq(len(f)+7), 8, DefaultOpts, 0)
	assert.Empty(t, s.Regions())
}

// Drop-then-recover: frequency dips from 20 to 5 for four positions, then
// climbs back to 20. With PeakScan=0 both peak-suppression passes are
// inert (their lookahead windows are empty), and DecayMin=1 collapses the
// recovery threshold to a constant equal to the left anchor's frequency,
// so recovery happens at the first position whose frequency is back to 20.
func TestRegionsSimpleDropAndRecovery(t *testing.T) {
	f := []uint32{20, 20, 20, 5, 5, 5, 5, 20, 20, 20}
	opts := Opts{
		MinDiff:         10,
		DiffQuantile:    0.5,
		PeakScan:        0,
		ScanLimitFactor: 10,
		DecayMin:        1.0,
		Alpha:           0.8,
		AnchorBoth:      true,
		AmbigRegions:    true,
	}
	s := NewScanner(f, flatSeq(len(f)+7), 8, opts, 0)
	regions := s.Regions()
	require.Len(t, regions, 1)
	assert.Equal(t, 2, regions[0].LIdx)
	assert.Equal(t, 7, regions[0].RIdx)
	assert.True(t, regions[0].HasLeftAnchor())
	assert.True(t, regions[0].HasRightAnchor())
}

func TestRegionsEndCallingWhenRecoveryNeverHappens(t *testing.T) {
	// Frequency drops and never recovers before the vector ends; with
	// AnchorBoth false the scan should still emit a region open at the
	// right end.
	f := []uint32{20, 20, 20, 5, 5, 5, 5, 5, 5, 5}
	opts := Opts{
		MinDiff:         10,
		DiffQuantile:    0.5,
		PeakScan:        0,
		ScanLimitFactor: 10,
		DecayMin:        1.0,
		Alpha:           0.8,
		AnchorBoth:      false,
		AmbigRegions:    true,
	}
	s := NewScanner(f, flatSeq(len(f)+7), 8, opts, 0)
	regions := s.Regions()
	require.Len(t, regions, 1)
	assert.Equal(t, 2, regions[0].LIdx)
	assert.Equal(t, len(f), regions[0].RIdx)
	assert.True(t, regions[0].HasLeftAnchor())
	assert.False(t, regions[0].HasRightAnchor())
}

func TestRegionsDiscardedWhenAnchorBothTrueAndNoRecovery(t *testing.T) {
	f := []uint32{20, 20, 20, 5, 5, 5, 5, 5, 5, 5}
	opts := Opts{
		MinDiff:         10,
		DiffQuantile:    0.5,
		PeakScan:        0,
		ScanLimitFactor: 10,
		DecayMin:        1.0,
		Alpha:           0.8,
		AnchorBoth:      true,
		AmbigRegions:    true,
	}
	s := NewScanner(f, flatSeq(len(f)+7), 8, opts, 0)
	assert.Empty(t, s.Regions())
}

func TestRegionsDiscardedWhenLongerThanMaxLen(t *testing.T) {
	f := []uint32{20, 20, 20, 5, 5, 5, 5, 20, 20, 20}
	opts := Opts{
		MinDiff:         10,
		DiffQuantile:    0.5,
		PeakScan:        0,
		ScanLimitFactor: 0, // maxLen collapses to just maxGapLen
		DecayMin:        1.0,
		Alpha:           0.8,
		AnchorBoth:      true,
		AmbigRegions:    true,
	}
	s := NewScanner(f, flatSeq(len(f)+7), 8, opts, 0)
	assert.Empty(t, s.Regions())
}

func TestRegionsDiscardedWhenCrossingAmbiguousBase(t *testing.T) {
	f := []uint32{20, 20, 20, 5, 5, 5, 5, 20, 20, 20}
	opts := Opts{
		MinDiff:         10,
		DiffQuantile:    0.5,
		PeakScan:        0,
		ScanLimitFactor: 10,
		DecayMin:        1.0,
		Alpha:           0.8,
		AnchorBoth:      true,
		AmbigRegions:    false,
	}
	seq := []byte(flatSeq(len(f) + 7))
	seq[4] = 'N'
	s := NewScanner(f, string(seq), 8, opts, 0)
	assert.Empty(t, s.Regions())
}

func TestDetectLeftOpenOnSharpRiseAtStart(t *testing.T) {
	// A sharp rise within the first PeakScan positions, with AnchorBoth
	// false, opens a left-open region anchored only on the right.
	f := []uint32{2, 2, 20, 20, 20, 20, 20, 20, 20, 20}
	opts := Opts{
		MinDiff:         10,
		DiffQuantile:    0.5,
		PeakScan:        3,
		ScanLimitFactor: 10,
		DecayMin:        1.0,
		Alpha:           0.8,
		AnchorBoth:      false,
		AmbigRegions:    true,
	}
	s := NewScanner(f, flatSeq(len(f)+7), 8, opts, 0)
	regions := s.Regions()
	require.NotEmpty(t, regions)
	first := regions[0]
	assert.Equal(t, 0, first.LIdx)
	assert.Equal(t, 2, first.RIdx)
	assert.False(t, first.HasLeftAnchor())
	assert.True(t, first.HasRightAnchor())
}

func TestRegionLenAndAnchorHelpers(t *testing.T) {
	r := Region{LIdx: 3, RIdx: 9}
	assert.Equal(t, 6, r.Len())
	assert.True(t, r.HasLeftAnchor())
	assert.True(t, r.HasRightAnchor())

	leftEnd := Region{LIdx: 0, RIdx: 5, LeftEnd: true}
	assert.False(t, leftEnd.HasLeftAnchor())
	assert.True(t, leftEnd.HasRightAnchor())
}
