// Package active implements active-region detection: scanning a
// reference region's per-base k-mer frequency vector to delimit candidate
// variant regions using an adaptive, exponentially decaying recovery
// threshold with peak suppression.
package active

import (
	"math"
	"sort"

	"github.com/paudano/kestrel-sub001/kmer"
)

// Scanner is a single region's view of the detection algorithm: the
// frequency vector, the region sequence (for ambiguity checks and anchor
// k-mer extraction), and the resolved configuration.
type Scanner struct {
	freq    []uint32
	seq     string
	kmerLen int
	opts    Opts
	maxLen  int // k*ScanLimitFactor + maxGapLen
	dT      float64
}

// NewScanner prepares a Scanner over freq (a region's per-base k-mer
// frequency vector) and seq (the same region's sequence, used for
// anchor k-mer extraction and ambiguity checks). maxGapLen is derived from
// the alignment weight vector by the caller (align.MaxGapLen), keeping this
// package free of a dependency on the alignment weight model.
func NewScanner(freq []uint32, seq string, kmerLen int, opts Opts, maxGapLen int) *Scanner {
	s := &Scanner{
		freq:    freq,
		seq:     seq,
		kmerLen: kmerLen,
		opts:    opts,
		maxLen:  int(float64(kmerLen)*opts.ScanLimitFactor) + maxGapLen,
	}
	s.dT = diffThreshold(freq, opts.MinDiff, opts.DiffQuantile)
	return s
}

// diffThreshold computes the adaptive scan-trigger threshold dT.
func diffThreshold(f []uint32, minDiff, quantile float64) float64 {
	n := len(f)
	if n < 3 {
		return minDiff
	}
	diffs := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diffs[i-1] = math.Abs(float64(f[i]) - float64(f[i-1]))
	}
	sort.Float64s(diffs)

	m := len(diffs)
	idxF := float64(n-2) * quantile
	q := int(idxF)
	if q < 0 {
		q = 0
	}
	if q > m-1 {
		q = m - 1
	}
	frac := idxF - float64(q)
	var interpolated float64
	if q+1 < m {
		interpolated = diffs[q]*(1-frac) + diffs[q+1]*frac
	} else {
		interpolated = diffs[q]
	}
	return math.Max(minDiff, interpolated)
}

// recoveryThreshold returns r(x), the decaying lower bound on downstream
// k-mer frequency starting from a left-anchor count of fL.
func recoveryThreshold(fL float64, x int, opts Opts, k int) float64 {
	fmin := opts.DecayMin * fL
	lambda := -math.Log(opts.Alpha) / float64(k)
	return (fL-fmin)*math.Exp(-lambda*float64(x)) + fmin
}

// Regions runs the full detection scan over the region and returns every
// emitted active region, in left-to-right scan order, including any
// end-called regions touching the reference ends.
func (s *Scanner) Regions() []Region {
	var out []Region
	n := len(s.freq)
	if n == 0 {
		return out
	}

	i := 1
	if leftOpen, ok := s.detectLeftOpen(); ok {
		out = append(out, leftOpen)
		i = leftOpen.RIdx + 1
	}

	for i < n {
		if s.freq[i] >= s.freq[i-1] || float64(s.freq[i-1])-float64(s.freq[i]) < s.dT {
			i++
			continue
		}
		// Pre-scan peak: look ahead; if the signal returns to near its
		// pre-drop level, this was a transient dip, not a real drop.
		if skip, ok := s.preScanPeak(i); ok {
			i = skip
			continue
		}

		L := i - 1
		fL := float64(s.freq[L])
		region, next, emitted := s.scanFromAnchor(L, fL, i)
		if emitted {
			out = append(out, region)
		}
		i = next
	}
	return out
}

// preScanPeak implements pre-scan peak suppression: before opening
// a scan at i, look ahead up to PeakScan positions for a return to
// >= f[i-1]-MinDiff/2; if found, the caller should resume scanning just past
// the peak without opening a region.
func (s *Scanner) preScanPeak(i int) (resumeAt int, found bool) {
	base := float64(s.freq[i-1]) - s.opts.MinDiff/2
	limit := i + s.opts.PeakScan
	if limit > len(s.freq) {
		limit = len(s.freq)
	}
	for j := i; j < limit; j++ {
		if float64(s.freq[j]) >= base {
			return j + 1, true
		}
	}
	return 0, false
}

// scanFromAnchor searches for a right anchor starting at candidate index
// from, given left anchor index L with count fL, applying in-scan peak
// suppression and the terminal peak cluster roll-back. It returns the
// region to emit (if emitted is true) and the index at which the outer scan
// should resume.
func (s *Scanner) scanFromAnchor(L int, fL float64, from int) (region Region, resumeAt int, emitted bool) {
	n := len(s.freq)
	clusterStart := -1
	clusterCount := 0

	R := from
	for R < n {
		thresh := recoveryThreshold(fL, R-L, s.opts, s.kmerLen)
		if float64(s.freq[R]) >= thresh {
			peakLimit := R + s.opts.PeakScan
			if peakLimit > n {
				peakLimit = n
			}
			isPeak := false
			for j := R + 1; j < peakLimit; j++ {
				if float64(s.freq[j]) < thresh {
					isPeak = true
					break
				}
			}
			if !isPeak {
				return s.finishRegion(L, R, false, false)
			}
			// In-scan peak: note it for terminal-cluster tracking, then
			// continue scanning from just past the peak window.
			if clusterStart < 0 || R-clusterStart > s.opts.PeakScan {
				clusterStart = R
				clusterCount = 1
			} else {
				clusterCount++
			}
			if clusterCount >= s.opts.peakClusterLen() {
				return s.finishRegion(L, clusterStart, false, false)
			}
			R = peakLimit
			continue
		}
		R++
	}

	// Scan reached the end of the region without recovery.
	if !s.opts.AnchorBoth {
		return s.finishRegion(L, n, false, true)
	}
	// No right anchor is possible here (end-calling disallowed); resume
	// past the exhausted tail so the outer scan terminates instead of
	// retrying the identical unrecoverable anchor forever.
	return Region{}, n, false
}

// finishRegion applies the length bound and ambiguity filter, then builds
// the Region and the resume index for the outer scan.
func (s *Scanner) finishRegion(L, R int, leftEnd, rightEnd bool) (Region, int, bool) {
	if R-L > s.maxLen {
		// Discarded for length: resume past the whole explored span (not
		// just past L) so the scan makes forward progress instead of
		// re-discovering the same over-long candidate.
		return Region{}, R + 1, false
	}
	if !s.opts.AmbigRegions && s.rangeHasAmbiguous(L, R) {
		return Region{}, R + 1, false
	}
	region := Region{LIdx: L, RIdx: R, LeftEnd: leftEnd, RightEnd: rightEnd}
	if !leftEnd {
		region.LeftAnchor = s.anchorKmer(L)
	}
	if !rightEnd {
		region.RightAnchor = s.anchorKmer(R)
	}
	return region, R + 1, true
}

func (s *Scanner) anchorKmer(idx int) kmer.Kmer {
	k, ok := kmer.Encode(s.seq[idx:idx+s.kmerLen], s.kmerLen)
	if !ok {
		return kmer.EncodeSubstituting(s.seq[idx:idx+s.kmerLen], s.kmerLen, kmer.A)
	}
	return k
}

func (s *Scanner) rangeHasAmbiguous(L, R int) bool {
	end := R + s.kmerLen
	if end > len(s.seq) {
		end = len(s.seq)
	}
	for i := L; i < end; i++ {
		if kmer.IsAmbiguous(s.seq[i]) {
			return true
		}
	}
	return false
}

// detectLeftOpen implements symmetric left-end-calling: "if before
// the first active region the left side of the reference shows a sharp
// rise, open a left-open region built from the right anchor backwards."
// A sharp rise at the very start of the frequency vector means offset 0 is
// already inside a variant's depressed-frequency zone; the rise's landing
// point becomes the region's (full) right anchor.
func (s *Scanner) detectLeftOpen() (Region, bool) {
	n := len(s.freq)
	limit := s.opts.PeakScan
	if limit >= n {
		limit = n - 1
	}
	for j := 1; j <= limit; j++ {
		if s.freq[j] <= s.freq[j-1] {
			continue
		}
		if float64(s.freq[j])-float64(s.freq[j-1]) >= s.dT {
			if s.opts.AnchorBoth {
				return Region{}, false
			}
			region, _, emitted := s.finishRegion(0, j, true, false)
			return region, emitted
		}
	}
	return Region{}, false
}
