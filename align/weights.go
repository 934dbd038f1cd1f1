// Package align implements the affine-gap alignment model: alignment weights, the sparse trace DAG and CIGAR
// extraction, and the incremental k-mer aligner itself.
package align

import (
	"math"
	"strconv"
	"strings"

	"github.com/paudano/kestrel-sub001/kerrors"
)

// zeroEpsilon is the "too close to zero" bound: magnitudes below
// this are treated as zero.
const zeroEpsilon = 1e-4

// Weights holds the four affine-gap scoring weights. By
// convention, once normalized by Parse or Normalize, Match > 0 and
// Mismatch, GapOpen, GapExtend <= 0.
type Weights struct {
	Match, Mismatch, GapOpen, GapExtend float64
}

// DefaultWeights are the default component weights (10, -10, -40, -4).
var DefaultWeights = Weights{Match: 10, Mismatch: -10, GapOpen: -40, GapExtend: -4}

// Normalize fixes the sign convention: Match becomes positive, the other
// three non-positive, leaving magnitudes unchanged.
func (w Weights) Normalize() Weights {
	w.Match = math.Abs(w.Match)
	w.Mismatch = -math.Abs(w.Mismatch)
	w.GapOpen = -math.Abs(w.GapOpen)
	w.GapExtend = -math.Abs(w.GapExtend)
	return w
}

// Score returns w.Match if match is true, else w.Mismatch — the s(i,j) term
// of the alignment recurrences.
func (w Weights) Score(match bool) float64 {
	if match {
		return w.Match
	}
	return w.Mismatch
}

// MaxGapLen derives the longest gap length that could still improve an
// alignment's score over simply mismatching through the same span: beyond
// this length the affine gap penalty exceeds the best possible per-base
// match gain, so a longer gap can never win.
func MaxGapLen(w Weights) int {
	perBaseGapCost := w.Match + w.GapExtend // net cost of extending a gap by
	// one base instead of taking one more aligned (matching) base.
	if perBaseGapCost <= 0 {
		// Gap extension is cheaper than matching forever; fall back to a
		// generous but finite bound so length-bounded scanning still
		// terminates.
		return 64
	}
	n := int(math.Ceil(-w.GapOpen/perBaseGapCost)) + 1
	if n < 1 {
		n = 1
	}
	return n
}

// Parse parses a four-element comma-separated weight list:
// optionally enclosed in matched (), <>, [] or {}; empty components default
// to DefaultWeights; each component accepts decimal, exponential,
// hexadecimal (0x…) or octal (0…) integers. The sign of each component is
// normalized on return; match/mismatch within 1e-4 of zero are rejected.
func Parse(s string) (Weights, error) {
	s = strings.TrimSpace(s)
	s = unwrapBrackets(s)
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Weights{}, kerrors.E(kerrors.Usage, "alignment weights must have exactly 4 comma-separated components", s)
	}
	defaults := [4]float64{DefaultWeights.Match, DefaultWeights.Mismatch, DefaultWeights.GapOpen, DefaultWeights.GapExtend}
	var vals [4]float64
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			vals[i] = defaults[i]
			continue
		}
		v, err := parseWeightComponent(p)
		if err != nil {
			return Weights{}, kerrors.E(kerrors.Usage, err, "alignment weight component", p)
		}
		vals[i] = v
	}
	w := Weights{Match: vals[0], Mismatch: vals[1], GapOpen: vals[2], GapExtend: vals[3]}.Normalize()
	if math.Abs(w.Match) < zeroEpsilon {
		return Weights{}, kerrors.E(kerrors.Usage, "match weight too close to zero")
	}
	if math.Abs(w.Mismatch) < zeroEpsilon {
		return Weights{}, kerrors.E(kerrors.Usage, "mismatch weight too close to zero")
	}
	return w, nil
}

func unwrapBrackets(s string) string {
	pairs := map[byte]byte{'(': ')', '<': '>', '[': ']', '{': '}'}
	if len(s) < 2 {
		return s
	}
	if close, ok := pairs[s[0]]; ok && s[len(s)-1] == close {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func parseWeightComponent(s string) (float64, error) {
	// Hex/octal integers (strconv.ParseInt honors the 0x/0 prefixes with
	// base 0); decimal/exponential floats fall through to ParseFloat.
	if iv, err := strconv.ParseInt(s, 0, 64); err == nil {
		return float64(iv), nil
	}
	return strconv.ParseFloat(s, 64)
}
