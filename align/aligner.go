package align

import (
	"github.com/paudano/kestrel-sub001/kmer"
)

// terminationWindow is the number of consecutive appended bases without a
// new running-maximum score after which AddBase reports termination, as a
// multiple of k plus the weight model's gap bound ("stop extending a
// haplotype once the best score seen has not improved in a while").
func terminationWindow(k, maxGapLen int) int {
	return 2*k + maxGapLen
}

func baseByte(b kmer.Base) byte {
	switch b {
	case kmer.A:
		return 'A'
	case kmer.C:
		return 'C'
	case kmer.G:
		return 'G'
	case kmer.T:
		return 'T'
	}
	return 'N'
}

func refByteMatches(ref byte, b kmer.Base) bool {
	switch ref {
	case 'A', 'a':
		return b == kmer.A
	case 'C', 'c':
		return b == kmer.C
	case 'G', 'g':
		return b == kmer.G
	case 'T', 't':
		return b == kmer.T
	default:
		return false
	}
}

// Aligner is the incremental affine-gap k-mer aligner. It is seeded with a
// k-mer anchor already matched and then extended one consensus base at a
// time, maintaining three sparse DP layers (align, gap-in-reference,
// gap-in-consensus) over a fixed reference window.
//
// A reverse-oriented Aligner aligns against refWindow read right-to-left
// (refWindow[0] is the anchor's rightmost base); CIGARs it extracts are
// still returned in true reference-forward orientation.
type Aligner struct {
	arena     *Arena
	w         Weights
	refWindow string
	k         int
	maxGapLen int
	reverse   bool

	size int // number of row slots; row r (k..len(refWindow)) maps to idx=r-k
	p    int // total consensus length including the k anchor bases

	align, gapRef, gapCon []NodeRef

	maxScore     float64
	maxScoreNode NodeRef
	sinceImprove int

	stack *StateStack
}

// NewAligner constructs an Aligner seeded from the k-base anchor at the
// start of refWindow (refWindow[:k]). refWindow must be at least k bases
// long and should extend as far as the aligner may ever need to align
// against (bounded by the active region's scan limit).
func NewAligner(w Weights, refWindow string, k int, maxGapLen int, maxState int, reverse bool) *Aligner {
	a := &Aligner{
		arena:     NewArena(),
		w:         w,
		refWindow: refWindow,
		k:         k,
		maxGapLen: maxGapLen,
		reverse:   reverse,
		size:      len(refWindow) - k + 1,
		p:         k,
		stack:     NewStateStack(maxState),
	}
	a.align = make([]NodeRef, a.size)
	a.gapRef = make([]NodeRef, a.size)
	a.gapCon = make([]NodeRef, a.size)

	seed := ZeroNode
	for i := 1; i <= k; i++ {
		seed = a.arena.New(float32(float64(i)*w.Match), NodeMatch, seed, ZeroNode)
	}
	a.align[0] = seed
	a.maxScore = float64(k) * w.Match
	a.maxScoreNode = seed
	return a
}

// ConsensusSize returns the total consensus length aligned so far, anchor
// included.
func (a *Aligner) ConsensusSize() int { return a.p }

// MaxScore returns the best align-layer score observed so far.
func (a *Aligner) MaxScore() float64 { return a.maxScore }

// AtRightEnd reports whether the current align layer has a nonzero cell at
// the final row of the reference window — i.e., the alignment reaches the
// opposite anchor exactly.
func (a *Aligner) AtRightEnd() (NodeRef, bool) {
	r := a.align[a.size-1]
	return r, r != ZeroNode
}

// AddBase appends one more consensus base and recomputes the three DP
// layers. It returns true once the running maximum score has gone
// terminationWindow(k, maxGapLen) bases without improving, signaling the
// caller should stop extending this walk.
func (a *Aligner) AddBase(b kmer.Base) bool {
	newAlign := make([]NodeRef, a.size)
	newGapRef := make([]NodeRef, a.size)
	newGapCon := make([]NodeRef, a.size)

	// idx 0 (row r=k, the anchor boundary): align and gap-in-consensus can
	// never occur here (both would require re-consuming or pre-consuming a
	// reference base inside the fixed anchor); only an insertion
	// immediately after the anchor (gap-in-reference) can extend.
	newAlign[0] = ZeroNode
	newGapCon[0] = ZeroNode
	newGapRef[0] = a.arena.chooseMax([]candidate{
		{ref: a.align[0], score: float64(a.arena.Get(a.align[0]).Score) + a.w.GapOpen + a.w.GapExtend},
		{ref: a.gapRef[0], score: float64(a.arena.Get(a.gapRef[0]).Score) + a.w.GapExtend},
	}, NodeGapRef)

	for idx := 1; idx < a.size; idx++ {
		refPos := a.k + idx - 1 // 0-based index into refWindow of reference row r=k+idx
		match := refByteMatches(a.refWindow[refPos], b)
		s := a.w.Score(match)

		diagType := NodeMismatch
		if match {
			diagType = NodeMatch
		}
		newAlign[idx] = a.arena.chooseMax([]candidate{
			{ref: a.align[idx-1], score: float64(a.arena.Get(a.align[idx-1]).Score) + s},
			{ref: a.gapRef[idx-1], score: float64(a.arena.Get(a.gapRef[idx-1]).Score) + s},
			{ref: a.gapCon[idx-1], score: float64(a.arena.Get(a.gapCon[idx-1]).Score) + s},
		}, diagType)

		newGapRef[idx] = a.arena.chooseMax([]candidate{
			{ref: a.align[idx], score: float64(a.arena.Get(a.align[idx]).Score) + a.w.GapOpen + a.w.GapExtend},
			{ref: a.gapRef[idx], score: float64(a.arena.Get(a.gapRef[idx]).Score) + a.w.GapExtend},
		}, NodeGapRef)

		newGapCon[idx] = a.arena.chooseMax([]candidate{
			{ref: newAlign[idx-1], score: float64(a.arena.Get(newAlign[idx-1]).Score) + a.w.GapOpen + a.w.GapExtend},
			{ref: newGapCon[idx-1], score: float64(a.arena.Get(newGapCon[idx-1]).Score) + a.w.GapExtend},
		}, NodeGapCon)
	}

	a.align, a.gapRef, a.gapCon = newAlign, newGapRef, newGapCon
	a.p++

	improved := false
	for _, r := range a.align {
		if r == ZeroNode {
			continue
		}
		if sc := float64(a.arena.Get(r).Score); sc > a.maxScore {
			a.maxScore = sc
			a.maxScoreNode = r
			improved = true
		}
	}
	if improved {
		a.sinceImprove = 0
	} else {
		a.sinceImprove++
	}
	return a.sinceImprove >= terminationWindow(a.k, a.maxGapLen)
}

// BestCIGAR extracts the CIGAR for the best-scoring alignment reachable so
// far (the running maximum), regardless of whether it ends on the opposite
// anchor.
func (a *Aligner) BestCIGAR() CIGAR {
	return a.arena.ExtractCIGAR(a.maxScoreNode, a.reverse)
}

// EndCIGAR extracts the CIGAR ending exactly at the reference window's
// final row, if the align layer has a live cell there — i.e., the
// alignment reaches the opposite anchor. The second return is false if no
// such alignment currently exists.
func (a *Aligner) EndCIGAR() (CIGAR, bool) {
	r, ok := a.AtRightEnd()
	if !ok {
		return nil, false
	}
	return a.arena.ExtractCIGAR(r, a.reverse), true
}

// SaveState snapshots the current layers and walk position onto the bounded
// save-point stack, tagged with the caller's haplotype-walk metadata.
func (a *Aligner) SaveState(k kmer.Kmer, nextBase kmer.Base, minDepth uint32, cycleHash uint64, repeatCount int) {
	a.stack.Push(SavedState{
		Kmer:          k,
		NextBase:      nextBase,
		ConsensusSize: a.p,
		MinDepth:      minDepth,
		CycleHash:     cycleHash,
		RepeatCount:   repeatCount,
		align:         snapshotColumn(a.align),
		gapRef:        snapshotColumn(a.gapRef),
		gapCon:        snapshotColumn(a.gapCon),
		maxScore:      a.maxScore,
		maxScoreNode:  a.maxScoreNode,
		sinceImprove:  a.sinceImprove,
	})
}

// RestoreState pops the most recently saved state, replaces the working
// layers and consensus length with the snapshot, and returns the walk
// metadata the caller attached at save time.
func (a *Aligner) RestoreState() (SavedState, bool) {
	st, ok := a.stack.Pop()
	if !ok {
		return SavedState{}, false
	}
	a.p = st.ConsensusSize
	a.align = expandColumn(st.align, a.size)
	a.gapRef = expandColumn(st.gapRef, a.size)
	a.gapCon = expandColumn(st.gapCon, a.size)
	a.maxScore = st.maxScore
	a.maxScoreNode = st.maxScoreNode
	a.sinceImprove = st.sinceImprove
	return st, true
}

// HasSavedState reports whether any backtracking point remains.
func (a *Aligner) HasSavedState() bool { return a.stack.Len() > 0 }
