package align

import "github.com/paudano/kestrel-sub001/kmer"

// column is a sparse snapshot of one DP layer: only the non-zero cells,
// indexed by the same row offsets used internally by Aligner.
type column []cell

type cell struct {
	idx  int
	node NodeRef
}

func snapshotColumn(dense []NodeRef) column {
	var c column
	for i, r := range dense {
		if r != ZeroNode {
			c = append(c, cell{idx: i, node: r})
		}
	}
	return c
}

func expandColumn(c column, size int) []NodeRef {
	dense := make([]NodeRef, size)
	for _, cl := range c {
		dense[cl.idx] = cl.node
	}
	return dense
}

// SavedState is a snapshot of the aligner's walk position plus the three DP
// layers at the time it was pushed, together with the haplotype-walk
// metadata the caller attached (the next base not taken, the minimum depth
// along the consensus so far, and cycle-detection bookkeeping).
type SavedState struct {
	Kmer          kmer.Kmer
	NextBase      kmer.Base
	ConsensusSize int
	MinDepth      uint32
	CycleHash     uint64
	RepeatCount   int

	align, gapRef, gapCon column
	maxScore              float64
	maxScoreNode          NodeRef
	sinceImprove          int
}

// StateStack is the bounded LIFO save-point pool backing backtracking over
// the haplotype graph walk. When full, Push evicts the entry judged least
// likely to be revisited productively: the one with the smallest consensus
// built so far, breaking ties by the lowest minimum depth.
type StateStack struct {
	entries []SavedState
	max     int
}

// NewStateStack returns a stack bounded to hold at most max saved states.
func NewStateStack(max int) *StateStack {
	if max < 1 {
		max = 1
	}
	return &StateStack{max: max}
}

func (s *StateStack) Len() int { return len(s.entries) }

// Push adds st to the stack, evicting the least-likely entry first if the
// stack is already at capacity.
func (s *StateStack) Push(st SavedState) {
	if len(s.entries) >= s.max {
		s.evictLeastLikely()
	}
	s.entries = append(s.entries, st)
}

// evictLeastLikely removes the entry with the smallest ConsensusSize,
// breaking ties by the smallest MinDepth, per the pool's discard ordering.
func (s *StateStack) evictLeastLikely() {
	worst := 0
	for i := 1; i < len(s.entries); i++ {
		e, w := s.entries[i], s.entries[worst]
		if e.ConsensusSize < w.ConsensusSize ||
			(e.ConsensusSize == w.ConsensusSize && e.MinDepth < w.MinDepth) {
			worst = i
		}
	}
	s.entries = append(s.entries[:worst], s.entries[worst+1:]...)
}

// Pop removes and returns the most recently pushed entry, LIFO.
func (s *StateStack) Pop() (SavedState, bool) {
	if len(s.entries) == 0 {
		return SavedState{}, false
	}
	last := len(s.entries) - 1
	st := s.entries[last]
	s.entries = s.entries[:last]
	return st, true
}
