package hap

import (
	"github.com/paudano/kestrel-sub001/active"
	"github.com/paudano/kestrel-sub001/align"
	"github.com/paudano/kestrel-sub001/kmer"
	"github.com/paudano/kestrel-sub001/refregion"
)

// allBases is the canonical A<C<G<T enumeration order used both for
// candidate generation and for LIFO tie-breaking among saved states.
var allBases = [4]kmer.Base{kmer.A, kmer.C, kmer.G, kmer.T}

// Build runs the haplotype builder over one active region and returns the
// haplotypes it produced, already collected into a bounded Container.
func Build(rr *refregion.Region, ar active.Region, counter kmer.Counter, w align.Weights, maxGapLen int, opts Opts) *Container {
	container := NewContainer(opts.MaxHaplotypes)
	k := rr.KmerLen()
	seq := rr.Seq()

	if ar.HasLeftAnchor() {
		end := ar.RIdx + k
		if end > len(seq) {
			end = len(seq)
		}
		window := seq[ar.LIdx:end]
		newWalker(window, k, ar.LeftAnchor, !ar.HasRightAnchor(), false, counter, w, maxGapLen, opts, container).run()
	} else if ar.HasRightAnchor() {
		start := ar.LIdx
		if start < 0 {
			start = 0
		}
		window := reverseString(seq[start : ar.RIdx+k])
		newWalker(window, k, ar.RightAnchor, true, true, counter, w, maxGapLen, opts, container).run()
	}
	return container
}

func reverseString(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// walker holds the mutable state of a single anchor's graph walk.
// path is the sequence of k-mers visited by the current branch, used for
// cycle detection; it is truncated (not replayed) on restore, which is
// why the candidate k-mer's path length at save time travels through the
// aligner's saved-state CycleHash slot — an opaque uint64 to the aligner,
// repurposed here as a length rather than a literal hash.
type walker struct {
	aligner   *align.Aligner
	k         int
	endCallOK bool
	reverse   bool
	counter   kmer.Counter
	opts      Opts
	container *Container

	consensus   []byte
	cur         kmer.Kmer
	minDepth    uint32
	repeatCount int
	path        []kmer.Kmer
}

func newWalker(refWindow string, k int, seed kmer.Kmer, endCallOK, reverse bool, counter kmer.Counter, w align.Weights, maxGapLen int, opts Opts, container *Container) *walker {
	wk := &walker{
		aligner:   align.NewAligner(w, refWindow, k, maxGapLen, opts.MaxState, reverse),
		k:         k,
		endCallOK: endCallOK,
		reverse:   reverse,
		counter:   counter,
		opts:      opts,
		container: container,
		cur:       seed,
		path:      []kmer.Kmer{seed},
	}
	wk.consensus = append(wk.consensus, refWindow[:k]...)
	return wk
}

func (wk *walker) run() {
	for {
		cands := wk.candidates()
		best := 0
		for i := 1; i < 4; i++ {
			if cands[i].sc > cands[best].sc {
				best = i
			}
		}
		if cands[best].sc == 0 {
			wk.emit()
			if !wk.backtrackAndCommit() {
				return
			}
			continue
		}
		for i, c := range cands {
			if i == best || c.sc == 0 {
				continue
			}
			wk.aligner.SaveState(c.km, c.base, wk.clampedMinDepth(c.sc), uint64(len(wk.path)), wk.repeatCount)
		}
		if !wk.commit(cands[best].km, cands[best].base, wk.clampedMinDepth(cands[best].sc)) {
			return
		}
	}
}

type scoredCandidate struct {
	base kmer.Base
	km   kmer.Kmer
	sc   uint32
}

// candidates forms the four candidate next-k-mers by shifting the current
// k-mer and substituting each base, scored by forward (and, if configured,
// reverse-complement) counter support.
func (wk *walker) candidates() [4]scoredCandidate {
	var cands [4]scoredCandidate
	for i, b := range allBases {
		km := extend(wk.cur, wk.k, b, wk.reverse)
		sc := wk.counter.Get(km)
		if wk.opts.CountBothStrands {
			sc += wk.counter.Get(kmer.ReverseComplement(km, wk.k))
		}
		cands[i] = scoredCandidate{base: b, km: km, sc: sc}
	}
	return cands
}

func (wk *walker) clampedMinDepth(sc uint32) uint32 {
	if wk.minDepth == 0 {
		return sc
	}
	if sc < wk.minDepth {
		return sc
	}
	return wk.minDepth
}

// commit applies the chosen base (whether freshly picked or resumed via
// backtrack) to the path, consensus, and aligner. When the k-mer exceeds the
// repeat limit or the aligner terminates, commit emits and backtracks itself
// and returns backtrackAndCommit's result, so false means the region's walk
// is exhausted.
func (wk *walker) commit(km kmer.Kmer, base kmer.Base, minDepth uint32) bool {
	repeatCount := 0
	for _, p := range wk.path {
		if p == km {
			repeatCount++
		}
	}
	if repeatCount > wk.opts.MaxRepeatCount {
		wk.emit()
		return wk.backtrackAndCommit()
	}

	wk.minDepth = minDepth
	wk.repeatCount = repeatCount
	wk.cur = km
	wk.path = append(wk.path, km)
	wk.consensus = append(wk.consensus[:wk.aligner.ConsensusSize()], baseByteOf(base))

	if wk.aligner.AddBase(base) {
		wk.emit()
		return wk.backtrackAndCommit()
	}
	return true
}

// backtrackAndCommit pops the most recent saved state (if any) and commits
// its candidate as the walk's next step. Returns false once the region's
// walk is fully exhausted.
func (wk *walker) backtrackAndCommit() bool {
	st, ok := wk.aligner.RestoreState()
	if !ok {
		return false
	}
	if int(st.CycleHash) <= len(wk.path) {
		wk.path = wk.path[:st.CycleHash]
	}
	return wk.commit(st.Kmer, st.NextBase, st.MinDepth)
}

// emit records a haplotype if the current alignment is valid: either it
// reaches the opposite anchor exactly, or the region's end-calling flag
// permits accepting the best-scoring alignment short of that.
func (wk *walker) emit() {
	var cig align.CIGAR
	atEnd := false
	if c, reached := wk.aligner.EndCIGAR(); reached {
		cig, atEnd = c, true
	} else if wk.endCallOK {
		cig = wk.aligner.BestCIGAR()
	} else {
		return
	}
	hapSeq := string(wk.consensus[:wk.aligner.ConsensusSize()])
	if wk.reverse {
		hapSeq = reverseString(hapSeq)
	}
	wk.container.Add(Haplotype{Seq: hapSeq, CIGAR: cig, MinDepth: wk.minDepth, AtEnd: atEnd})
}

func extend(k kmer.Kmer, length int, b kmer.Base, reverse bool) kmer.Kmer {
	if reverse {
		return kmer.ShiftPrepend(k, length, b)
	}
	return kmer.ShiftAppend(k, length, b)
}

func baseByteOf(b kmer.Base) byte {
	switch b {
	case kmer.A:
		return 'A'
	case kmer.C:
		return 'C'
	case kmer.G:
		return 'G'
	case kmer.T:
		return 'T'
	default:
		return 'N'
	}
}
