package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRankOrder(t *testing.T) {
	assert.Less(t, NodeMismatch.canonicalRank(), NodeGapRef.canonicalRank())
	assert.Less(t, NodeGapRef.canonicalRank(), NodeGapCon.canonicalRank())
	assert.Less(t, NodeGapCon.canonicalRank(), NodeMatch.canonicalRank())
}

func TestArenaNewAndGet(t *testing.T) {
	a := NewArena()
	assert.Equal(t, NodeNone, a.Get(ZeroNode).Type)
	n1 := a.New(5, NodeMatch, ZeroNode, ZeroNode)
	n2 := a.New(10, NodeMismatch, n1, ZeroNode)
	assert.Equal(t, float32(5), a.Get(n1).Score)
	assert.Equal(t, n1, a.Get(n2).Next)
}

func TestChooseMaxClampsNonPositive(t *testing.T) {
	a := NewArena()
	ref := a.chooseMax([]candidate{{ref: ZeroNode, score: -3}, {ref: ZeroNode, score: 0}}, NodeMismatch)
	assert.Equal(t, ZeroNode, ref)
}

func TestChooseMaxSingleCandidate(t *testing.T) {
	a := NewArena()
	ref := a.chooseMax([]candidate{{ref: ZeroNode, score: 7}}, NodeMatch)
	n := a.Get(ref)
	assert.Equal(t, float32(7), n.Score)
	assert.Equal(t, NodeMatch, n.Type)
	assert.Equal(t, ZeroNode, n.Branch)
}

func TestChooseMaxTieBreaksCanonically(t *testing.T) {
	a := NewArena()
	mismatchPred := a.New(1, NodeMismatch, ZeroNode, ZeroNode)
	gapRefPred := a.New(1, NodeGapRef, ZeroNode, ZeroNode)
	matchPred := a.New(1, NodeMatch, ZeroNode, ZeroNode)

	ref := a.chooseMax([]candidate{
		{ref: matchPred, score: 10},
		{ref: mismatchPred, score: 10},
		{ref: gapRefPred, score: 10},
	}, NodeMatch)
	n := a.Get(ref)
	// Mismatch has the lowest canonical rank, so it must win Next.
	assert.Equal(t, mismatchPred, n.Next)
	// The other two alternates are reachable via Branch.
	assert.NotEqual(t, ZeroNode, n.Branch)
}
