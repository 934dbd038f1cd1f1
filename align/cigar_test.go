package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCIGARString(t *testing.T) {
	c := CIGAR{{Len: 3, Op: '='}, {Len: 1, Op: 'X'}, {Len: 2, Op: 'I'}}
	assert.Equal(t, "3=1X2I", c.String())
}

func TestCIGARRefAndQueryLen(t *testing.T) {
	c := CIGAR{{Len: 3, Op: '='}, {Len: 2, Op: 'D'}, {Len: 1, Op: 'I'}}
	assert.Equal(t, 5, c.RefLen())
	assert.Equal(t, 4, c.QueryLen())
}

func TestExtractCIGARForwardCollapsesRuns(t *testing.T) {
	a := NewArena()
	n1 := a.New(10, NodeMatch, ZeroNode, ZeroNode)
	n2 := a.New(20, NodeMatch, n1, ZeroNode)
	n3 := a.New(10, NodeMismatch, n2, ZeroNode)
	n4 := a.New(0, NodeGapRef, n3, ZeroNode)

	cig := a.ExtractCIGAR(n4, false)
	assert.Equal(t, "2=1X1I", cig.String())
}

func TestExtractCIGARReverseBuildOrientation(t *testing.T) {
	a := NewArena()
	// A reverse build walks the reference right-to-left; walking the chain
	// backward from the final node therefore already yields left-to-right
	// order, so no flip should happen.
	n1 := a.New(10, NodeMatch, ZeroNode, ZeroNode)
	n2 := a.New(0, NodeGapCon, n1, ZeroNode)

	cig := a.ExtractCIGAR(n2, true)
	assert.Equal(t, "1D1=", cig.String())
}

func TestAlternates(t *testing.T) {
	a := NewArena()
	alt1 := a.New(5, NodeGapRef, ZeroNode, ZeroNode)
	alt2 := a.New(5, NodeGapCon, ZeroNode, ZeroNode)
	primary := a.New(5, NodeMismatch, ZeroNode, a.New(5, NodeGapRef, alt1, a.New(5, NodeGapCon, alt2, ZeroNode)))

	alts := a.Alternates(primary)
	assert.Len(t, alts, 2)
}
