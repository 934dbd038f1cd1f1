package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestByTypeKeepsOnlyAllowedTypes(t *testing.T) {
	f := ByType(SNP, Insertion)
	snp := &Call{Type: SNP}
	ins := &Call{Type: Insertion}
	del := &Call{Type: Deletion}
	assert.Same(t, snp, f(snp))
	assert.Same(t, ins, f(ins))
	assert.Nil(t, f(del))
}

func TestByCoverageRequiresMinDepthAndFraction(t *testing.T) {
	f := ByCoverage(0.2, 3)
	assert.Nil(t, f(&Call{VariantDepth: 2, LocusDepth: 100})) // below minDepth
	assert.Nil(t, f(&Call{VariantDepth: 3, LocusDepth: 100})) // 0.03 < 0.2
	assert.Nil(t, f(&Call{VariantDepth: 5, LocusDepth: 0}))   // no locus depth
	c := &Call{VariantDepth: 5, LocusDepth: 20}               // 0.25 >= 0.2
	assert.Same(t, c, f(c))
}

func TestByDistanceFromEndsRequiresMargin(t *testing.T) {
	f := ByDistanceFromEnds(10, 30, 5)
	assert.Nil(t, f(&Call{Start: 12})) // 2 from lo, below minDistance
	assert.Nil(t, f(&Call{Start: 27})) // 3 from hi, below minDistance
	c := &Call{Start: 20}
	assert.Same(t, c, f(c))
}

func TestPipelineApplyShortCircuitsAndFiltersDrop(t *testing.T) {
	p := NewPipeline(ByType(SNP), ByCoverage(0.5, 1))
	calls := []*Call{
		{Type: SNP, VariantDepth: 8, LocusDepth: 10},      // passes both
		{Type: Deletion, VariantDepth: 8, LocusDepth: 10}, // dropped by type
		{Type: SNP, VariantDepth: 1, LocusDepth: 10},      // dropped by coverage
	}
	out := p.Apply(calls)
	assert.Len(t, out, 1)
	assert.Same(t, calls[0], out[0])
}

func TestPipelineApplyEmptyPipelineKeepsAll(t *testing.T) {
	p := NewPipeline()
	calls := []*Call{{Type: SNP}, {Type: Deletion}}
	out := p.Apply(calls)
	assert.Equal(t, calls, out)
}
