package align

// NodeType classifies a trace-graph transition.
type NodeType uint8

const (
	// NodeNone is the type of the shared ZeroNode sentinel.
	NodeNone NodeType = iota
	NodeMatch
	NodeMismatch
	NodeGapRef
	NodeGapCon
)

// canonicalRank implements the canonical tie-break order: "at the first
// position where two alternatives differ, the order is MISMATCH < GAP_REF <
// GAP_CON < MATCH." Lower rank is preferred as the primary (next) link; the
// rest chain off branch in ascending rank order.
func (t NodeType) canonicalRank() int {
	switch t {
	case NodeMismatch:
		return 0
	case NodeGapRef:
		return 1
	case NodeGapCon:
		return 2
	case NodeMatch:
		return 3
	default:
		return 4 // NodeNone: never wins a tie against a real transition.
	}
}

// NodeRef indexes a TraceNode within an Arena. The zero value, ZeroNode,
// refers to the shared sentinel with score 0 and type NodeNone; it is never
// produced by a transition, only ever a chain terminator.
type NodeRef int32

// ZeroNode is the shared empty-cell sentinel.
const ZeroNode NodeRef = 0

// TraceNode is an immutable trace-graph record.
type TraceNode struct {
	Score  float32
	Type   NodeType
	Next   NodeRef
	Branch NodeRef
}

// Arena owns every TraceNode produced while aligning one active region. Per
// the design notes, the arena is bound to the region's lifetime and can be
// dropped in one step (here, simply by dropping the last reference to it)
// once every haplotype walk over the region has finished.
type Arena struct {
	nodes []TraceNode
}

// NewArena returns an Arena pre-seeded with the ZeroNode sentinel at index 0.
func NewArena() *Arena {
	return &Arena{nodes: []TraceNode{{Type: NodeNone}}}
}

// New allocates a new, immutable TraceNode and returns its reference.
func (a *Arena) New(score float32, typ NodeType, next, branch NodeRef) NodeRef {
	a.nodes = append(a.nodes, TraceNode{Score: score, Type: typ, Next: next, Branch: branch})
	return NodeRef(len(a.nodes) - 1)
}

// Get dereferences r.
func (a *Arena) Get(r NodeRef) TraceNode {
	return a.nodes[r]
}

// candidate is one contributor to a max-score transition: its resulting
// node reference and the prospective new score if it is chosen.
type candidate struct {
	ref   NodeRef
	score float64
}

// chooseMax picks the maximum-scoring candidate(s), builds a new node of
// the given type on top of the canonically preferred one, and chains any
// other maximum-scoring candidates off Branch in canonical order.
// A score <= 0 clamps to ZeroNode ("any negative cell is clamped
// to ZERO_NODE") extended to non-positive since a zero-or-negative cell
// carries no information worth keeping in the sparse representation.
func (a *Arena) chooseMax(cands []candidate, typ NodeType) NodeRef {
	best := -1
	for i, c := range cands {
		if best < 0 || c.score > cands[best].score {
			best = i
		}
	}
	if best < 0 || cands[best].score <= 0 {
		return ZeroNode
	}
	bestScore := cands[best].score
	var tied []candidate
	for _, c := range cands {
		if c.score == bestScore {
			tied = append(tied, c)
		}
	}
	// Canonical order among tied predecessors: lowest rank (by the
	// predecessor node's own type) goes on Next; the rest chain off Branch,
	// each link an alias node carrying the alternate's own (score, type)
	// with Next pointing back into that alternate's own chain.
	sortByCanonicalRank(a, tied)
	branch := ZeroNode
	for i := len(tied) - 1; i > 0; i-- {
		alt := a.Get(tied[i].ref)
		branch = a.New(alt.Score, alt.Type, tied[i].ref, branch)
	}
	return a.New(float32(bestScore), typ, tied[0].ref, branch)
}

func sortByCanonicalRank(a *Arena, cands []candidate) {
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0; j-- {
			ri := a.Get(cands[j].ref).Type.canonicalRank()
			rj := a.Get(cands[j-1].ref).Type.canonicalRank()
			if ri < rj {
				cands[j], cands[j-1] = cands[j-1], cands[j]
			} else {
				break
			}
		}
	}
}

