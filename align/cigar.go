package align

import (
	"fmt"
	"strings"
)

// CigarOp is a single collapsed CIGAR run.
type CigarOp struct {
	Len int
	Op  byte // '=', 'X', 'I', 'D'
}

// CIGAR is a CIGAR string as a sequence of collapsed runs, in reference
// (left-to-right) orientation regardless of which direction it was built in.
type CIGAR []CigarOp

func (c CIGAR) String() string {
	var b strings.Builder
	for _, op := range c {
		fmt.Fprintf(&b, "%d%c", op.Len, op.Op)
	}
	return b.String()
}

// RefLen counts reference bases consumed ('=','X','D'); QueryLen counts
// query bases consumed ('=','X','I').
func (c CIGAR) RefLen() int {
	n := 0
	for _, op := range c {
		if op.Op == '=' || op.Op == 'X' || op.Op == 'D' {
			n += op.Len
		}
	}
	return n
}

func (c CIGAR) QueryLen() int {
	n := 0
	for _, op := range c {
		if op.Op == '=' || op.Op == 'X' || op.Op == 'I' {
			n += op.Len
		}
	}
	return n
}

func opFor(t NodeType) byte {
	switch t {
	case NodeMatch:
		return '='
	case NodeMismatch:
		return 'X'
	case NodeGapRef:
		return 'I'
	case NodeGapCon:
		return 'D'
	default:
		return 0
	}
}

// ExtractCIGAR walks the trace chain starting at start back to ZeroNode,
// collapsing consecutive runs of the same op, and returns the CIGAR in
// reference-forward order. If reverse is true, the chain was built walking
// the reference right-to-left (a reverse build) and the collapsed runs are emitted
// in the opposite order so the result reads left-to-right in true reference
// orientation.
func (a *Arena) ExtractCIGAR(start NodeRef, reverse bool) CIGAR {
	var runs []CigarOp
	for r := start; r != ZeroNode; {
		n := a.Get(r)
		op := opFor(n.Type)
		if op == 0 {
			break
		}
		if len(runs) > 0 && runs[len(runs)-1].Op == op {
			runs[len(runs)-1].Len++
		} else {
			runs = append(runs, CigarOp{Len: 1, Op: op})
		}
		r = n.Next
	}
	if !reverse {
		for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
			runs[i], runs[j] = runs[j], runs[i]
		}
	}
	return CIGAR(runs)
}

// Alternates returns every alternate maximum-score node chained off start's
// Branch link, in the canonical order chooseMax produced them, excluding
// start itself. Used to enumerate tied alignments.
func (a *Arena) Alternates(start NodeRef) []NodeRef {
	var alts []NodeRef
	for r := a.Get(start).Branch; r != ZeroNode; {
		alts = append(alts, r)
		r = a.Get(r).Branch
	}
	return alts
}
