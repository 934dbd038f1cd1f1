package variant

import (
	"sort"

	"github.com/paudano/kestrel-sub001/active"
	"github.com/paudano/kestrel-sub001/hap"
	"github.com/paudano/kestrel-sub001/kmer"
	"github.com/paudano/kestrel-sub001/refregion"
)

// Opts configures variant extraction.
type Opts struct {
	// ByReference reports Start in absolute reference coordinates when true
	// (default), or region-relative coordinates when false.
	ByReference bool
	// CallAmbiguousVariant keeps variants over ambiguous reference bases
	// when true (default); IsAmbiguous is set regardless.
	CallAmbiguousVariant bool
}

// DefaultOpts holds the default Opts values.
var DefaultOpts = Opts{ByReference: true, CallAmbiguousVariant: true}

// Caller accumulates variant calls across every region processed in a run,
// merging calls with equal keys and tracking haplotype evidence and depth.
type Caller struct {
	opts  Opts
	calls map[key]*Call
	order []*Call
}

// NewCaller returns an empty Caller.
func NewCaller(opts Opts) *Caller {
	return &Caller{opts: opts, calls: make(map[key]*Call)}
}

// AddRegion decomposes every haplotype's CIGAR into variant events and
// merges them into the caller's running set. wildTypeDepth is the
// region's reference-supporting depth contribution to locusDepth, supplied
// by the caller (e.g. the region's flank-anchor k-mer counts); it may be 0
// when no such estimate is available. regionName is recorded on every
// emitted Call so writers can group and label output by region.
func (c *Caller) AddRegion(rr *refregion.Region, ar active.Region, haplotypes []hap.Haplotype, wildTypeDepth uint32, regionName string) {
	var regionDepth uint32
	var touched []*Call

	for _, h := range haplotypes {
		regionDepth += h.MinDepth
		calls := c.decompose(rr, ar, h, regionName)
		for _, nc := range calls {
			k := nc.key()
			if existing, ok := c.calls[k]; ok {
				existing.Haplotypes = append(existing.Haplotypes, h.Seq)
				existing.VariantDepth += h.MinDepth
				touched = append(touched, existing)
				continue
			}
			nc.Haplotypes = []string{h.Seq}
			nc.VariantDepth = h.MinDepth
			c.calls[k] = nc
			c.order = append(c.order, nc)
			touched = append(touched, nc)
		}
	}

	locusDepth := regionDepth + wildTypeDepth
	seen := make(map[*Call]bool)
	for _, call := range touched {
		if seen[call] {
			continue
		}
		seen[call] = true
		call.LocusDepth = locusDepth
	}
}

// decompose walks one haplotype's CIGAR (relative to the reference window
// the builder aligned it against, starting at region-sequence offset
// ar.LIdx for a forward build or ar.LIdx for a reverse build reported back
// in reference-forward orientation) and emits SNP/INSERTION/DELETION
// events.
func (c *Caller) decompose(rr *refregion.Region, ar active.Region, h hap.Haplotype, regionName string) []*Call {
	var calls []*Call
	refSeqOffset := ar.LIdx // region-sequence offset of the CIGAR's first reference base
	conOffset := 0
	for _, op := range h.CIGAR {
		switch op.Op {
		case '=':
			refSeqOffset += op.Len
			conOffset += op.Len
		case 'X':
			for i := 0; i < op.Len; i++ {
				if call := c.snpCall(rr, refSeqOffset, h.Seq[conOffset], regionName); call != nil {
					calls = append(calls, call)
				}
				refSeqOffset++
				conOffset++
			}
		case 'I':
			if call := c.insertionCall(rr, refSeqOffset, h.Seq[conOffset:conOffset+op.Len], regionName); call != nil {
				calls = append(calls, call)
			}
			conOffset += op.Len
		case 'D':
			if call := c.deletionCall(rr, refSeqOffset, op.Len, regionName); call != nil {
				calls = append(calls, call)
			}
			refSeqOffset += op.Len
		}
	}
	return calls
}

func (c *Caller) start(rr *refregion.Region, refSeqOffset int) int {
	if c.opts.ByReference {
		return rr.RefOffset(refSeqOffset) + 1
	}
	return rr.RegionCoord(refSeqOffset)
}

func (c *Caller) dropped(rr *refregion.Region, startOffset, endOffsetExclusive int) (ambiguous, drop bool) {
	startCoord := rr.RegionCoord(startOffset)
	endCoord := rr.RegionCoord(endOffsetExclusive - 1)
	if rr.IsFlank(startCoord, endCoord) {
		return false, true
	}
	seq := rr.Seq()
	end := endOffsetExclusive
	if end > len(seq) {
		end = len(seq)
	}
	for i := startOffset; i < end; i++ {
		if kmer.IsAmbiguous(seq[i]) {
			ambiguous = true
			break
		}
	}
	if ambiguous && !c.opts.CallAmbiguousVariant {
		return true, true
	}
	return ambiguous, false
}

func (c *Caller) snpCall(rr *refregion.Region, refSeqOffset int, altBase byte, regionName string) *Call {
	ambiguous, drop := c.dropped(rr, refSeqOffset, refSeqOffset+1)
	if drop {
		return nil
	}
	return &Call{
		RefSeqName:  rr.RefName(),
		Start:       c.start(rr, refSeqOffset),
		Type:        SNP,
		Ref:         rr.Seq()[refSeqOffset : refSeqOffset+1],
		Alt:         string(altBase),
		IsAmbiguous: ambiguous,
		RegionName:  regionName,
	}
}

func (c *Caller) insertionCall(rr *refregion.Region, refSeqOffset int, inserted string, regionName string) *Call {
	ambiguous, drop := c.dropped(rr, refSeqOffset, refSeqOffset+1)
	if drop {
		return nil
	}
	return &Call{
		RefSeqName:  rr.RefName(),
		Start:       c.start(rr, refSeqOffset),
		Type:        Insertion,
		Ref:         "",
		Alt:         inserted,
		IsAmbiguous: ambiguous,
		RegionName:  regionName,
	}
}

func (c *Caller) deletionCall(rr *refregion.Region, refSeqOffset, n int, regionName string) *Call {
	ambiguous, drop := c.dropped(rr, refSeqOffset, refSeqOffset+n)
	if drop {
		return nil
	}
	end := refSeqOffset + n
	if end > len(rr.Seq()) {
		end = len(rr.Seq())
	}
	return &Call{
		RefSeqName:  rr.RefName(),
		Start:       c.start(rr, refSeqOffset),
		Type:        Deletion,
		Ref:         rr.Seq()[refSeqOffset:end],
		Alt:         "",
		IsAmbiguous: ambiguous,
		RegionName:  regionName,
	}
}

// Calls returns every accumulated call, sorted by (sequenceName, start,
// type, ref, alt) for stable emission order.
func (c *Caller) Calls() []*Call {
	out := make([]*Call, len(c.order))
	copy(out, c.order)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RefSeqName != b.RefSeqName {
			return a.RefSeqName < b.RefSeqName
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Ref != b.Ref {
			return a.Ref < b.Ref
		}
		return a.Alt < b.Alt
	})
	return out
}
