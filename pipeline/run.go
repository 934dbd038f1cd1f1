// Package pipeline wires the core's components into the single cooperative
// run described for the command-line front end: for each requested
// reference interval, build its region model, detect active regions,
// build haplotypes, and decompose them into variant calls.
package pipeline

import (
	"context"
	"fmt"

	"github.com/paudano/kestrel-sub001/active"
	"github.com/paudano/kestrel-sub001/align"
	"github.com/paudano/kestrel-sub001/fastaref"
	"github.com/paudano/kestrel-sub001/hap"
	"github.com/paudano/kestrel-sub001/interval"
	"github.com/paudano/kestrel-sub001/kerrors"
	"github.com/paudano/kestrel-sub001/kmer"
	"github.com/paudano/kestrel-sub001/refregion"
	"github.com/paudano/kestrel-sub001/variant"
)

// Opts configures one sample's run across the components each owns: k-mer
// length, alignment weights, and the per-component option structs.
type Opts struct {
	KmerLen          int
	Weights          align.Weights
	FlankLen         int // 0 means refregion.DefaultFlankLen(KmerLen)
	CountBothStrands bool
	Active           active.Opts
	Haplotype        hap.Opts
	Variant          variant.Opts
}

// DefaultOpts holds every component's default parameters at the given
// k-mer length.
func DefaultOpts(k int) Opts {
	return Opts{
		KmerLen:          k,
		Weights:          align.DefaultWeights.Normalize(),
		CountBothStrands: true,
		Active:           active.DefaultOpts,
		Haplotype:        hap.DefaultOpts,
		Variant:          variant.DefaultOpts,
	}
}

// Result is one sample's run output: every surviving variant call and every
// haplotype the builder resolved, ready for the writer package.
type Result struct {
	Calls      []*variant.Call
	Haplotypes []HaplotypeResult
}

// HaplotypeResult pairs a resolved haplotype with the placement information
// the SAM dump needs.
type HaplotypeResult struct {
	RefSeqName string
	Pos        int // 1-based reference position of the active region's left index
	RegionName string
	Haplotype  hap.Haplotype
}

// Run scans every interval in intervals (or, if intervals is nil, the whole
// of every sequence in ref) against counter, and returns the accumulated
// variant calls (after filter, if non-nil) and resolved haplotypes.
func Run(ctx context.Context, ref fastaref.Source, intervals *interval.Source, counter kmer.Counter, opts Opts, filter *variant.Pipeline) (Result, error) {
	flankLen := opts.FlankLen
	if flankLen == 0 {
		flankLen = refregion.DefaultFlankLen(opts.KmerLen)
	}
	regionOpts := refregion.Opts{KmerLen: opts.KmerLen, FlankLen: flankLen, CountBothStrands: opts.CountBothStrands}
	maxGapLen := align.MaxGapLen(opts.Weights)

	caller := variant.NewCaller(opts.Variant)
	var haplotypeResults []HaplotypeResult

	seqNames := ref.SeqNames()
	for _, seqName := range seqNames {
		if err := ctx.Err(); err != nil {
			return Result{}, kerrors.E(kerrors.Interrupted, err)
		}
		recs, err := intervalRecordsFor(seqName, ref, intervals)
		if err != nil {
			return Result{}, err
		}
		if len(recs) == 0 {
			continue
		}
		seqLen, err := ref.Len(seqName)
		if err != nil {
			return Result{}, kerrors.E(kerrors.IO, err, "reference length", seqName)
		}
		fullSeq, err := ref.Bases(seqName, 0, seqLen)
		if err != nil {
			return Result{}, kerrors.E(kerrors.IO, err, "reference bases", seqName)
		}

		for _, rec := range recs {
			if err := ctx.Err(); err != nil {
				return Result{}, kerrors.E(kerrors.Interrupted, err)
			}
			rr, err := refregion.New(seqName, fullSeq, rec.Start, rec.End, counter, regionOpts)
			if err != nil {
				return Result{}, kerrors.E(kerrors.AnalysisLimit, err, "region", seqName, rec.Start, rec.End)
			}
			scanner := active.NewScanner(rr.Freq(), rr.Seq(), opts.KmerLen, opts.Active, maxGapLen)
			for _, ar := range scanner.Regions() {
				container := hap.Build(rr, ar, counter, opts.Weights, maxGapLen, opts.Haplotype)
				haplotypes := container.Haplotypes()
				if len(haplotypes) == 0 {
					continue
				}
				regionName := fmt.Sprintf("%s:%d-%d", seqName, rr.RefOffset(ar.LIdx)+1, rr.RefOffset(ar.RIdx)+1)
				caller.AddRegion(rr, ar, haplotypes, wildTypeDepth(rr, ar), regionName)
				pos := haplotypeStartPos(rr, ar)
				for _, h := range haplotypes {
					haplotypeResults = append(haplotypeResults, HaplotypeResult{
						RefSeqName: seqName,
						Pos:        pos,
						RegionName: regionName,
						Haplotype:  h,
					})
				}
			}
		}
	}

	calls := caller.Calls()
	if filter != nil {
		calls = filter.Apply(calls)
	}
	return Result{Calls: calls, Haplotypes: haplotypeResults}, nil
}

// wildTypeDepth estimates the region's reference-supporting depth
// contribution to locusDepth from its anchor k-mer frequencies.
func wildTypeDepth(rr *refregion.Region, ar active.Region) uint32 {
	freq := rr.Freq()
	switch {
	case ar.HasLeftAnchor() && ar.HasRightAnchor():
		l, r := freq[ar.LIdx], freq[ar.RIdx]
		if l < r {
			return l
		}
		return r
	case ar.HasLeftAnchor():
		return freq[ar.LIdx]
	case ar.HasRightAnchor():
		return freq[ar.RIdx]
	default:
		return 0
	}
}

// haplotypeStartPos returns the 1-based reference position of the first
// base of any haplotype hap.Build produces for ar, matching the window it
// builds from: seq[ar.LIdx:...] when a left anchor is present, else
// seq[max(ar.LIdx,0):...] walked from the right anchor.
func haplotypeStartPos(rr *refregion.Region, ar active.Region) int {
	start := ar.LIdx
	if start < 0 {
		start = 0
	}
	return rr.RefOffset(start) + 1
}

// intervalRecordsFor resolves the intervals to scan for seqName: the
// supplied source's records if present, or a single whole-sequence interval
// when intervals is nil (no interval file supplied).
func intervalRecordsFor(seqName string, ref fastaref.Source, intervals *interval.Source) ([]interval.Record, error) {
	if intervals != nil {
		return intervals.Records(seqName), nil
	}
	n, err := ref.Len(seqName)
	if err != nil {
		return nil, kerrors.E(kerrors.IO, err, "reference length", seqName)
	}
	return []interval.Record{{SeqName: seqName, Start: 0, End: int(n), IsForward: true}}, nil
}
