// Package variant implements variant extraction from aligned haplotypes
// and the pluggable per-variant filter pipeline.
package variant

// Type tags a variant call's kind.
type Type uint8

const (
	SNP Type = iota
	Insertion
	Deletion
)

func (t Type) String() string {
	switch t {
	case SNP:
		return "SNP"
	case Insertion:
		return "INS"
	case Deletion:
		return "DEL"
	default:
		return "?"
	}
}

// key identifies a variant record for merging: (refSeqName, start, type,
// ref, alt).
type key struct {
	refSeqName string
	start      int
	typ        Type
	ref, alt   string
}

// Call is one variant record. Haplotypes is a bag, not
// a set: evidence accumulates across every haplotype that produced this
// exact call.
type Call struct {
	RefSeqName string
	Start      int // 1-based; region- or reference-relative per Opts.ByReference
	Type       Type
	Ref, Alt   string

	Haplotypes   []string // haplotype sequences contributing to this call
	VariantDepth uint32
	LocusDepth   uint32
	IsAmbiguous  bool

	RegionName string
}

func (c *Call) key() key {
	return key{refSeqName: c.RefSeqName, start: c.Start, typ: c.Type, ref: c.Ref, alt: c.Alt}
}
