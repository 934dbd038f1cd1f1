package writer

import (
	"fmt"
	"io"
	"sort"

	"github.com/paudano/kestrel-sub001/fastaref"
	"github.com/paudano/kestrel-sub001/variant"
)

// vcfKey groups the per-sample FORMAT fields a VCF record reports for one
// locus: (sequenceName, start, type, ref, alt).
type vcfKey struct {
	seqName  string
	start    int
	typ      variant.Type
	ref, alt string
}

// WriteVCF renders samples as VCF 4.2, merging every sample's calls onto a
// shared set of records keyed by (sequence, start, type, ref, alt), each
// with one FORMAT column per sample. ref resolves anchor bases per the
// §4.8 anchor-base convention.
func WriteVCF(w io.Writer, ref fastaref.Source, programName, programVersion string, samples []SampleCalls) error {
	if _, err := fmt.Fprintf(w, "##fileformat=VCF4.2\n##source=%s%s\n", programName, programVersion); err != nil {
		return err
	}
	for _, r := range ref.References() {
		if _, err := fmt.Fprintf(w, "##contig=<ID=%s,length=%d,md5=%s>\n", r.Name, r.Size, r.Digest); err != nil {
			return err
		}
	}
	formatLines := []string{
		`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
		`##FORMAT=<ID=GDP,Number=A,Type=Integer,Description="Variant depth per alt allele">`,
		`##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Locus depth">`,
	}
	for _, l := range formatLines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	header := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT"
	for _, s := range samples {
		header += "\t" + s.Sample
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	getBase := func(seqName string, pos int) (string, error) {
		return ref.Bases(seqName, uint64(pos-1), uint64(pos))
	}

	type record struct {
		key    vcfKey
		values map[string][2]uint32 // sample -> (variantDepth, locusDepth)
	}
	records := make(map[vcfKey]*record)
	var order []vcfKey
	for _, s := range samples {
		for _, c := range s.Calls {
			start, rf, alt, err := anchorVariant(c, func(pos int) (string, error) { return getBase(c.RefSeqName, pos) })
			if err != nil {
				return err
			}
			k := vcfKey{seqName: c.RefSeqName, start: start, typ: c.Type, ref: rf, alt: alt}
			rec, ok := records[k]
			if !ok {
				rec = &record{key: k, values: make(map[string][2]uint32)}
				records[k] = rec
				order = append(order, k)
			}
			rec.values[s.Sample] = [2]uint32{c.VariantDepth, c.LocusDepth}
		}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.seqName != b.seqName {
			return a.seqName < b.seqName
		}
		if a.start != b.start {
			return a.start < b.start
		}
		if a.typ != b.typ {
			return a.typ < b.typ
		}
		if a.ref != b.ref {
			return a.ref < b.ref
		}
		return a.alt < b.alt
	})

	for _, k := range order {
		rec := records[k]
		line := fmt.Sprintf("%s\t%d\t.\t%s\t%s\t.\t.\t.\tGT:GDP:DP", k.seqName, k.start, k.ref, k.alt)
		for _, s := range samples {
			v, ok := rec.values[s.Sample]
			if !ok {
				line += "\t0:.:."
				continue
			}
			line += fmt.Sprintf("\t1:%d:%d", v[0], v[1])
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
