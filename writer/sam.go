package writer

import (
	"fmt"
	"io"

	"github.com/grailbio/hts/sam"

	"github.com/paudano/kestrel-sub001/fastaref"
	"github.com/paudano/kestrel-sub001/hap"
)

// HaplotypeRecord is one resolved haplotype ready for the SAM dump: its
// reference sequence, 1-based leftmost reference position (that of the
// active region's left index), and the haplotype itself.
type HaplotypeRecord struct {
	RefSeqName string
	Pos        int
	RegionName string
	Haplotype  hap.Haplotype
}

// WriteSAM renders records as a SAM 1.5 haplotype dump: an @HD/@SQ/@PG
// header followed by one unmapped-friendly alignment line per haplotype,
// each carrying custom tags XD (min depth), XN (region name), XL (haplotype
// length), XR (0 if the walk reached its opposite anchor, 1 otherwise).
func WriteSAM(w io.Writer, ref fastaref.Source, programName, programVersion string, records []HaplotypeRecord) error {
	refs := ref.References()
	samRefs := make([]*sam.Reference, 0, len(refs))
	for _, r := range refs {
		sr, err := sam.NewReference(r.Name, "", "", int(r.Size), nil, nil)
		if err != nil {
			return fmt.Errorf("writer: building @SQ for %s: %w", r.Name, err)
		}
		samRefs = append(samRefs, sr)
	}
	if _, err := sam.NewHeader(nil, samRefs); err != nil {
		return fmt.Errorf("writer: building SAM header: %w", err)
	}

	if _, err := fmt.Fprint(w, "@HD\tVN:1.5\tSO:coordinate\n"); err != nil {
		return err
	}
	for _, r := range refs {
		if _, err := fmt.Fprintf(w, "@SQ\tSN:%s\tLN:%d\n", r.Name, r.Size); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "@PG\tID:%s\tVN:%s\n", programName, programVersion); err != nil {
		return err
	}

	for _, rec := range records {
		h := rec.Haplotype
		xr := 0
		if !h.AtEnd {
			xr = 1
		}
		line := fmt.Sprintf("%s\t0\t%s\t%d\t255\t%s\t*\t0\t0\t%s\t*\tXD:i:%d\tXN:Z:%s\tXL:i:%d\tXR:i:%d\n",
			rec.RegionName, rec.RefSeqName, rec.Pos, h.CIGAR.String(), h.Seq, h.MinDepth, rec.RegionName, len(h.Seq), xr)
		if _, err := fmt.Fprint(w, line); err != nil {
			return err
		}
	}
	return nil
}
