package writer

import (
	"fmt"
	"io"
)

// WriteTSV renders samples as a tab-delimited table: one header line, then
// one row per (sample, call), columns sample, reference, region, locus,
// ref, alt, var_depth, region_depth.
func WriteTSV(w io.Writer, samples []SampleCalls) error {
	if _, err := fmt.Fprintln(w, "sample\treference\tregion\tlocus\tref\talt\tvar_depth\tregion_depth"); err != nil {
		return err
	}
	for _, s := range samples {
		for _, c := range s.Calls {
			ref, alt := c.Ref, c.Alt
			if ref == "" {
				ref = "-"
			}
			if alt == "" {
				alt = "-"
			}
			_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%d\t%d\n",
				s.Sample, c.RefSeqName, c.RegionName, c.Start, ref, alt, c.VariantDepth, c.LocusDepth)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
