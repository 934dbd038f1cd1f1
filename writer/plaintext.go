package writer

import (
	"fmt"
	"io"
	"sort"

	"github.com/paudano/kestrel-sub001/variant"
)

// hgvs renders a call in HGVS genomic-coordinate style: SNPs as
// "seq:g.123A>T", insertions as "seq:g.123_124insACG", deletions as
// "seq:g.123_126del".
func hgvs(c *variant.Call) string {
	switch c.Type {
	case variant.SNP:
		return fmt.Sprintf("%s:g.%d%s>%s", c.RefSeqName, c.Start, c.Ref, c.Alt)
	case variant.Insertion:
		return fmt.Sprintf("%s:g.%d_%dins%s", c.RefSeqName, c.Start, c.Start+1, c.Alt)
	case variant.Deletion:
		end := c.Start + len(c.Ref) - 1
		if end == c.Start {
			return fmt.Sprintf("%s:g.%ddel", c.RefSeqName, c.Start)
		}
		return fmt.Sprintf("%s:g.%d_%ddel", c.RefSeqName, c.Start, end)
	default:
		return fmt.Sprintf("%s:g.%d?", c.RefSeqName, c.Start)
	}
}

// WritePlainText renders samples as one record per line,
// "<HGVS>  (<variantDepth>/<locusDepth>)", grouped first by sample then by
// region. Each sample group opens with a ">sample" header line; each region
// group within it opens with an indented region-name line.
func WritePlainText(w io.Writer, samples []SampleCalls) error {
	for _, s := range samples {
		if _, err := fmt.Fprintf(w, ">%s\n", s.Sample); err != nil {
			return err
		}
		byRegion := make(map[string][]*variant.Call)
		var regionOrder []string
		for _, c := range s.Calls {
			if _, ok := byRegion[c.RegionName]; !ok {
				regionOrder = append(regionOrder, c.RegionName)
			}
			byRegion[c.RegionName] = append(byRegion[c.RegionName], c)
		}
		sort.Strings(regionOrder)
		for _, region := range regionOrder {
			if _, err := fmt.Fprintf(w, "  %s\n", region); err != nil {
				return err
			}
			calls := byRegion[region]
			sort.Slice(calls, func(i, j int) bool { return calls[i].Start < calls[j].Start })
			for _, c := range calls {
				_, err := fmt.Fprintf(w, "    %s  (%d/%d)\n", hgvs(c), c.VariantDepth, c.LocusDepth)
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}
