// Package writer renders variant calls and haplotypes to the external
// formats the core never produces itself: VCF 4.2, a tab-delimited table,
// plain-text HGVS-style records, and a SAM 1.5 haplotype dump.
package writer

import "github.com/paudano/kestrel-sub001/variant"

// SampleCalls is one sample's surviving variant calls, keyed by the sample
// name used in multi-sample output.
type SampleCalls struct {
	Sample string
	Calls  []*variant.Call
}

// anchorVariant applies the VCF/plain-text anchor-base convention: INSERTION
// and DELETION records prepend the base at start-1, unless start==1 in which
// case a base is appended instead: the base at start for an insertion, the
// base just after the deleted span (start+len(Ref)) for a deletion. SNPs
// pass through unchanged.
// get(pos) must return the single reference base at 1-based position pos.
func anchorVariant(c *variant.Call, get func(pos int) (string, error)) (start int, ref, alt string, err error) {
	if c.Type == variant.SNP {
		return c.Start, c.Ref, c.Alt, nil
	}
	if c.Start == 1 {
		end := c.Start + len(c.Ref)
		if c.Type == variant.Insertion {
			end = c.Start
		}
		anchor, err := get(end)
		if err != nil {
			return 0, "", "", err
		}
		return c.Start, c.Ref + anchor, c.Alt + anchor, nil
	}
	anchor, err := get(c.Start - 1)
	if err != nil {
		return 0, "", "", err
	}
	return c.Start - 1, anchor + c.Ref, anchor + c.Alt, nil
}
