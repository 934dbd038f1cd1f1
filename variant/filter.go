package variant

// Filter maps a Call to a (possibly rewritten) Call, or to nil to drop it.
// A pipeline short-circuits as soon as any filter returns nil.
type Filter func(*Call) *Call

// Pipeline is an ordered chain of Filters.
type Pipeline struct {
	filters []Filter
}

// NewPipeline returns a Pipeline running filters in order.
func NewPipeline(filters ...Filter) *Pipeline {
	return &Pipeline{filters: filters}
}

// Apply runs every call in calls through the pipeline, returning only the
// survivors (rewritten where a filter did so).
func (p *Pipeline) Apply(calls []*Call) []*Call {
	var out []*Call
	for _, c := range calls {
		cur := c
		for _, f := range p.filters {
			if cur == nil {
				break
			}
			cur = f(cur)
		}
		if cur != nil {
			out = append(out, cur)
		}
	}
	return out
}

// ByType keeps only calls whose Type is in kinds.
func ByType(kinds ...Type) Filter {
	allowed := make(map[Type]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	return func(c *Call) *Call {
		if allowed[c.Type] {
			return c
		}
		return nil
	}
}

// ByCoverage keeps calls meeting both a minimum variant-allele fraction
// (variantDepth/locusDepth >= fraction) and a minimum absolute depth
// (variantDepth >= minDepth).
func ByCoverage(fraction float64, minDepth uint32) Filter {
	return func(c *Call) *Call {
		if c.VariantDepth < minDepth {
			return nil
		}
		if c.LocusDepth == 0 {
			return nil
		}
		if float64(c.VariantDepth)/float64(c.LocusDepth) < fraction {
			return nil
		}
		return c
	}
}

// ByDistanceFromEnds keeps calls whose Start lies at least minDistance
// region/reference positions from either end of the span [lo, hi]
// (inclusive), given by the caller per region.
func ByDistanceFromEnds(lo, hi, minDistance int) Filter {
	return func(c *Call) *Call {
		if c.Start-lo < minDistance || hi-c.Start < minDistance {
			return nil
		}
		return c
	}
}
