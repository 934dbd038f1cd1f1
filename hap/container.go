package hap

// Container is a bounded collection of haplotypes for one active region.
// It keeps at most maxSize entries, and among candidates beyond
// that it keeps only those with higher minimum depth than the weakest
// entry currently held; a tie rejects the incoming candidate.
type Container struct {
	entries []Haplotype
	max     int
}

// NewContainer returns an empty Container bounded to max entries.
func NewContainer(max int) *Container {
	if max < 1 {
		max = 1
	}
	return &Container{max: max}
}

// Add inserts h, evicting the weakest existing entry if the container is
// full and h is strictly better; reports whether h was kept.
func (c *Container) Add(h Haplotype) bool {
	if len(c.entries) < c.max {
		c.entries = append(c.entries, h)
		return true
	}
	worst := 0
	for i := 1; i < len(c.entries); i++ {
		if c.entries[i].MinDepth < c.entries[worst].MinDepth {
			worst = i
		}
	}
	if h.MinDepth <= c.entries[worst].MinDepth {
		return false
	}
	c.entries[worst] = h
	return true
}

// Haplotypes returns the container's contents in insertion order, except
// that an evicting Add puts the new haplotype in the evicted entry's slot.
func (c *Container) Haplotypes() []Haplotype {
	return c.entries
}

func (c *Container) Len() int { return len(c.entries) }
