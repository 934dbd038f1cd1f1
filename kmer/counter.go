package kmer

// Counter is the external k-mer frequency oracle the core consumes. It is pure, thread-safe and sample-scoped: Get(kmer) returns the same
// value for the life of a Counter, 0 for any k-mer it has never seen, and
// may be called concurrently from multiple goroutines.
//
// Counter answers a query on whatever strand the caller encoded `k` on; it
// performs no strand folding of its own. Callers that want combined
// forward+reverse-complement depth query both strands and sum, as the
// haplotype builder and the reference region model do.
//
// Construction of a Counter (from an in-memory k-mer map or a memory-mapped
// indexed count file) and the underlying sequence/format parsing it is built
// from are out of the core's scope; see the counter package for two
// concrete implementations.
type Counter interface {
	Get(k Kmer) uint32
}

// CounterFunc adapts a plain function to the Counter interface.
type CounterFunc func(Kmer) uint32

// Get implements Counter.
func (f CounterFunc) Get(k Kmer) uint32 { return f(k) }
