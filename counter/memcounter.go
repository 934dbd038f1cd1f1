// Package counter provides two concrete kmer.Counter implementations: an
// in-memory sharded map built while scanning a sample's reads, and a
// memory-mapped reader for a pre-built indexed k-mer count file. Both are
// external collaborators — the core only ever sees the kmer.Counter
// interface.
package counter

import (
	"sync"

	"github.com/blainsmith/seahash"

	"github.com/paudano/kestrel-sub001/kmer"
)

const numShards = 256

// MemCounter is a thread-safe, sharded map[kmer.Kmer]uint32. It is built by
// calling Add for every k-mer observed in a sample's reads (counting is an
// external, out-of-scope concern; Add is provided so a caller's read scanner
// can populate one), then frozen for read-only Get queries by the core.
//
// Sharded similarly in spirit to fusion's kmerIndex, but with a plain Go map
// per shard since the core's working set (one sample's reads) does not
// warrant the mmap'd linear-probing table fusion uses for the much larger
// whole-transcriptome gene index.
type MemCounter struct {
	shards [numShards]memShard
}

type memShard struct {
	mu     sync.Mutex
	counts map[kmer.Kmer]uint32
}

// NewMemCounter returns an empty MemCounter.
func NewMemCounter() *MemCounter {
	m := &MemCounter{}
	for i := range m.shards {
		m.shards[i].counts = make(map[kmer.Kmer]uint32)
	}
	return m
}

func (m *MemCounter) shard(k kmer.Kmer) *memShard {
	h := hashKmer(k)
	return &m.shards[h%numShards]
}

func hashKmer(k kmer.Kmer) uint64 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(k >> (8 * i))
	}
	return seahash.Sum64(buf[:])
}

// Add increments the count for k by delta, applying minCount floor filtering
// at query time rather than insertion time so partial scans remain mergeable.
func (m *MemCounter) Add(k kmer.Kmer, delta uint32) {
	s := m.shard(k)
	s.mu.Lock()
	s.counts[k] += delta
	s.mu.Unlock()
}

// Get implements kmer.Counter. Unknown k-mers report 0.
func (m *MemCounter) Get(k kmer.Kmer) uint32 {
	s := m.shard(k)
	s.mu.Lock()
	v := s.counts[k]
	s.mu.Unlock()
	return v
}

// WithMinCount wraps a Counter so that any count below minCount reads as 0.
// A minCount of 0 or 1 returns c unchanged.
func WithMinCount(c kmer.Counter, minCount uint32) kmer.Counter {
	if minCount <= 1 {
		return c
	}
	return kmer.CounterFunc(func(k kmer.Kmer) uint32 {
		v := c.Get(k)
		if v < minCount {
			return 0
		}
		return v
	})
}
