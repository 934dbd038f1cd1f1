package counter

import (
	"encoding/binary"
	"io"
	"os"
	"sort"
	"unsafe"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
	"golang.org/x/sys/unix"

	"github.com/paudano/kestrel-sub001/kerrors"
	"github.com/paudano/kestrel-sub001/kmer"
)

// indexedEntrySize is the on-disk/mmap'd record size: an 8-byte packed kmer
// followed by a 4-byte count.
const indexedEntrySize = 12

// IndexedCounter is a read-only kmer.Counter backed by a memory-mapped,
// open-addressed hash table laid out on disk by BuildIndexFile. It is the
// "memory-mapped indexed count file" backend, grounded on
// fusion/kmer_index.go's sharded linear-probing table, simplified to a
// single table (a sample's k-mer set fits comfortably in one shard's worth
// of address space once mmap'd, unlike fusion's whole-transcriptome index).
type IndexedCounter struct {
	data       []byte
	tableStart uintptr
	size       uint64 // power of 2, number of slots
	mask       uint64
}

const maxProbe = 64

// OpenIndexed mmaps the indexed count file at path.
func OpenIndexed(path string) (*IndexedCounter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, kerrors.E(kerrors.NotFound, err, "open indexed k-mer count file", path)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, kerrors.E(kerrors.IO, err, path)
	}
	size := int(st.Size())
	if size < 8 {
		return nil, kerrors.E(kerrors.DataFormat, "indexed k-mer count file truncated", path)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, kerrors.E(kerrors.IO, err, "mmap", path)
	}
	nSlots := binary.LittleEndian.Uint64(data[:8])
	if uint64(size-8) < nSlots*indexedEntrySize {
		_ = unix.Munmap(data)
		return nil, kerrors.E(kerrors.DataFormat, "indexed k-mer count file size does not match header", path)
	}
	ic := &IndexedCounter{
		data:       data,
		tableStart: uintptr(unsafe.Pointer(&data[8])),
		size:       nSlots,
		mask:       nSlots - 1,
	}
	return ic, nil
}

// Close unmaps the underlying file.
func (ic *IndexedCounter) Close() error {
	return unix.Munmap(ic.data)
}

func hashKmerIndex(k kmer.Kmer) uint64 {
	return farm.Hash64WithSeed((*[8]byte)(unsafe.Pointer(&k))[:], 0)
}

// Get implements kmer.Counter.
func (ic *IndexedCounter) Get(k kmer.Kmer) uint32 {
	h := hashKmerIndex(k)
	slot := h & ic.mask
	for probe := 0; probe < maxProbe; probe++ {
		off := ic.tableStart + uintptr(slot)*indexedEntrySize
		entKmer := *(*kmer.Kmer)(unsafe.Pointer(off))
		if entKmer == kmer.Invalid {
			return 0
		}
		if entKmer == k {
			return *(*uint32)(unsafe.Pointer(off + 8))
		}
		slot = (slot + 1) & ic.mask
	}
	return 0
}

// BuildIndexFile writes a memory-mapped-readable indexed count file from an
// in-memory k-mer -> count map, at a power-of-two table size chosen for a
// load factor of at most 0.5.
func BuildIndexFile(w io.Writer, counts map[kmer.Kmer]uint32) error {
	minSlots := uint64(len(counts))*2 + 1
	nSlots := uint64(1)
	for nSlots < minSlots {
		nSlots <<= 1
	}
	mask := nSlots - 1

	table := make([]byte, nSlots*indexedEntrySize)
	for i := uint64(0); i < nSlots; i++ {
		off := i * indexedEntrySize
		binary.LittleEndian.PutUint64(table[off:off+8], uint64(kmer.Invalid))
	}

	keys := make([]kmer.Kmer, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		h := hashKmerIndex(k)
		slot := h & mask
		for probe := 0; ; probe++ {
			if probe > maxProbe {
				return kerrors.E(kerrors.AnalysisLimit, "indexed counter build exceeded max probe length")
			}
			off := slot * indexedEntrySize
			existing := kmer.Kmer(binary.LittleEndian.Uint64(table[off : off+8]))
			if existing == kmer.Invalid {
				binary.LittleEndian.PutUint64(table[off:off+8], uint64(k))
				binary.LittleEndian.PutUint32(table[off+8:off+12], counts[k])
				break
			}
			slot = (slot + 1) & mask
		}
	}

	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], nSlots)
	if _, err := w.Write(header[:]); err != nil {
		return kerrors.E(kerrors.IO, err, "write index header")
	}
	if _, err := w.Write(table); err != nil {
		return kerrors.E(kerrors.IO, err, "write index table")
	}
	log.Debug.Printf("counter: wrote indexed count file, %d entries in %d slots", len(counts), nSlots)
	return nil
}
