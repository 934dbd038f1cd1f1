// Package kmer implements the bit-packed k-mer representation shared by the
// reference region model, the active-region detector and the haplotype
// builder, along with the Counter interface the core consumes to query
// k-mer frequencies.
//
// Encoding follows github.com/grailbio/bio/fusion's kmerizer: each base
// occupies 2 bits, packed most-significant-base-first into the low 2*k
// bits of a uint64, so k is bounded to 32.
package kmer

import (
	"strings"
)

// Base is one of the four DNA bases, ordinal-encoded 0..3 for A, C, G, T.
type Base uint8

const (
	A Base = 0
	C Base = 1
	G Base = 2
	T Base = 3
)

// String returns the single-character representation of b.
func (b Base) String() string {
	return string(baseToASCII[b&3])
}

var baseToASCII = [4]byte{'A', 'C', 'G', 'T'}

const invalidBase = uint8(255)

var asciiToBase [256]uint8
var asciiToRevCompBase [256]uint8

func init() {
	for i := range asciiToBase {
		asciiToBase[i] = invalidBase
		asciiToRevCompBase[i] = invalidBase
	}
	set := func(ch byte, b, rc Base) {
		asciiToBase[ch] = uint8(b)
		asciiToRevCompBase[ch] = uint8(rc)
	}
	set('A', A, T)
	set('a', A, T)
	set('C', C, G)
	set('c', C, G)
	set('G', G, C)
	set('g', G, C)
	set('T', T, A)
	set('t', T, A)
}

// IsAmbiguous reports whether ch is outside the {A,C,G,T} alphabet
// (case-insensitively).
func IsAmbiguous(ch byte) bool {
	return asciiToBase[ch] == invalidBase
}

// BaseAt returns the ordinal of ch and whether ch is an unambiguous base.
func BaseAt(ch byte) (Base, bool) {
	v := asciiToBase[ch]
	if v == invalidBase {
		return 0, false
	}
	return Base(v), true
}

// Kmer is a compact, strand-aware encoding of a sequence of up to 32 bases,
// two bits per base, most-significant base first within the occupied low
// bits. Equality on Kmer values of the same length is strand-aware sequence
// equality; see Canonical for the strand-agnostic notion.
type Kmer uint64

// Invalid is a sentinel returned by encoders that hit an ambiguous base and
// have no substitution policy.
const Invalid = Kmer(0xffffffffffffffff)

// Mask returns the bitmask covering the low 2*length bits used by a k-mer of
// the given length.
func Mask(length int) Kmer {
	if length >= 32 {
		return ^Kmer(0)
	}
	return ^(^Kmer(0) << uint(length*2))
}

// Encode packs seq (exactly `length` ASCII bases) into a Kmer. It returns
// ok=false if seq contains an ambiguous base or is not exactly length bytes
// long.
func Encode(seq string, length int) (k Kmer, ok bool) {
	if len(seq) != length {
		return 0, false
	}
	for i := 0; i < length; i++ {
		b := asciiToBase[seq[i]]
		if b == invalidBase {
			return 0, false
		}
		k = (k << 2) | Kmer(b)
	}
	return k, true
}

// EncodeSubstituting packs seq the same way Encode does, but replaces any
// ambiguous base with sub instead of failing. This implements the rule
// that a k-mer window touching an ambiguous reference base is queried as if
// the ambiguous position held `sub` (conventionally A).
func EncodeSubstituting(seq string, length int, sub Base) Kmer {
	var k Kmer
	for i := 0; i < length; i++ {
		b := asciiToBase[seq[i]]
		if b == invalidBase {
			b = uint8(sub)
		}
		k = (k << 2) | Kmer(b)
	}
	return k
}

// ReverseComplement returns the reverse complement of k, a k-mer of the
// given length.
func ReverseComplement(k Kmer, length int) Kmer {
	var rc Kmer
	for i := 0; i < length; i++ {
		rc = (rc << 2) | (3 - (k & 3))
		k >>= 2
	}
	return rc
}

// Canonical returns the lexicographically smaller of k and its reverse
// complement: a strand-agnostic notion of k-mer equality.
func Canonical(k Kmer, length int) Kmer {
	rc := ReverseComplement(k, length)
	if rc < k {
		return rc
	}
	return k
}

// ShiftAppend forms the next k-mer obtained by dropping the leftmost
// (most-significant) base of k and appending base at the right
// (least-significant) end — the forward-build extension used when walking
// from a left anchor toward the right.
func ShiftAppend(k Kmer, length int, base Base) Kmer {
	return ((k << 2) | Kmer(base)) & Mask(length)
}

// ShiftPrepend forms the next k-mer obtained by dropping the rightmost base
// of k and prepending base at the left end — the reverse-build extension
// used when walking from a right anchor toward the left.
func ShiftPrepend(k Kmer, length int, base Base) Kmer {
	shift := uint(length-1) * 2
	return (k >> 2) | (Kmer(base) << shift)
}

// String renders all 32 base slots of k as an ASCII base string (Seq(32));
// a k-mer shorter than 32 bases shows leading 'A's before its own bases.
func (k Kmer) String() string {
	return k.Seq(32)
}

// Seq renders the low `length` bases of k to an ASCII string,
// most-significant base first.
func (k Kmer) Seq(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	buf := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		buf[i] = baseToASCII[k&3]
		k >>= 2
	}
	sb.Write(buf)
	return sb.String()
}

// PosKmers is the pair of forward and reverse-complement encodings of the
// k-mer occupying a sequence window, plus the offset of that window's first
// base within the sequence it was scanned from.
type PosKmers struct {
	Pos                        int
	Forward, ReverseComplement Kmer
}

// MinKmer returns the canonical (strand-agnostic) encoding for this window.
func (p PosKmers) MinKmer() Kmer {
	if p.Forward < p.ReverseComplement {
		return p.Forward
	}
	return p.ReverseComplement
}

// Kmerizer incrementally scans all length-k windows of a sequence,
// maintaining both the forward and reverse-complement encodings with O(1)
// work per step. Ambiguous bases are skipped: windows covering them are not
// emitted by Scan. Grounded on fusion/kmer.go's kmerizer.
type Kmerizer struct {
	length int
	mask   Kmer

	seq string
	si  int
	cur PosKmers
	ok  bool
}

// NewKmerizer returns a Kmerizer for the given k-mer length.
func NewKmerizer(length int) *Kmerizer {
	return &Kmerizer{length: length, mask: Mask(length)}
}

// Reset rewinds the Kmerizer to scan seq from the beginning.
func (kz *Kmerizer) Reset(seq string) {
	kz.seq = seq
	kz.si = 0
	kz.ok = false
}

// Scan advances to the next unambiguous length-k window, returning false
// once the sequence is exhausted.
func (kz *Kmerizer) Scan() bool {
	if kz.ok && kz.si+kz.length <= len(kz.seq) {
		nextCh := kz.seq[kz.si+kz.length-1]
		if b := asciiToBase[nextCh]; b != invalidBase {
			kz.cur.Pos = kz.si
			kz.cur.Forward = ((kz.cur.Forward << 2) | Kmer(b)) & kz.mask
			shift := Kmer(kz.length-1) * 2
			kz.cur.ReverseComplement = (kz.cur.ReverseComplement >> 2) | (Kmer(asciiToRevCompBase[nextCh]) << shift)
			kz.si++
			return true
		}
	}
	for kz.si+kz.length <= len(kz.seq) {
		window := kz.seq[kz.si : kz.si+kz.length]
		fwd, ok := Encode(window, kz.length)
		if !ok {
			kz.si = nextAmbiguousPosition(kz.seq, kz.si) + 1
			kz.ok = false
			continue
		}
		kz.cur = PosKmers{Pos: kz.si, Forward: fwd, ReverseComplement: ReverseComplement(fwd, kz.length)}
		kz.si++
		kz.ok = true
		return true
	}
	kz.ok = false
	return false
}

// Get returns the window most recently produced by Scan.
func (kz *Kmerizer) Get() PosKmers { return kz.cur }

func nextAmbiguousPosition(seq string, si int) int {
	for i := si; i < len(seq); i++ {
		if asciiToBase[seq[i]] == invalidBase {
			return i
		}
	}
	return len(seq)
}
