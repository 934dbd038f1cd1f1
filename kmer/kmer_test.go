package kmer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		seq string
		ok  bool
	}{
		{"ACGT", true},
		{"acgt", true},
		{"AANGT"[:4], false},
		{"ANGT", false},
		{"AC", false}, // wrong length for k=4
	}
	for _, test := range tests {
		k, ok := Encode(test.seq, 4)
		assert.Equal(t, test.ok, ok, test.seq)
		if ok {
			assert.Equal(t, "ACGT", k.Seq(4))
		}
	}
}

func TestEncodeSubstituting(t *testing.T) {
	k := EncodeSubstituting("ACNT", 4, A)
	assert.Equal(t, "ACAT", k.Seq(4))
}

func TestReverseComplement(t *testing.T) {
	k, ok := Encode("ACGT", 4)
	assert.True(t, ok)
	rc := ReverseComplement(k, 4)
	assert.Equal(t, "ACGT", rc.Seq(4)) // ACGT is its own reverse complement

	k2, _ := Encode("AAGG", 4)
	assert.Equal(t, "CCTT", ReverseComplement(k2, 4).Seq(4))
}

func TestCanonical(t *testing.T) {
	fwd, _ := Encode("AAAA", 4)
	rc, _ := Encode("TTTT", 4)
	assert.Equal(t, Canonical(fwd, 4), Canonical(rc, 4))
}

func TestShiftAppendPrepend(t *testing.T) {
	k, _ := Encode("ACGT", 4)
	appended := ShiftAppend(k, 4, A)
	assert.Equal(t, "CGTA", appended.Seq(4))

	prepended := ShiftPrepend(k, 4, T)
	assert.Equal(t, "TACG", prepended.Seq(4))
}

func TestKmerizer(t *testing.T) {
	kz := NewKmerizer(3)
	kz.Reset("ACGTAC")
	var got []PosKmers
	for kz.Scan() {
		got = append(got, kz.Get())
	}
	assert.Len(t, got, 4) // windows at 0,1,2,3

	for _, pk := range got {
		fwdSeq := pk.Forward.Seq(3)
		rcSeq := pk.ReverseComplement.Seq(3)
		assert.Equal(t, "ACGTAC"[pk.Pos:pk.Pos+3], fwdSeq)
		assert.Equal(t, ReverseComplement(pk.Forward, 3).Seq(3), rcSeq)
	}
}

func TestKmerizerSkipsAmbiguous(t *testing.T) {
	kz := NewKmerizer(3)
	kz.Reset("ACNGTAC")
	var positions []int
	for kz.Scan() {
		positions = append(positions, kz.Get().Pos)
	}
	// Windows [0,3), [1,4) and [2,5) touch the N at offset 2 and must be skipped.
	assert.Equal(t, []int{3, 4}, positions)
}

type mapCounter map[Kmer]uint32

func (m mapCounter) Get(k Kmer) uint32 { return m[k] }

func TestCounterFunc(t *testing.T) {
	var calls []Kmer
	c := CounterFunc(func(k Kmer) uint32 {
		calls = append(calls, k)
		return 7
	})
	k, _ := Encode("ACGT", 4)
	assert.EqualValues(t, 7, c.Get(k))
	assert.Equal(t, []Kmer{k}, calls)
}
