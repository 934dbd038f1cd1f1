package fastaref

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testFastaData  = ">seq1\nACGTA\nCGTAC\nGT\n>seq2 A viral sequence\nACGT\nACGT\n"
	testFastaIndex = "seq1\t12\t6\t5\t6\nseq2\t8\t44\t4\t5\n"
)

func TestBases(t *testing.T) {
	tests := []struct {
		seq        string
		start, end uint64
		want       string
		wantErr    bool
	}{
		{"seq1", 1, 2, "C", false},
		{"seq1", 1, 6, "CGTAC", false},
		{"seq1", 0, 12, "ACGTACGTACGT", false},
		{"seq1", 10, 12, "GT", false},
		{"seq2", 0, 8, "ACGTACGT", false},
		{"seq2", 2, 5, "GTA", false},
		{"seq0", 0, 1, "", true},
		{"seq1", 10, 13, "", true},
		{"seq1", 4, 3, "", true},
	}
	unindexed, err := Load(strings.NewReader(testFastaData))
	require.NoError(t, err)
	indexed, err := NewIndexed(strings.NewReader(testFastaData), strings.NewReader(testFastaIndex))
	require.NoError(t, err)

	for _, tt := range tests {
		got, err := unindexed.Bases(tt.seq, tt.start, tt.end)
		assert.Equal(t, tt.wantErr, err != nil, "unindexed %+v", tt)
		assert.Equal(t, tt.want, got)

		got, err = indexed.Bases(tt.seq, tt.start, tt.end)
		assert.Equal(t, tt.wantErr, err != nil, "indexed %+v", tt)
		assert.Equal(t, tt.want, got)
	}
}

func TestLen(t *testing.T) {
	unindexed, err := Load(strings.NewReader(testFastaData))
	require.NoError(t, err)
	indexed, err := NewIndexed(strings.NewReader(testFastaData), strings.NewReader(testFastaIndex))
	require.NoError(t, err)

	n, err := unindexed.Len("seq1")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), n)

	n, err = indexed.Len("seq2")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), n)

	_, err = unindexed.Len("seq0")
	assert.Error(t, err)
}

func TestSeqNames(t *testing.T) {
	unindexed, err := Load(strings.NewReader(testFastaData))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"seq1", "seq2"}, unindexed.SeqNames())

	indexed, err := NewIndexed(strings.NewReader(testFastaData), strings.NewReader(testFastaIndex))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"seq1", "seq2"}, indexed.SeqNames())
}

func TestReferencesDigestMatchesAcrossLoaders(t *testing.T) {
	unindexed, err := Load(strings.NewReader(testFastaData))
	require.NoError(t, err)
	indexed, err := NewIndexed(strings.NewReader(testFastaData), strings.NewReader(testFastaIndex))
	require.NoError(t, err)

	byName := func(refs []Reference) map[string]Reference {
		m := make(map[string]Reference, len(refs))
		for _, r := range refs {
			m[r.Name] = r
		}
		return m
	}
	u, i := byName(unindexed.References()), byName(indexed.References())
	require.Contains(t, u, "seq1")
	require.Contains(t, i, "seq1")
	assert.Equal(t, u["seq1"].Digest, i["seq1"].Digest)
	assert.NotEmpty(t, u["seq1"].Digest)
	assert.Equal(t, uint64(12), u["seq1"].Size)
}

func TestFaiToReferenceLengths(t *testing.T) {
	fai := "chr1\t250000000\t6\t60\t61\nchr2\t199000000\t6\t60\t61\n"
	lengths, err := FaiToReferenceLengths(strings.NewReader(fai))
	require.NoError(t, err)
	assert.Equal(t, uint64(250000000), lengths["chr1"])
	assert.Equal(t, uint64(199000000), lengths["chr2"])
}

func TestGenerateIndex(t *testing.T) {
	generate := func(fa string) string {
		var buf bytes.Buffer
		require.NoError(t, GenerateIndex(&buf, strings.NewReader(fa)))
		return buf.String()
	}

	fa := ">E0\nGGTGAAATC\nCCTGAAATC\nAAAATTGCT\n>E1\nGTCCCTCCCCAGACATGGCCCTGGGAGGC\n" +
		">E2\nCCGCGCCCGCGCCCCCGCCGCC\n>E3\nGTCAAGGTTGCACAG\n>E4\nATGAATCATGTGGTAAAA\n"
	fai := generate(fa)
	assert.Equal(t,
		"E0\t27\t4\t9\t10\n"+
			"E1\t29\t38\t29\t30\n"+
			"E2\t22\t72\t22\t23\n"+
			"E3\t15\t99\t15\t16\n"+
			"E4\t18\t119\t18\t19\n", fai)

	indexed, err := NewIndexed(strings.NewReader(fa), strings.NewReader(fai))
	require.NoError(t, err)
	l, err := indexed.Len("E3")
	require.NoError(t, err)
	assert.Equal(t, uint64(15), l)
	seq, err := indexed.Bases("E3", 0, l)
	require.NoError(t, err)
	assert.Equal(t, "GTCAAGGTTGCACAG", seq)

	var empty bytes.Buffer
	assert.Error(t, GenerateIndex(&empty, strings.NewReader("")))
}
