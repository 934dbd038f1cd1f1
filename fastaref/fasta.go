// Package fastaref implements the reference source the core consumes: for
// each reference sequence a name, its bases, a byte size, and a content
// digest, loaded from FASTA text optionally accompanied by a samtools-style
// .fai index.
//
// Sequence names are the stretch of characters excluding spaces immediately
// after '>'; any text after a space is ignored ('>chr1 a comment' becomes
// 'chr1').
package fastaref

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/unsafe"
	"github.com/grailbio/bio/biosimd"
	"github.com/pkg/errors"
)

const (
	mib            = 1024 * 1024
	bufferInitSize = 300 * mib
)

// Reference describes one sequence of a loaded reference source: its name,
// byte length, and an MD5 content digest (the form used in VCF ##contig
// header lines).
type Reference struct {
	Name   string
	Size   uint64
	Digest string
}

// Source is a loaded reference sequence collection.
type Source interface {
	// Bases returns the substring of seqName over the 0-based half-open
	// interval [start, end).
	Bases(seqName string, start, end uint64) (string, error)

	// Len returns the length of seqName.
	Len(seqName string) (uint64, error)

	// SeqNames returns every sequence name, in FASTA file order.
	SeqNames() []string

	// References returns the descriptor for every sequence, in file order.
	References() []Reference
}

type opts struct {
	Clean bool
	Index []byte
}

// Opt is an optional argument to Load.
type Opt func(*opts)

// OptClean requests that returned sequences be cleaned (ambiguous bytes
// normalized) as biosimd.CleanASCIISeq* describes.
func OptClean(o *opts) { o.Clean = true }

// OptIndex supplies a pre-built .fai index, letting Load read the whole file
// with one pass instead of building an in-memory map incrementally. Callers
// reading many or all sequences should prefer this over NewIndexed.
func OptIndex(index []byte) Opt {
	return func(o *opts) { o.Index = index }
}

func makeOpts(userOpts ...Opt) opts {
	var parsed opts
	for _, o := range userOpts {
		o(&parsed)
	}
	return parsed
}

func digestOf(seq string) string {
	sum := md5.Sum([]byte(seq))
	return hex.EncodeToString(sum[:])
}

type memSource struct {
	seqs     map[string]string
	seqNames []string
	refs     []Reference
}

// Load reads all FASTA data from r into memory. Pass OptIndex when a .fai is
// available to read much faster.
func Load(r io.Reader, opts ...Opt) (Source, error) {
	parsed := makeOpts(opts...)
	if len(parsed.Index) == 0 {
		return loadEagerUnindexed(r, parsed)
	}
	index, err := parseIndex(strings.NewReader(string(parsed.Index)))
	if err != nil {
		return nil, err
	}
	return loadEagerIndexed(r, index, parsed)
}

func loadEagerUnindexed(r io.Reader, parsed opts) (Source, error) {
	f := &memSource{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	var seqName string
	var seq strings.Builder
	flush := func() {
		if seqName == "" {
			return
		}
		f.seqs[seqName] = seq.String()
		f.seqNames = append(f.seqNames, seqName)
		seq.Reset()
	}
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if seq.Len() != 0 {
				if seqName == "" {
					return nil, errors.Errorf("malformed FASTA file")
				}
				flush()
			}
			seqName = strings.Split(line[1:], " ")[0]
		} else {
			seq.WriteString(line)
		}
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	flush()
	if parsed.Clean {
		for name := range f.seqs {
			biosimd.CleanASCIISeqInplace(unsafe.StringToBytes(f.seqs[name]))
		}
	}
	f.refs = make([]Reference, len(f.seqNames))
	for i, name := range f.seqNames {
		f.refs[i] = Reference{Name: name, Size: uint64(len(f.seqs[name])), Digest: digestOf(f.seqs[name])}
	}
	return f, nil
}

// Bases implements Source.
func (f *memSource) Bases(seqName string, start, end uint64) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if end <= start {
		return "", fmt.Errorf("start must be less than end")
	}
	if end > uint64(len(s)) {
		return "", errors.Errorf("invalid query range %d-%d for sequence %s with length %d", start, end, seqName, len(s))
	}
	return s[start:end], nil
}

// Len implements Source.
func (f *memSource) Len(seqName string) (uint64, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return uint64(len(s)), nil
}

// SeqNames implements Source.
func (f *memSource) SeqNames() []string { return f.seqNames }

// References implements Source.
func (f *memSource) References() []Reference { return f.refs }
