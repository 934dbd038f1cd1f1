package fastaref

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

type indexedSource struct {
	seqs     map[string]indexEntry
	seqNames []string
	reader   io.ReadSeeker

	mutex     sync.Mutex
	bufOff    int64
	buf       []byte
	resultBuf []byte
	digests   map[string]string // lazily filled, one MD5 per sequence read
}

// NewIndexed builds a Source over fasta backed by a pre-built .fai index,
// performing random-access reads without loading fasta into memory.
func NewIndexed(fasta io.ReadSeeker, index io.Reader) (Source, error) {
	entries, err := parseIndex(index)
	if err != nil {
		return nil, err
	}
	f := &indexedSource{
		seqs:    make(map[string]indexEntry, len(entries)),
		reader:  fasta,
		digests: make(map[string]string),
	}
	for _, e := range entries {
		f.seqs[e.name] = e
		f.seqNames = append(f.seqNames, e.name)
	}
	sort.SliceStable(f.seqNames, func(i, j int) bool {
		return f.seqs[f.seqNames[i]].offset < f.seqs[f.seqNames[j]].offset
	})
	return f, nil
}

// FaiToReferenceLengths reads a .fai index and returns a map of reference
// name to reference length, without reading the FASTA data itself.
func FaiToReferenceLengths(index io.Reader) (map[string]uint64, error) {
	entries, err := parseIndex(index)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(entries))
	for _, e := range entries {
		out[e.name] = e.length
	}
	return out, nil
}

// Len implements Source.
func (f *indexedSource) Len(seqName string) (uint64, error) {
	e, ok := f.seqs[seqName]
	if !ok {
		return 0, fmt.Errorf("sequence not found in index: %s", seqName)
	}
	return e.length, nil
}

// read returns the range [off, off+n) from the underlying FASTA file,
// refilling the cursor buffer if the request falls outside it.
func (f *indexedSource) read(off int64, n int) ([]byte, error) {
	limit := off + int64(n)
	if off < f.bufOff || limit > f.bufOff+int64(len(f.buf)) {
		if newOffset, err := f.reader.Seek(off, io.SeekStart); err != nil || newOffset != off {
			return nil, fmt.Errorf("failed to seek to offset %d: %d, %v", off, newOffset, err)
		}
		bufSize := 8192
		if bufSize < n {
			bufSize = n
		}
		resizeBuf(&f.buf, bufSize)
		bytesRead, err := f.reader.Read(f.buf)
		if bytesRead < n {
			return nil, fmt.Errorf("encountered unexpected end of file (bad index? file doesn't end in newline?)")
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		f.bufOff = off
		f.buf = f.buf[:bytesRead]
	}
	return f.buf[off-f.bufOff : limit-f.bufOff], nil
}

func resizeBuf(buf *[]byte, n int) {
	if cap(*buf) < n {
		*buf = make([]byte, n)
	} else {
		*buf = (*buf)[0:n]
	}
}

// Bases implements Source.
func (f *indexedSource) Bases(seqName string, start, end uint64) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if end <= start {
		return "", fmt.Errorf("start must be less than end")
	}
	e, ok := f.seqs[seqName]
	if !ok {
		return "", fmt.Errorf("sequence not found in index: %s", seqName)
	}
	if end > e.length {
		return "", fmt.Errorf("end is past end of sequence %s: %d", seqName, e.length)
	}

	charsPerNewline := e.lineWidth - e.lineBase
	offset := e.offset + start + charsPerNewline*(start/e.lineBase)

	firstLineBases := e.lineBase - (start % e.lineBase)
	newlinesToRead := uint64(0)
	if end-start > firstLineBases {
		newlinesToRead = 1 + (end-start-firstLineBases)/e.lineBase
	}
	capacity := end - start + newlinesToRead*charsPerNewline

	buffer, err := f.read(int64(offset), int(capacity))
	if err != nil && err != io.EOF {
		return "", err
	}

	resizeBuf(&f.resultBuf, int(end-start))
	linePos := (offset - e.offset) % e.lineWidth
	resultPos := 0
	for i := range buffer {
		if linePos < e.lineBase {
			f.resultBuf[resultPos] = buffer[i]
			resultPos++
		}
		linePos++
		if linePos == e.lineWidth {
			linePos = 0
		}
	}
	return string(f.resultBuf), nil
}

// SeqNames implements Source.
func (f *indexedSource) SeqNames() []string { return f.seqNames }

// References implements Source, reading (and caching) every sequence once to
// compute its content digest.
func (f *indexedSource) References() []Reference {
	refs := make([]Reference, len(f.seqNames))
	for i, name := range f.seqNames {
		e := f.seqs[name]
		digest, ok := f.digests[name]
		if !ok {
			seq, err := f.Bases(name, 0, e.length)
			if err != nil {
				digest = ""
			} else {
				digest = digestOf(seq)
			}
			f.mutex.Lock()
			f.digests[name] = digest
			f.mutex.Unlock()
		}
		refs[i] = Reference{Name: name, Size: e.length, Digest: digest}
	}
	return refs
}
