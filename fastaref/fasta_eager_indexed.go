package fastaref

import (
	"bufio"
	"fmt"
	"io"

	"github.com/grailbio/base/unsafe"
	"github.com/grailbio/bio/biosimd"
)

// loadEagerIndexed reads every sequence named in index from fastaR into one
// contiguous buffer, using the index's byte offsets to skip straight to each
// sequence's data and its line geometry to skip line terminators.
func loadEagerIndexed(fastaR io.Reader, index []indexEntry, parsed opts) (Source, error) {
	var entireLen uint64
	entireSeqStarts := make([]uint64, len(index))
	for e, entry := range index {
		entireSeqStarts[e] = entireLen
		entireLen += entry.length
	}
	entire := make([]byte, entireLen)

	var fileOffset uint64
	bufR := bufio.NewReaderSize(fastaR, bufferInitSize)
	for e, entry := range index {
		n, err := bufR.Discard(int(entry.offset - fileOffset))
		fileOffset += uint64(n)
		if err != nil {
			return nil, fmt.Errorf("fastaref: seeking seq: %v", err)
		}
		var basesRead uint64
		for basesRead < entry.length {
			nextBasesRead := basesRead + entry.lineBase
			if nextBasesRead > entry.length {
				nextBasesRead = entry.length
			}
			lineBases := nextBasesRead - basesRead

			entireLineStart := entireSeqStarts[e] + basesRead
			entireLine := entire[entireLineStart : entireLineStart+lineBases]
			n, err := io.ReadFull(bufR, entireLine)
			fileOffset += uint64(n)
			if err != nil {
				return nil, fmt.Errorf("fastaref: reading: %v", err)
			}
			basesRead += lineBases

			if basesRead < entry.length {
				n, err := bufR.Discard(int(entry.lineWidth - entry.lineBase))
				fileOffset += uint64(n)
				if err != nil {
					return nil, fmt.Errorf("fastaref: seeking line: %v", err)
				}
			}
		}
	}

	if parsed.Clean {
		biosimd.CleanASCIISeqInplace(entire)
	}

	f := &memSource{
		seqs:     make(map[string]string, len(index)),
		seqNames: make([]string, 0, len(index)),
	}
	for e, entry := range index {
		seqBytes := entire[entireSeqStarts[e] : entireSeqStarts[e]+entry.length]
		f.seqs[entry.name] = unsafe.BytesToString(seqBytes)
		f.seqNames = append(f.seqNames, entry.name)
	}
	f.refs = make([]Reference, len(f.seqNames))
	for i, name := range f.seqNames {
		f.refs[i] = Reference{Name: name, Size: uint64(len(f.seqs[name])), Digest: digestOf(f.seqs[name])}
	}
	return f, nil
}
