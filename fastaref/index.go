package fastaref

import (
	"bufio"
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// indexEntry is one parsed line of a samtools-style .fai index: sequence
// name, total base length, byte offset of the first base, bases per line,
// and bytes per line (bases plus line terminator).
type indexEntry struct {
	name      string
	length    uint64
	offset    uint64
	lineBase  uint64
	lineWidth uint64
}

var indexRegExp = regexp.MustCompile(`^(\S+)\t(\d+)\t(\d+)\t(\d+)\t(\d+)$`)

func parseIndex(r io.Reader) ([]indexEntry, error) {
	var entries []indexEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		m := indexRegExp.FindStringSubmatch(line)
		if m == nil {
			return nil, errors.Errorf("fastaref: invalid index line: %s", line)
		}
		var e indexEntry
		e.name = m[1]
		e.length, _ = strconv.ParseUint(m[2], 10, 64)
		e.offset, _ = strconv.ParseUint(m[3], 10, 64)
		e.lineBase, _ = strconv.ParseUint(m[4], 10, 64)
		e.lineWidth, _ = strconv.ParseUint(m[5], 10, 64)
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "fastaref: reading index")
	}
	return entries, nil
}

// GenerateIndex generates a samtools-compatible .fai index from FASTA data in
// in, writing it to out. The index can later be passed to NewIndexed or
// OptIndex for fast random access.
func GenerateIndex(out io.Writer, in io.Reader) (err error) {
	var (
		tsvOut      = tsv.NewWriter(out)
		r           = bufio.NewReader(in)
		seqName     string
		seqStartOff int64
		totalBases  int
		lineBases   int
		lineWidth   int
		cumByte     int64
		eof         bool
	)

	setErr := func(e error) {
		if e != nil && err == nil {
			err = e
		}
	}
	flush := func() {
		tsvOut.WriteString(seqName)
		tsvOut.WriteInt64(int64(totalBases))
		tsvOut.WriteInt64(seqStartOff)
		tsvOut.WriteInt64(int64(lineBases))
		tsvOut.WriteInt64(int64(lineWidth))
		setErr(tsvOut.EndLine())
	}
	for !eof && err == nil {
		fullLine, e := r.ReadBytes('\n')
		if e == io.EOF {
			eof = true
		} else if e != nil {
			setErr(e)
		}
		cumByte += int64(len(fullLine))
		line := bytes.TrimRight(fullLine, "\r\n")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if lineWidth != 0 {
				if seqName == "" {
					setErr(errors.Errorf("fastaref: malformed FASTA file"))
				}
				flush()
			}
			seqName = strings.Split(string(line[1:]), " ")[0]
			seqStartOff = cumByte
			lineWidth = 0
			lineBases = 0
			totalBases = 0
			continue
		}
		if lineWidth == 0 {
			lineWidth = len(fullLine)
			lineBases = len(line)
		}
		totalBases += len(line)
	}
	flush()
	setErr(tsvOut.Flush())
	if cumByte == 0 {
		setErr(errors.Errorf("fastaref: empty FASTA file"))
	}
	return
}
