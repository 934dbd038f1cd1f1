package interval

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/store/interval"

	"github.com/paudano/kestrel-sub001/kerrors"
)

// Source holds every loaded Record, grouped and sorted per sequence, plus an
// interval tree per sequence for overlap queries.
type Source struct {
	bySeq map[string][]Record
	trees map[string]*interval.IntTree
}

// Load parses a BED-like TSV from r: chrom, start, end, and optionally name
// and a strand column ('+'/'-'/'.'), tab- or space-delimited. Coordinates are
// 0-based half-open, matching the BED convention. Records for a given
// sequence need not arrive sorted; Load sorts them and rejects overlaps.
func Load(r io.Reader) (*Source, error) {
	byName := make(map[string][]Record)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "track") {
			continue
		}
		rec, err := parseBEDLine(line)
		if err != nil {
			return nil, kerrors.E(kerrors.DataFormat, err, "interval: line", lineNo)
		}
		byName[rec.SeqName] = append(byName[rec.SeqName], rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, kerrors.E(kerrors.IO, err, "interval: reading BED")
	}

	s := &Source{bySeq: make(map[string][]Record, len(byName)), trees: make(map[string]*interval.IntTree, len(byName))}
	for seqName, recs := range byName {
		sort.Slice(recs, func(i, j int) bool { return recs[i].Start < recs[j].Start })
		tree := &interval.IntTree{}
		var id uintptr = 1
		for _, rec := range recs {
			e := &entry{Record: rec, id: id}
			id++
			if overlapsExisting(tree, e) {
				return nil, kerrors.E(kerrors.DataFormat, "interval: overlapping intervals on", seqName)
			}
			tree.Insert(e, true)
		}
		tree.AdjustRanges()
		s.bySeq[seqName] = recs
		s.trees[seqName] = tree
	}
	return s, nil
}

func overlapsExisting(tree *interval.IntTree, e *entry) bool {
	return len(tree.Get(e)) > 0
}

func parseBEDLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Record{}, kerrors.E(kerrors.DataFormat, "interval: BED line has fewer than 3 columns:", line)
	}
	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return Record{}, kerrors.E(kerrors.DataFormat, err, "interval: start coordinate")
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return Record{}, kerrors.E(kerrors.DataFormat, err, "interval: end coordinate")
	}
	if end <= start {
		return Record{}, kerrors.E(kerrors.DataFormat, "interval: end must exceed start:", line)
	}
	rec := Record{SeqName: fields[0], Start: start, End: end, IsForward: true}
	if len(fields) >= 4 {
		rec.Name = fields[3]
	}
	if len(fields) >= 6 {
		rec.IsForward = fields[5] != "-"
	}
	return rec, nil
}

// WholeReference builds a Source with one forward interval per named
// sequence spanning its full length, the default applied when no interval
// file is supplied.
func WholeReference(refs []struct {
	Name string
	Size uint64
}) *Source {
	s := &Source{bySeq: make(map[string][]Record, len(refs)), trees: make(map[string]*interval.IntTree, len(refs))}
	for _, r := range refs {
		rec := Record{SeqName: r.Name, Start: 0, End: int(r.Size), IsForward: true}
		tree := &interval.IntTree{}
		tree.Insert(&entry{Record: rec, id: 1}, true)
		tree.AdjustRanges()
		s.bySeq[r.Name] = []Record{rec}
		s.trees[r.Name] = tree
	}
	return s
}

// SeqNames returns every sequence name with at least one interval, in no
// particular order.
func (s *Source) SeqNames() []string {
	names := make([]string, 0, len(s.bySeq))
	for name := range s.bySeq {
		names = append(names, name)
	}
	return names
}

// Records returns seqName's intervals in ascending start order.
func (s *Source) Records(seqName string) []Record {
	return s.bySeq[seqName]
}
