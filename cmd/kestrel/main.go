/*
kestrel is a mapping-free short-read variant caller: it locates reference
regions whose k-mer frequencies diverge from a sample's, reconstructs local
haplotypes across each, aligns them to the reference, and emits the
resulting variants.
*/
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"

	"github.com/paudano/kestrel-sub001/align"
	"github.com/paudano/kestrel-sub001/counter"
	"github.com/paudano/kestrel-sub001/fastaref"
	"github.com/paudano/kestrel-sub001/interval"
	"github.com/paudano/kestrel-sub001/kerrors"
	"github.com/paudano/kestrel-sub001/kmer"
	"github.com/paudano/kestrel-sub001/pipeline"
	"github.com/paudano/kestrel-sub001/variant"
	"github.com/paudano/kestrel-sub001/writer"
)

const programName = "kestrel"

var (
	refPath      = flag.String("ref", "", "Reference FASTA path (required)")
	refIndexPath = flag.String("ref-index", "", "Reference .fai index path (optional; speeds up loading)")
	bedPath      = flag.String("bed", "", "BED-style interval file restricting the scan; default is the whole reference")
	counterMode  = flag.String("counter-mode", "indexed", "K-mer counter backend: 'indexed' (memory-mapped count file) or 'mem' (in-memory, from a kmer<TAB>count text file)")
	counterPath  = flag.String("counter-file", "", "Counter backing file: an indexed count file for -counter-mode=indexed, or a kmer<TAB>count text file for -counter-mode=mem (required)")
	kmerLen      = flag.Int("k", 31, "K-mer length")
	weightsSpec  = flag.String("weights", "", "Alignment weights as match,mismatch,gapOpen,gapExtend (empty components default to 10,-10,-40,-4)")
	flankLen     = flag.Int("flank", 0, "Region flank length; 0 uses floor(k*1.5)")
	sampleName   = flag.String("sample", "sample", "Sample name reported in output")
	format       = flag.String("format", "vcf", "Variant output format: 'vcf', 'tsv', or 'text'")
	outPath      = flag.String("out", "", "Variant output path; '-' or empty writes to stdout")
	hapOutPath   = flag.String("hap-out", "", "Optional SAM 1.5 haplotype dump output path")
	gzipOut      = flag.Bool("gzip", false, "Compress variant and haplotype output with gzip")
	filterTypes  = flag.String("filter-types", "", "Comma-separated subset of SNP,INS,DEL to keep; empty keeps all")
	minAlleleFrac = flag.Float64("min-allele-frac", 0, "Minimum variantDepth/locusDepth fraction to keep a call")
	minVarDepth  = flag.Int("min-var-depth", 0, "Minimum variantDepth to keep a call")
)

// version is reported in VCF ##source and SAM @PG header lines.
const version = "0.1.0"

func kestrelUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -ref REF.fa -counter-file COUNTS [OPTIONS]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = kestrelUsage
	shutdown := grail.Init()
	defer shutdown()
	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("unexpected positional arguments: %s", strings.Join(flag.Args(), " "))
	}
	if *refPath == "" {
		log.Fatalf("-ref is required")
	}
	if *counterPath == "" {
		log.Fatalf("-counter-file is required")
	}

	ctx := vcontext.Background()
	if err := run(ctx); err != nil {
		log.Error.Printf("%v", err)
		os.Exit(kerrors.KindOf(err).ExitCode())
	}
	log.Debug.Printf("exiting")
}

func run(ctx context.Context) error {
	ref, err := loadReference()
	if err != nil {
		return err
	}
	cnt, err := loadCounter()
	if err != nil {
		return err
	}
	var intervals *interval.Source
	if *bedPath != "" {
		f, err := os.Open(*bedPath)
		if err != nil {
			return kerrors.E(kerrors.NotFound, err, "-bed", *bedPath)
		}
		defer f.Close()
		intervals, err = interval.Load(f)
		if err != nil {
			return err
		}
	}

	opts := pipeline.DefaultOpts(*kmerLen)
	if *weightsSpec != "" {
		w, err := align.Parse(*weightsSpec)
		if err != nil {
			return kerrors.E(kerrors.Usage, err, "-weights")
		}
		opts.Weights = w.Normalize()
	}
	opts.FlankLen = *flankLen

	filterPipeline, err := buildFilterPipeline()
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, ref, intervals, cnt, opts, filterPipeline)
	if err != nil {
		return err
	}
	log.Debug.Printf("%d variant calls, %d haplotypes", len(result.Calls), len(result.Haplotypes))

	if err := writeVariants(ref, result.Calls); err != nil {
		return err
	}
	if *hapOutPath != "" {
		if err := writeHaplotypes(ref, result.Haplotypes); err != nil {
			return err
		}
	}
	return nil
}

func loadReference() (fastaref.Source, error) {
	f, err := os.Open(*refPath)
	if err != nil {
		return nil, kerrors.E(kerrors.NotFound, err, "-ref", *refPath)
	}

	if *refIndexPath != "" {
		idx, err := os.Open(*refIndexPath)
		if err != nil {
			f.Close()
			return nil, kerrors.E(kerrors.NotFound, err, "-ref-index", *refIndexPath)
		}
		defer idx.Close()
		// f stays open for the process lifetime: indexedSource reads from it
		// lazily via random access, not just during this call.
		src, err := fastaref.NewIndexed(f, idx)
		if err != nil {
			f.Close()
			return nil, err
		}
		return src, nil
	}
	defer f.Close()
	src, err := fastaref.Load(f)
	if err != nil {
		return nil, kerrors.E(kerrors.DataFormat, err, "-ref", *refPath)
	}
	return src, nil
}

func loadCounter() (kmer.Counter, error) {
	switch *counterMode {
	case "indexed":
		c, err := counter.OpenIndexed(*counterPath)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "mem":
		return loadMemCounter(*counterPath, *kmerLen)
	default:
		return nil, kerrors.E(kerrors.Usage, "-counter-mode must be 'indexed' or 'mem', got", *counterMode)
	}
}

// loadMemCounter reads a text file of "kmer<TAB>count" lines (one k-mer per
// line, uppercase ACGT) into a MemCounter, the convenience backend for small
// samples and tests that do not warrant a pre-built indexed count file.
func loadMemCounter(path string, k int) (*counter.MemCounter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, kerrors.E(kerrors.NotFound, err, "-counter-file", path)
	}
	defer f.Close()

	mc := counter.NewMemCounter()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, kerrors.E(kerrors.DataFormat, "-counter-file: line", lineNo, "expected 2 columns")
		}
		km, ok := kmer.Encode(fields[0], k)
		if !ok {
			return nil, kerrors.E(kerrors.DataFormat, "-counter-file: line", lineNo, "not a clean k-mer:", fields[0])
		}
		n, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, kerrors.E(kerrors.DataFormat, err, "-counter-file: line", lineNo)
		}
		mc.Add(km, uint32(n))
	}
	if err := scanner.Err(); err != nil {
		return nil, kerrors.E(kerrors.IO, err, "-counter-file", path)
	}
	return mc, nil
}

func buildFilterPipeline() (*variant.Pipeline, error) {
	var filters []variant.Filter
	if *filterTypes != "" {
		var kinds []variant.Type
		for _, name := range strings.Split(*filterTypes, ",") {
			switch strings.ToUpper(strings.TrimSpace(name)) {
			case "SNP":
				kinds = append(kinds, variant.SNP)
			case "INS":
				kinds = append(kinds, variant.Insertion)
			case "DEL":
				kinds = append(kinds, variant.Deletion)
			default:
				return nil, kerrors.E(kerrors.Usage, "-filter-types: unknown type", name)
			}
		}
		filters = append(filters, variant.ByType(kinds...))
	}
	if *minAlleleFrac > 0 || *minVarDepth > 0 {
		filters = append(filters, variant.ByCoverage(*minAlleleFrac, uint32(*minVarDepth)))
	}
	if len(filters) == 0 {
		return nil, nil
	}
	return variant.NewPipeline(filters...), nil
}

func openOut(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, kerrors.E(kerrors.IO, err, "creating", path)
	}
	return f, nil
}

func writeVariants(ref fastaref.Source, calls []*variant.Call) error {
	f, err := openOut(*outPath)
	if err != nil {
		return err
	}
	if f != os.Stdout {
		defer f.Close()
	}
	w, closeW, err := maybeGzip(f)
	if err != nil {
		return err
	}
	defer closeW()

	samples := []writer.SampleCalls{{Sample: *sampleName, Calls: calls}}
	switch *format {
	case "vcf":
		return writer.WriteVCF(w, ref, programName, version, samples)
	case "tsv":
		return writer.WriteTSV(w, samples)
	case "text":
		return writer.WritePlainText(w, samples)
	default:
		return kerrors.E(kerrors.Usage, "-format must be 'vcf', 'tsv', or 'text', got", *format)
	}
}

func writeHaplotypes(ref fastaref.Source, haps []pipeline.HaplotypeResult) error {
	f, err := openOut(*hapOutPath)
	if err != nil {
		return err
	}
	if f != os.Stdout {
		defer f.Close()
	}
	w, closeW, err := maybeGzip(f)
	if err != nil {
		return err
	}
	defer closeW()

	records := make([]writer.HaplotypeRecord, len(haps))
	for i, h := range haps {
		records[i] = writer.HaplotypeRecord{
			RefSeqName: h.RefSeqName,
			Pos:        h.Pos,
			RegionName: h.RegionName,
			Haplotype:  h.Haplotype,
		}
	}
	return writer.WriteSAM(w, ref, programName, version, records)
}

// maybeGzip wraps f in a gzip.Writer when -gzip is set, returning a close
// function that flushes and closes the gzip stream (leaving f itself to the
// caller's own defer).
func maybeGzip(f *os.File) (io.Writer, func(), error) {
	if !*gzipOut {
		return f, func() {}, nil
	}
	gz := gzip.NewWriter(f)
	return gz, func() { _ = gz.Close() }, nil
}
