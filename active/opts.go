package active

// Opts configures active-region detection. Field names and defaults
// mirror the detection parameter table; the doc comments restate each parameter's
// role so the knob is self-explanatory at the call site, in the manner of
// fusion.Opts.
type Opts struct {
	// MinDiff is the absolute floor on the neighbor-pair difference that can
	// start a scan.
	MinDiff float64
	// DiffQuantile is the quantile over |f[i]-f[i-1]| used as the adaptive
	// difference threshold.
	DiffQuantile float64
	// PeakScan is the number of k-mers scanned forward to identify and skip
	// short peaks, both before opening a scan and while awaiting recovery.
	PeakScan int
	// ScanLimitFactor bounds an active region's length to
	// k*ScanLimitFactor + maxGapLen.
	ScanLimitFactor float64
	// DecayMin is the asymptote of the recovery-threshold decay, as a
	// fraction of f(L).
	DecayMin float64
	// Alpha is the fraction of (f(L)-DecayMin*f(L)) remaining after k steps
	// of decay.
	Alpha float64
	// AnchorBoth requires both a left and a right anchor; if false,
	// single-anchored regions are allowed at reference ends.
	AnchorBoth bool
	// AmbigRegions allows regions that cross an ambiguous reference base; if
	// false, such regions are discarded.
	AmbigRegions bool
	// PeakClusterLen is the number of consecutive in-scan peak recoveries,
	// each followed by another peak within PeakScan, that triggers rolling
	// the end anchor back to the first sharp rise beginning the cluster
	//. 0
	// means PeakScan.
	PeakClusterLen int
}

// DefaultOpts holds the default parameter values.
var DefaultOpts = Opts{
	MinDiff:         5,
	DiffQuantile:    0.90,
	PeakScan:        7,
	ScanLimitFactor: 5.0,
	DecayMin:        0.55,
	Alpha:           0.80,
	AnchorBoth:      true,
	AmbigRegions:    true,
	PeakClusterLen:  0,
}

func (o Opts) peakClusterLen() int {
	if o.PeakClusterLen > 0 {
		return o.PeakClusterLen
	}
	return o.PeakScan
}
