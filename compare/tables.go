package compare

import (
	"gopkg.in/guregu/null.v3"
)

// Stratification scopes for FORMAT-field bins.
const (
	StratifyBoth  = 0
	StratifyFile1 = 1
	StratifyFile2 = 2
)

// LocusResult is one aligned locus's comparison inputs. The per-call slices
// are parallel and cover only the samples called in both streams there.
type LocusResult struct {
	Chrom    string
	Start    int
	Period   int
	NumCalls int

	SampleIdx []int // shared-sample index of each call
	ConcSeq   []bool
	ConcLen   []bool
	GtSum1    []float64
	GtSum2    []float64

	// Per-stream FORMAT values requested for stratification; invalid when a
	// sample lacks the field or it is non-numeric.
	Format1 map[string][]null.Float
	Format2 map[string][]null.Float
}

// SampleResults holds per-sample running totals over the whole walk,
// indexed by shared-sample index and updated incrementally per locus.
type SampleResults struct {
	Samples      []string
	NumCalls     []int
	ConcSeqCount []int
	ConcLenCount []int
}

func NewSampleResults(samples []string) *SampleResults {
	return &SampleResults{
		Samples:      samples,
		NumCalls:     make([]int, len(samples)),
		ConcSeqCount: make([]int, len(samples)),
		ConcLenCount: make([]int, len(samples)),
	}
}

// LocusSummaryRow is one line of the per-locus output table.
type LocusSummaryRow struct {
	Chrom    string  `csv:"chrom"`
	Start    int     `csv:"start"`
	ConcSeq  float64 `csv:"metric-conc-seq"`
	ConcLen  float64 `csv:"metric-conc-len"`
	NumCalls int     `csv:"numcalls"`
}

// SampleSummaryRow is one line of the per-sample output table.
type SampleSummaryRow struct {
	Sample   string  `csv:"sample"`
	ConcSeq  float64 `csv:"metric-conc-seq"`
	ConcLen  float64 `csv:"metric-conc-len"`
	NumCalls int     `csv:"numcalls"`
}

// OverallRow is one line of the overall summary table: a period stratum
// (or "ALL") crossed with at most one FORMAT-field bin.
type OverallRow struct {
	Period     string
	FormatBins []string // one per stratified field; "NA" when not this row's field
	ConcSeq    float64
	ConcLen    float64
	R          float64
	NumCalls   int
}
