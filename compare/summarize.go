package compare

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gopkg.in/guregu/null.v3"
)

// Strata configures the overall summary: which FORMAT fields to bin, their
// min/max/binsize triples, which stream(s) the bins apply to, and whether to
// also stratify by repeat period.
type Strata struct {
	Fields   []string
	Bins     [][3]float64
	Scope    int // StratifyBoth, StratifyFile1 or StratifyFile2
	ByPeriod bool
}

// LocusSummaries collapses locus results to per-locus mean concordances,
// sorted by length concordance, best first.
func LocusSummaries(locus []LocusResult) []LocusSummaryRow {
	out := make([]LocusSummaryRow, 0, len(locus))
	for _, l := range locus {
		out = append(out, LocusSummaryRow{
			Chrom:    l.Chrom,
			Start:    l.Start,
			ConcSeq:  boolMean(l.ConcSeq),
			ConcLen:  boolMean(l.ConcLen),
			NumCalls: l.NumCalls,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ConcLen > out[j].ConcLen
	})

	return out
}

// SampleSummaries collapses the running per-sample totals to concordance
// rates, sorted by length concordance, best first.
func SampleSummaries(s *SampleResults) []SampleSummaryRow {
	out := make([]SampleSummaryRow, 0, len(s.Samples))
	for k, name := range s.Samples {
		row := SampleSummaryRow{Sample: name, NumCalls: s.NumCalls[k]}
		if row.NumCalls > 0 {
			row.ConcSeq = float64(s.ConcSeqCount[k]) / float64(row.NumCalls)
			row.ConcLen = float64(s.ConcLenCount[k]) / float64(row.NumCalls)
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ConcLen > out[j].ConcLen
	})

	return out
}

// flat is the element-level (locus x jointly-called sample) view of the
// locus table, which period and FORMAT-bin strata select from.
type flat struct {
	period           []int
	concSeq, concLen []float64
	gtsum1, gtsum2   []float64
	fmt1, fmt2       map[string][]null.Float
}

func flatten(locus []LocusResult, fields []string) *flat {
	f := &flat{
		fmt1: make(map[string][]null.Float, len(fields)),
		fmt2: make(map[string][]null.Float, len(fields)),
	}

	for _, l := range locus {
		for i := range l.ConcSeq {
			f.period = append(f.period, l.Period)
			f.concSeq = append(f.concSeq, b2f(l.ConcSeq[i]))
			f.concLen = append(f.concLen, b2f(l.ConcLen[i]))
			f.gtsum1 = append(f.gtsum1, l.GtSum1[i])
			f.gtsum2 = append(f.gtsum2, l.GtSum2[i])
			for _, ff := range fields {
				f.fmt1[ff] = append(f.fmt1[ff], l.Format1[ff][i])
				f.fmt2[ff] = append(f.fmt2[ff], l.Format2[ff][i])
			}
		}
	}

	return f
}

// OverallSummaries produces the overall table: one row per period stratum
// ("ALL" plus each observed period when requested), crossed with each
// FORMAT-field bin. Strata with fewer than two observations are skipped,
// since a correlation needs at least two points.
func OverallSummaries(locus []LocusResult, strata Strata) []OverallRow {
	f := flatten(locus, strata.Fields)

	var out []OverallRow

	periods := []string{"ALL"}
	if strata.ByPeriod {
		seen := make(map[int]bool)
		var distinct []int
		for _, p := range f.period {
			if !seen[p] {
				seen[p] = true
				distinct = append(distinct, p)
			}
		}
		sort.Ints(distinct)
		for _, p := range distinct {
			periods = append(periods, fmt.Sprintf("%d", p))
		}
	}

	for _, per := range periods {
		base := f.selectPeriod(per)
		if len(base) < 2 {
			continue
		}

		out = append(out, f.summarize(per, naBins(len(strata.Fields)), base))

		for i, ff := range strata.Fields {
			minVal, maxVal, binSize := strata.Bins[i][0], strata.Bins[i][1], strata.Bins[i][2]
			// Edges come from the bin index, not repeated addition, so
			// fractional bin sizes do not accumulate rounding error.
			for j := 0; ; j++ {
				lb := minVal + float64(j)*binSize
				if lb >= maxVal {
					break
				}
				ub := minVal + float64(j+1)*binSize
				idxs := f.selectBin(base, ff, strata.Scope, lb, ub)
				if len(idxs) < 2 {
					continue
				}
				bins := naBins(len(strata.Fields))
				bins[i] = fmt.Sprintf("%g-%g", lb, ub)
				out = append(out, f.summarize(per, bins, idxs))
			}
		}
	}

	return out
}

func (f *flat) selectPeriod(per string) []int {
	var out []int
	for i := range f.period {
		if per == "ALL" || fmt.Sprintf("%d", f.period[i]) == per {
			out = append(out, i)
		}
	}

	return out
}

func (f *flat) selectBin(base []int, field string, scope int, lb, ub float64) []int {
	inRange := func(v null.Float) bool {
		return v.Valid && v.Float64 >= lb && v.Float64 < ub
	}

	var out []int
	for _, i := range base {
		ok1 := inRange(f.fmt1[field][i])
		ok2 := inRange(f.fmt2[field][i])
		switch scope {
		case StratifyFile1:
			if ok1 {
				out = append(out, i)
			}
		case StratifyFile2:
			if ok2 {
				out = append(out, i)
			}
		default:
			if ok1 && ok2 {
				out = append(out, i)
			}
		}
	}

	return out
}

func (f *flat) summarize(period string, bins []string, idxs []int) OverallRow {
	concSeq := take(f.concSeq, idxs)
	concLen := take(f.concLen, idxs)
	g1 := take(f.gtsum1, idxs)
	g2 := take(f.gtsum2, idxs)

	r, err := stats.Pearson(stats.Float64Data(g1), stats.Float64Data(g2))
	if err != nil {
		r = math.NaN()
	}

	return OverallRow{
		Period:     period,
		FormatBins: bins,
		ConcSeq:    mean(concSeq),
		ConcLen:    mean(concLen),
		R:          r,
		NumCalls:   len(idxs),
	}
}

func naBins(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "NA"
	}

	return out
}

func take(vals []float64, idxs []int) []float64 {
	out := make([]float64, len(idxs))
	for j, i := range idxs {
		out[j] = vals[i]
	}

	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}

	m, err := stats.Mean(stats.Float64Data(vals))
	if err != nil {
		return 0
	}

	return m
}

func boolMean(flags []bool) float64 {
	if len(flags) == 0 {
		return 0
	}

	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}

	return float64(n) / float64(len(flags))
}

func b2f(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
