package compare

import (
	"fmt"

	"github.com/trtoolkit/trcompare/trh"
	"gopkg.in/guregu/null.v3"
)

// PloidyMismatchError indicates a sample called with different ploidy in
// the two streams at one locus. Genotype tuples of unequal length cannot be
// compared, so the whole run stops.
type PloidyMismatchError struct {
	Chrom  string
	Pos    int
	Sample string
}

func (e PloidyMismatchError) Error() string {
	return fmt.Sprintf("sample %s has different ploidy in the two VCFs at %s:%d", e.Sample, e.Chrom, e.Pos)
}

// Comparison accumulates concordance inputs over a walk of aligned record
// pairs. It owns the result tables until the walk finishes.
type Comparison struct {
	FormatFields []string
	Idx1, Idx2   []int
	Samples      []string

	Locus     []LocusResult
	PerSample *SampleResults
}

func NewComparison(formatFields []string, idx1, idx2 []int, samples []string) *Comparison {
	return &Comparison{
		FormatFields: formatFields,
		Idx1:         idx1,
		Idx2:         idx2,
		Samples:      samples,
		PerSample:    NewSampleResults(samples),
	}
}

// Update compares one aligned pair of harmonized records and appends one
// locus row. Only samples called in both records contribute; a ploidy
// mismatch aborts before anything is recorded for the locus.
func (c *Comparison) Update(rec1, rec2 *trh.TRRecord) error {
	called1 := rec1.GetCalledSamples()
	called2 := rec2.GetCalledSamples()
	ploidies1 := rec1.GetSamplePloidies()
	ploidies2 := rec2.GetSamplePloidies()

	var joint []int // shared-sample indexes called in both records
	for k := range c.Idx1 {
		if !called1[c.Idx1[k]] || !called2[c.Idx2[k]] {
			continue
		}
		if ploidies1[c.Idx1[k]] != ploidies2[c.Idx2[k]] {
			return PloidyMismatchError{Chrom: rec1.Chrom, Pos: rec1.SourcePos, Sample: c.Samples[k]}
		}
		joint = append(joint, k)
	}

	refUnits := rec1.RefUnitLen()
	row := LocusResult{
		Chrom: rec1.Chrom,
		// The coordinate the streams were aligned on, not the (possibly
		// dialect-adjusted) harmonized position.
		Start:    rec1.SourcePos,
		Period:   rec1.Period(),
		NumCalls: len(joint),
	}
	if len(c.FormatFields) > 0 {
		row.Format1 = make(map[string][]null.Float, len(c.FormatFields))
		row.Format2 = make(map[string][]null.Float, len(c.FormatFields))
	}

	for _, k := range joint {
		i1, i2 := c.Idx1[k], c.Idx2[k]

		seqMatch := sequencesMatch(rec1, rec2, i1, i2)
		len1 := rec1.GetLengthGenotype(i1)
		len2 := rec2.GetLengthGenotype(i2)
		lenMatch := floatsEqual(len1, len2)

		row.SampleIdx = append(row.SampleIdx, k)
		row.ConcSeq = append(row.ConcSeq, seqMatch)
		row.ConcLen = append(row.ConcLen, lenMatch)
		row.GtSum1 = append(row.GtSum1, sum(len1)-2*refUnits)
		row.GtSum2 = append(row.GtSum2, sum(len2)-2*refUnits)

		for _, ff := range c.FormatFields {
			row.Format1[ff] = append(row.Format1[ff], formatFloat(rec1, ff, i1))
			row.Format2[ff] = append(row.Format2[ff], formatFloat(rec2, ff, i2))
		}

		c.PerSample.NumCalls[k]++
		if seqMatch {
			c.PerSample.ConcSeqCount[k]++
		}
		if lenMatch {
			c.PerSample.ConcLenCount[k]++
		}
	}

	c.Locus = append(c.Locus, row)

	return nil
}

// sequencesMatch compares full string genotypes, order-sensitive. When
// either side's sequence view is undefined (symbolic alt alleles), the
// calls cannot be shown concordant at the sequence level.
func sequencesMatch(rec1, rec2 *trh.TRRecord, i1, i2 int) bool {
	seq1, err1 := rec1.GetStringGenotype(i1)
	seq2, err2 := rec2.GetStringGenotype(i2)
	if err1 != nil || err2 != nil {
		return false
	}
	if len(seq1) != len(seq2) {
		return false
	}
	for i := range seq1 {
		if seq1[i] != seq2[i] {
			return false
		}
	}

	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func sum(vals []float64) float64 {
	out := 0.0
	for _, v := range vals {
		out += v
	}

	return out
}

func formatFloat(rec *trh.TRRecord, field string, i int) null.Float {
	v, ok := rec.FormatValue(field, i)
	return null.NewFloat(v, ok)
}
