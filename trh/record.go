package trh

import (
	"fmt"
	"strconv"
	"strings"
)

// SampleCall is one sample's genotype at one locus in canonical form: allele
// indices into ref+alts (0 = ref, i>0 = alt i-1). Uncalled samples keep
// Called == false and an empty GT; they contribute to no counts.
type SampleCall struct {
	ID     string
	Called bool
	GT     []int
	Fields map[string]string
}

// TRRecord is one locus's TR genotype calls, harmonized away from any
// caller-specific VCF dialect. It is immutable after construction; all
// derived views are computed on demand.
type TRRecord struct {
	Chrom string
	Pos   int
	// SourcePos is the POS of the underlying VCF record, which coordinate
	// walks align on. Pos may be dialect-adjusted away from it (HipSTR moves
	// it to the repeat region start).
	SourcePos  int
	RefAllele  string
	AltAlleles []Allele
	Motif      string
	RecordID   string
	Samples    []SampleCall
}

// NewTRRecord validates that every called genotype resolves to a declared
// allele. Declared alt alleles that no genotype references are fine.
func NewTRRecord(chrom string, pos int, refAllele string, altAlleles []Allele, motif, recordID string, samples []SampleCall) (*TRRecord, error) {
	if len(motif) == 0 {
		return nil, fmt.Errorf("empty repeat motif at %s:%d", chrom, pos)
	}

	numAlleles := 1 + len(altAlleles)
	for _, s := range samples {
		if !s.Called {
			continue
		}
		for _, a := range s.GT {
			if a < 0 || a >= numAlleles {
				return nil, AlleleIndexError{Chrom: chrom, Pos: pos, Index: a, NumAlleles: numAlleles}
			}
		}
	}

	return &TRRecord{
		Chrom:      chrom,
		Pos:        pos,
		SourcePos:  pos,
		RefAllele:  refAllele,
		AltAlleles: altAlleles,
		Motif:      motif,
		RecordID:   recordID,
		Samples:    samples,
	}, nil
}

func (r *TRRecord) String() string {
	alts := make([]string, len(r.AltAlleles))
	for i, a := range r.AltAlleles {
		if seq, ok := a.Seq(); ok {
			alts[i] = seq
		} else {
			alts[i] = fmt.Sprintf("<%s>", formatUnitLen(a.UnitLen(r.Period())))
		}
	}

	return fmt.Sprintf("%s:%d %s %s [%s]", r.Chrom, r.Pos, r.Motif, r.RefAllele, strings.Join(alts, ","))
}

// Period is the repeat unit length in bases.
func (r *TRRecord) Period() int {
	return len(r.Motif)
}

// RefUnitLen is the reference allele length in repeat units.
func (r *TRRecord) RefUnitLen() float64 {
	return float64(len(r.RefAllele)) / float64(r.Period())
}

func (r *TRRecord) alleleUnitLen(idx int) float64 {
	if idx == 0 {
		return r.RefUnitLen()
	}

	return r.AltAlleles[idx-1].UnitLen(r.Period())
}

func (r *TRRecord) alleleSeq(idx int) (string, error) {
	if idx == 0 {
		return r.RefAllele, nil
	}

	seq, ok := r.AltAlleles[idx-1].Seq()
	if !ok {
		return "", UndefinedAlleleError{Chrom: r.Chrom, Pos: r.Pos, Index: idx}
	}

	return seq, nil
}

func (r *TRRecord) alleleRepr(idx int, uselength bool) (string, error) {
	if uselength {
		return formatUnitLen(r.alleleUnitLen(idx)), nil
	}

	return r.alleleSeq(idx)
}

func formatUnitLen(l float64) string {
	return strconv.FormatFloat(l, 'g', -1, 64)
}

// GetStringGenotype returns sample i's allele sequences in called order.
// Fails with UndefinedAlleleError if the genotype references an allele whose
// sequence is unknown. Uncalled samples yield nil.
func (r *TRRecord) GetStringGenotype(i int) ([]string, error) {
	s := &r.Samples[i]
	if !s.Called {
		return nil, nil
	}

	out := make([]string, len(s.GT))
	for j, a := range s.GT {
		seq, err := r.alleleSeq(a)
		if err != nil {
			return nil, err
		}
		out[j] = seq
	}

	return out, nil
}

// GetLengthGenotype returns sample i's allele lengths in repeat units, in
// called order. Defined whenever the sample is called, even when the string
// genotype is not. Uncalled samples yield nil.
func (r *TRRecord) GetLengthGenotype(i int) []float64 {
	s := &r.Samples[i]
	if !s.Called {
		return nil
	}

	out := make([]float64, len(s.GT))
	for j, a := range s.GT {
		out[j] = r.alleleUnitLen(a)
	}

	return out
}

// GetCalledSamples reports, per sample, whether the genotype is fully
// resolved (no missing alleles).
func (r *TRRecord) GetCalledSamples() []bool {
	out := make([]bool, len(r.Samples))
	for i := range r.Samples {
		out[i] = r.Samples[i].Called
	}

	return out
}

// GetSamplePloidies returns each sample's allele count. Zero for uncalled
// samples.
func (r *TRRecord) GetSamplePloidies() []int {
	out := make([]int, len(r.Samples))
	for i := range r.Samples {
		if r.Samples[i].Called {
			out[i] = len(r.Samples[i].GT)
		}
	}

	return out
}

func sampleFilter(samplelist []string) map[string]bool {
	if samplelist == nil {
		return nil
	}

	keep := make(map[string]bool, len(samplelist))
	for _, s := range samplelist {
		keep[s] = true
	}

	return keep
}

// GetGenotypeCounts maps each observed genotype (order-preserved, keyed by
// its comma-joined allele representation) to its occurrence count over
// called samples. If samplelist is non-nil, only those samples count; listed
// samples absent from the record are silently excluded.
func (r *TRRecord) GetGenotypeCounts(samplelist []string, uselength bool) (map[string]int, error) {
	keep := sampleFilter(samplelist)
	out := make(map[string]int)
	for i := range r.Samples {
		s := &r.Samples[i]
		if !s.Called || (keep != nil && !keep[s.ID]) {
			continue
		}

		parts := make([]string, len(s.GT))
		for j, a := range s.GT {
			repr, err := r.alleleRepr(a, uselength)
			if err != nil {
				return nil, err
			}
			parts[j] = repr
		}
		out[strings.Join(parts, ",")]++
	}

	return out, nil
}

// GetAlleleCounts maps each observed allele (sequence, or unit length when
// uselength) to the number of times it was called. Same sample filtering as
// GetGenotypeCounts.
func (r *TRRecord) GetAlleleCounts(samplelist []string, uselength bool) (map[string]int, error) {
	keep := sampleFilter(samplelist)
	out := make(map[string]int)
	for i := range r.Samples {
		s := &r.Samples[i]
		if !s.Called || (keep != nil && !keep[s.ID]) {
			continue
		}

		for _, a := range s.GT {
			repr, err := r.alleleRepr(a, uselength)
			if err != nil {
				return nil, err
			}
			out[repr]++
		}
	}

	return out, nil
}

// GetAlleleFreqs divides allele counts by the total number of allele
// observations. The result sums to 1 when any observations exist and is
// empty otherwise.
func (r *TRRecord) GetAlleleFreqs(samplelist []string, uselength bool) (map[string]float64, error) {
	counts, err := r.GetAlleleCounts(samplelist, uselength)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	out := make(map[string]float64, len(counts))
	for k, c := range counts {
		out[k] = float64(c) / float64(total)
	}

	return out, nil
}

// GetMaxAllele returns the maximum allele length, in repeat units, observed
// across all called genotypes. Zero when no sample is called.
func (r *TRRecord) GetMaxAllele() float64 {
	max := 0.0
	for i := range r.Samples {
		s := &r.Samples[i]
		if !s.Called {
			continue
		}
		for _, a := range s.GT {
			if l := r.alleleUnitLen(a); l > max {
				max = l
			}
		}
	}

	return max
}

// FormatValue parses the leading numeric element of sample i's value for a
// FORMAT field. The second return is false when the field is absent or not
// numeric.
func (r *TRRecord) FormatValue(field string, i int) (float64, bool) {
	s := &r.Samples[i]
	raw, ok := s.Fields[field]
	if !ok {
		return 0, false
	}

	if idx := strings.IndexByte(raw, ','); idx >= 0 {
		raw = raw[:idx]
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
