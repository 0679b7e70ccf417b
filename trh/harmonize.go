package trh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/carbocation/vcfgo"
)

// HarmonizeRecord decodes one raw VCF record into a canonical TRRecord
// according to the stream's dialect. Harmonizing the same record twice
// yields structurally equal results.
func HarmonizeRecord(vcftype VCFType, v *vcfgo.Variant) (*TRRecord, error) {
	switch vcftype {
	case TypeGangSTR:
		return harmonizeGangSTR(v)
	case TypeHipSTR:
		return harmonizeHipSTR(v)
	case TypeAdVNTR:
		return harmonizeAdVNTR(v)
	case TypeEH:
		return harmonizeEH(v)
	case TypePopSTR:
		return harmonizePopSTR(v)
	}

	return nil, fmt.Errorf("unknown VCF type %q; valid types: auto, %s", vcftype, VCFTypeNames())
}

func harmonizeGangSTR(v *vcfgo.Variant) (*TRRecord, error) {
	ru, err := infoString(v, "RU")
	if err != nil {
		return nil, harmErr(TypeGangSTR, v, err)
	}

	alts := sequenceAlts(v)

	return newFromVariant(v, int(v.Pos), v.Ref(), alts, strings.ToUpper(ru))
}

func harmonizeHipSTR(v *vcfgo.Variant) (*TRRecord, error) {
	period, err := infoInt(v, "PERIOD")
	if err != nil {
		return nil, harmErr(TypeHipSTR, v, err)
	}
	start, err := infoInt(v, "START")
	if err != nil {
		return nil, harmErr(TypeHipSTR, v, err)
	}

	// HipSTR does not report the repeat unit; take the most common kmer of
	// the reference allele at the reported period.
	motif, err := inferMotif(v.Ref(), period)
	if err != nil {
		return nil, harmErr(TypeHipSTR, v, err)
	}

	alts := sequenceAlts(v)

	return newFromVariant(v, start, v.Ref(), alts, motif)
}

func harmonizeAdVNTR(v *vcfgo.Variant) (*TRRecord, error) {
	ru, err := infoString(v, "RU")
	if err != nil {
		return nil, harmErr(TypeAdVNTR, v, err)
	}

	alts := sequenceAlts(v)

	return newFromVariant(v, int(v.Pos), v.Ref(), alts, strings.ToUpper(ru))
}

func harmonizeEH(v *vcfgo.Variant) (*TRRecord, error) {
	ru, err := infoString(v, "RU")
	if err != nil {
		return nil, harmErr(TypeEH, v, err)
	}
	motif := strings.ToUpper(ru)

	// ExpansionHunter records carry lengths, not sequences. The reference
	// repeat count is authoritative in INFO/REF; alts are symbolic <STRn>.
	refCount, err := infoInt(v, "REF")
	if err != nil {
		return nil, harmErr(TypeEH, v, err)
	}
	ref := strings.Repeat(motif, refCount)

	var alts []Allele
	for _, a := range v.Alt() {
		if a == "." || a == "" {
			continue
		}
		if !strings.HasPrefix(a, "<STR") || !strings.HasSuffix(a, ">") {
			return nil, harmErr(TypeEH, v, fmt.Errorf("unexpected alt allele %q", a))
		}
		n, err := strconv.ParseFloat(a[len("<STR"):len(a)-1], 64)
		if err != nil {
			return nil, harmErr(TypeEH, v, fmt.Errorf("unexpected alt allele %q", a))
		}
		alts = append(alts, UnknownAllele(n))
	}

	return newFromVariant(v, int(v.Pos), ref, alts, motif)
}

func harmonizePopSTR(v *vcfgo.Variant) (*TRRecord, error) {
	motif, err := infoString(v, "Motif")
	if err != nil {
		return nil, harmErr(TypePopSTR, v, err)
	}

	// popSTR alts are symbolic repeat counts like <4> or <4.5>.
	var alts []Allele
	for _, a := range v.Alt() {
		if a == "." || a == "" {
			continue
		}
		if !strings.HasPrefix(a, "<") || !strings.HasSuffix(a, ">") {
			return nil, harmErr(TypePopSTR, v, fmt.Errorf("unexpected alt allele %q", a))
		}
		n, err := strconv.ParseFloat(a[1:len(a)-1], 64)
		if err != nil {
			return nil, harmErr(TypePopSTR, v, fmt.Errorf("unexpected alt allele %q", a))
		}
		alts = append(alts, UnknownAllele(n))
	}

	return newFromVariant(v, int(v.Pos), v.Ref(), alts, strings.ToUpper(motif))
}

func newFromVariant(v *vcfgo.Variant, pos int, ref string, alts []Allele, motif string) (*TRRecord, error) {
	rec, err := NewTRRecord(v.Chrom(), pos, ref, alts, motif, v.Id(), sampleCalls(v))
	if err != nil {
		return nil, err
	}
	rec.SourcePos = int(v.Pos)

	return rec, nil
}

// sequenceAlts converts literal alt alleles, dropping the VCF missing
// marker. No sequences are synthesized here.
func sequenceAlts(v *vcfgo.Variant) []Allele {
	var alts []Allele
	for _, a := range v.Alt() {
		if a == "." || a == "" {
			continue
		}
		alts = append(alts, KnownAllele(a))
	}

	return alts
}

// sampleCalls converts vcfgo genotypes into canonical per-sample calls. Any
// missing allele (-1) leaves the whole sample uncalled; uncalled is never
// coerced to homozygous reference.
func sampleCalls(v *vcfgo.Variant) []SampleCall {
	names := v.Header.SampleNames
	out := make([]SampleCall, len(v.Samples))
	for i, s := range v.Samples {
		if i < len(names) {
			out[i].ID = names[i]
		}
		if s == nil || len(s.GT) == 0 {
			continue
		}

		gt := make([]int, len(s.GT))
		called := true
		for j, a := range s.GT {
			if a < 0 {
				called = false
				break
			}
			gt[j] = a
		}
		if !called {
			continue
		}

		out[i].Called = true
		out[i].GT = gt
		out[i].Fields = s.Fields
	}

	return out
}

// inferMotif picks the most common kmer of the given period within seq,
// ties broken by first appearance.
func inferMotif(seq string, period int) (string, error) {
	if period < 1 || len(seq) < period {
		return "", fmt.Errorf("cannot infer a period-%d motif from %q", period, seq)
	}

	counts := make(map[string]int)
	best := seq[:period]
	for i := 0; i+period <= len(seq); i++ {
		kmer := seq[i : i+period]
		counts[kmer]++
		if counts[kmer] > counts[best] {
			best = kmer
		}
	}

	return strings.ToUpper(best), nil
}

func harmErr(t VCFType, v *vcfgo.Variant, err error) error {
	return HarmonizationError{VCFType: t, Chrom: v.Chrom(), Pos: int(v.Pos), Reason: err.Error()}
}

func infoString(v *vcfgo.Variant, key string) (string, error) {
	val, err := v.Info().Get(key)
	if err != nil {
		return "", fmt.Errorf("missing INFO field %s", key)
	}

	switch t := val.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	}

	return "", fmt.Errorf("INFO field %s is not a string (got %v)", key, val)
}

func infoInt(v *vcfgo.Variant, key string) (int, error) {
	val, err := v.Info().Get(key)
	if err != nil {
		return 0, fmt.Errorf("missing INFO field %s", key)
	}

	switch t := val.(type) {
	case int:
		return t, nil
	case float64:
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("INFO field %s is not an integer (got %q)", key, t)
		}
		return n, nil
	}

	return 0, fmt.Errorf("INFO field %s is not an integer (got %v)", key, val)
}
