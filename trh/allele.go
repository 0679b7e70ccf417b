package trh

// Allele is one allele at a TR locus. Some callers (e.g. ExpansionHunter,
// popSTR) emit symbolic alt alleles that carry only a repeat-unit count, so
// an Allele is either a known sequence or an unknown sequence with a known
// unit length. Call sites that need sequence must check Known.
type Allele struct {
	seq     string
	unitLen float64
	known   bool
}

// KnownAllele wraps a literal allele sequence.
func KnownAllele(seq string) Allele {
	return Allele{seq: seq, known: true}
}

// UnknownAllele represents an allele whose sequence is not recoverable from
// the source VCF; only its length in repeat units is known.
func UnknownAllele(unitLen float64) Allele {
	return Allele{unitLen: unitLen}
}

func (a Allele) Known() bool {
	return a.known
}

// Seq returns the allele sequence. The second return is false for unknown
// alleles, whose sequence must not be used.
func (a Allele) Seq() (string, bool) {
	return a.seq, a.known
}

// UnitLen returns the allele length in repeat units. For known alleles the
// length depends on the locus period, so the caller supplies it.
func (a Allele) UnitLen(period int) float64 {
	if a.known {
		return float64(len(a.seq)) / float64(period)
	}

	return a.unitLen
}
