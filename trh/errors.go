package trh

import (
	"fmt"
	"strings"
)

// TypeDetectionError indicates that a stream's header is inconsistent with
// the requested VCF type, or that auto-detection found zero or multiple
// candidate types. It is raised once per stream, before any records are
// processed.
type TypeDetectionError struct {
	Requested VCFType
	Matches   []VCFType
	Missing   []string
}

func (e TypeDetectionError) Error() string {
	if e.Requested != TypeAuto {
		return fmt.Sprintf("header is not consistent with VCF type %s: missing %s",
			e.Requested, strings.Join(e.Missing, ", "))
	}

	if len(e.Matches) == 0 {
		return fmt.Sprintf("could not identify the TR caller that produced this VCF; supported types: %s", VCFTypeNames())
	}

	names := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		names[i] = string(m)
	}

	return fmt.Sprintf("ambiguous VCF type: header matches %s; pass an explicit type", strings.Join(names, " and "))
}

// HarmonizationError indicates a single record that cannot be decoded under
// the stream's (already validated) VCF type. Skipping such a record would
// desynchronize the coordinate walk, so it is fatal.
type HarmonizationError struct {
	VCFType VCFType
	Chrom   string
	Pos     int
	Reason  string
}

func (e HarmonizationError) Error() string {
	return fmt.Sprintf("cannot harmonize %s record at %s:%d: %s", e.VCFType, e.Chrom, e.Pos, e.Reason)
}

// AlleleIndexError indicates a genotype referencing an allele index beyond
// the record's declared ref+alt allele list.
type AlleleIndexError struct {
	Chrom      string
	Pos        int
	Index      int
	NumAlleles int
}

func (e AlleleIndexError) Error() string {
	return fmt.Sprintf("genotype at %s:%d references allele %d but only %d alleles are declared",
		e.Chrom, e.Pos, e.Index, e.NumAlleles)
}

// UndefinedAlleleError indicates a sequence-level view of an allele whose
// sequence is unknown (symbolic alt). Length-level views remain valid.
type UndefinedAlleleError struct {
	Chrom string
	Pos   int
	Index int
}

func (e UndefinedAlleleError) Error() string {
	return fmt.Sprintf("allele %d at %s:%d has no known sequence; only length-based views are defined",
		e.Index, e.Chrom, e.Pos)
}
