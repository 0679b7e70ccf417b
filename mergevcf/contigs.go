package mergevcf

import (
	"fmt"
	"strings"

	"github.com/carbocation/vcfgo"
)

// ContigOrder ranks chromosomes the way one stream's header declares them,
// so records can be compared across chromosome boundaries without assuming
// lexicographic names.
type ContigOrder struct {
	rank map[string]int
}

// ContigsFromHeader builds the ordering from a header's contig lines. Some
// writers leave contig lines unparsed in the header extras, so those are
// scanned as a fallback.
func ContigsFromHeader(h *vcfgo.Header) (*ContigOrder, error) {
	c := &ContigOrder{rank: make(map[string]int)}

	for _, contig := range h.Contigs {
		if id, ok := contig["ID"]; ok {
			c.add(id)
		}
	}

	if len(c.rank) == 0 {
		for _, line := range h.Extras {
			if !strings.HasPrefix(line, "##contig=") {
				continue
			}
			if id := contigIDFromLine(line); id != "" {
				c.add(id)
			}
		}
	}

	if len(c.rank) == 0 {
		return nil, fmt.Errorf("no contig lines in header; cannot establish chromosome order")
	}

	return c, nil
}

func (c *ContigOrder) add(id string) {
	if _, ok := c.rank[id]; !ok {
		c.rank[id] = len(c.rank)
	}
}

func (c *ContigOrder) Rank(chrom string) (int, bool) {
	r, ok := c.rank[chrom]
	return r, ok
}

// Compare orders two coordinates by (contig rank, position), returning
// -1, 0, or 1. Unknown chromosomes are an error rather than a silent sort.
func (c *ContigOrder) Compare(chromA string, posA uint64, chromB string, posB uint64) (int, error) {
	rankA, ok := c.rank[chromA]
	if !ok {
		return 0, fmt.Errorf("chromosome %s is not in the contig ordering", chromA)
	}
	rankB, ok := c.rank[chromB]
	if !ok {
		return 0, fmt.Errorf("chromosome %s is not in the contig ordering", chromB)
	}

	switch {
	case rankA != rankB:
		if rankA < rankB {
			return -1, nil
		}
		return 1, nil
	case posA < posB:
		return -1, nil
	case posA > posB:
		return 1, nil
	}

	return 0, nil
}

func contigIDFromLine(line string) string {
	body := strings.TrimPrefix(line, "##contig=")
	body = strings.Trim(body, "<>")
	for _, kv := range strings.Split(body, ",") {
		k, v, found := strings.Cut(kv, "=")
		if found && k == "ID" {
			return v
		}
	}

	return ""
}
