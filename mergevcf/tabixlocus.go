package mergevcf

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TabixLocus satisfies the positional interface that bix queries expect.
type TabixLocus struct {
	chrom string
	start int
	end   int
}

func MakeTabixLocus(chrom string, start, end int) TabixLocus {
	return TabixLocus{chrom, start, end}
}

func (tl TabixLocus) Chrom() string {
	return tl.chrom
}

func (tl TabixLocus) Start() uint32 {
	return uint32(tl.start)
}

func (tl TabixLocus) End() uint32 {
	return uint32(tl.end)
}

// ParseRegion converts a samtools-style region string (chrom, chrom:start-end)
// into a locus. Start is 1-based inclusive, as on the command line.
func ParseRegion(region string) (TabixLocus, error) {
	if region == "" {
		return TabixLocus{}, fmt.Errorf("empty region")
	}

	chrom, span, found := strings.Cut(region, ":")
	if !found {
		return MakeTabixLocus(chrom, 0, math.MaxInt32), nil
	}

	startText, endText, found := strings.Cut(span, "-")
	if !found {
		return TabixLocus{}, fmt.Errorf("malformed region %q; expected chrom:start-end", region)
	}

	start, err := strconv.Atoi(strings.ReplaceAll(startText, ",", ""))
	if err != nil {
		return TabixLocus{}, fmt.Errorf("malformed region %q: %v", region, err)
	}
	end, err := strconv.Atoi(strings.ReplaceAll(endText, ",", ""))
	if err != nil {
		return TabixLocus{}, fmt.Errorf("malformed region %q: %v", region, err)
	}
	if start < 1 || end < start {
		return TabixLocus{}, fmt.Errorf("malformed region %q: start must be >= 1 and <= end", region)
	}

	return MakeTabixLocus(chrom, start-1, end), nil
}
