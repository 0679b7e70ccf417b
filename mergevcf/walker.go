package mergevcf

import (
	"fmt"
	"io"

	"github.com/carbocation/vcfgo"
)

// OrderingViolationError indicates an input stream that is not sorted by
// (contig, position). Silently reordering would corrupt the lock-step walk,
// so this is fatal.
type OrderingViolationError struct {
	Path  string
	Chrom string
	Pos   uint64
}

func (e OrderingViolationError) Error() string {
	return fmt.Sprintf("%s is not coordinate-sorted: %s:%d appears after a later coordinate", e.Path, e.Chrom, e.Pos)
}

// Walker advances N coordinate-sorted record streams in lock-step, emitting
// groups of records that share one genomic coordinate across every stream.
// Memory held is one record per stream; nothing is buffered beyond that.
type Walker struct {
	readers []*Reader
	contigs *ContigOrder
	current []*vcfgo.Variant
	started []bool
	prevC   []string
	prevP   []uint64
}

// NewWalker primes one record from each reader. The contig ordering decides
// cross-chromosome comparisons for all streams.
func NewWalker(contigs *ContigOrder, readers ...*Reader) (*Walker, error) {
	w := &Walker{
		readers: readers,
		contigs: contigs,
		current: make([]*vcfgo.Variant, len(readers)),
		started: make([]bool, len(readers)),
		prevC:   make([]string, len(readers)),
		prevP:   make([]uint64, len(readers)),
	}

	for i := range readers {
		if err := w.advance(i); err != nil && err != io.EOF {
			return nil, err
		}
	}

	return w, nil
}

func (w *Walker) advance(i int) error {
	v, err := w.readers[i].Next()
	if err == io.EOF {
		w.current[i] = nil
		return io.EOF
	}
	if err != nil {
		return err
	}

	if w.started[i] {
		cmp, err := w.contigs.Compare(v.Chrom(), v.Pos, w.prevC[i], w.prevP[i])
		if err != nil {
			return err
		}
		if cmp < 0 {
			return OrderingViolationError{Path: w.readers[i].Path, Chrom: v.Chrom(), Pos: v.Pos}
		}
	} else if _, ok := w.contigs.Rank(v.Chrom()); !ok {
		return fmt.Errorf("chromosome %s is not in the contig ordering", v.Chrom())
	}

	w.started[i] = true
	w.prevC[i] = v.Chrom()
	w.prevP[i] = v.Pos
	w.current[i] = v

	return nil
}

// Next returns the next group of records aligned at a single coordinate,
// one per stream, and advances past it. It returns io.EOF once any stream
// is exhausted, since no further alignment is then possible.
func (w *Walker) Next() ([]*vcfgo.Variant, error) {
	for {
		for i := range w.current {
			if w.current[i] == nil {
				return nil, io.EOF
			}
		}

		// Find the minimum coordinate among the current records; streams
		// sitting at it are behind and get advanced, the rest hold.
		minIdx := 0
		isMin := make([]bool, len(w.current))
		isMin[0] = true
		aligned := true
		for i := 1; i < len(w.current); i++ {
			cmp, err := w.contigs.Compare(
				w.current[i].Chrom(), w.current[i].Pos,
				w.current[minIdx].Chrom(), w.current[minIdx].Pos,
			)
			if err != nil {
				return nil, err
			}
			switch {
			case cmp < 0:
				for j := range isMin {
					isMin[j] = false
				}
				isMin[i] = true
				minIdx = i
				aligned = false
			case cmp == 0:
				isMin[i] = true
			default:
				aligned = false
			}
		}

		if aligned {
			group := make([]*vcfgo.Variant, len(w.current))
			copy(group, w.current)
			for i := range w.current {
				if err := w.advance(i); err != nil && err != io.EOF {
					return nil, err
				}
			}
			return group, nil
		}

		for i := range w.current {
			if !isMin[i] {
				continue
			}
			if err := w.advance(i); err != nil && err != io.EOF {
				return nil, err
			}
		}
	}
}
