package mergevcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/brentp/irelate/interfaces"
	"github.com/carbocation/bix"
	"github.com/carbocation/vcfgo"
)

var BufferSize = 4096 * 8

// Reader yields raw VCF records in file order, from a whole file (plain or
// bgzipped) or from a tabix-indexed region of one.
type Reader struct {
	Path string

	vr      *vcfgo.Reader
	tbx     *bix.Bix
	it      interfaces.RelatableIterator
	closers []io.Closer
}

// NewReader wraps an already-open VCF stream.
func NewReader(r io.Reader) (*Reader, error) {
	vr, err := vcfgo.NewReader(r, true) // lazy genotypes; parsed per record in Next
	if err != nil {
		if vr == nil {
			return nil, err
		}
		// Header nits (odd INFO types and the like) are recoverable; real
		// structural problems surface on the first Read.
		vr.Clear()
	}

	return &Reader{vr: vr}, nil
}

// Open reads a VCF from disk, transparently ungzipping.
func Open(path string) (*Reader, error) {
	fraw, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var f io.Reader = fraw
	if gz, err := gzip.NewReader(fraw); err == nil {
		f = gz
	} else if _, err := fraw.Seek(0, 0); err != nil {
		fraw.Close()
		return nil, err
	}

	rdr, err := NewReader(bufio.NewReaderSize(f, BufferSize))
	if err != nil {
		fraw.Close()
		return nil, err
	}
	rdr.Path = path
	rdr.closers = append(rdr.closers, fraw)

	return rdr, nil
}

// OpenRegion reads only the records overlapping one locus, via the file's
// tabix index.
func OpenRegion(path string, locus TabixLocus) (*Reader, error) {
	tbx, err := bix.New(path)
	if err != nil {
		return nil, err
	}

	it, err := tbx.Query(locus)
	if err != nil {
		tbx.Close()
		return nil, err
	}

	return &Reader{Path: path, tbx: tbx, it: it}, nil
}

func (r *Reader) Header() *vcfgo.Header {
	if r.tbx != nil {
		return r.tbx.VReader.Header
	}

	return r.vr.Header
}

func (r *Reader) SampleNames() []string {
	return r.Header().SampleNames
}

// HasFormat reports whether the header declares a FORMAT field.
func (r *Reader) HasFormat(id string) bool {
	_, ok := r.Header().SampleFormats[id]
	return ok
}

// Next returns the next record with genotypes parsed, or io.EOF.
func (r *Reader) Next() (*vcfgo.Variant, error) {
	if r.tbx != nil {
		return r.nextRegion()
	}

	v := r.vr.Read()
	if v == nil {
		if err := r.vr.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	// Per-record soft errors (e.g. out-of-spec FORMAT values) accumulate on
	// the reader; drop them so they do not mask a later hard failure.
	r.vr.Clear()

	if err := r.vr.Header.ParseSamples(v); err != nil {
		return nil, err
	}

	return v, nil
}

func (r *Reader) nextRegion() (*vcfgo.Variant, error) {
	v, err := r.it.Next()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	wrap, ok := v.(interfaces.VarWrap)
	if !ok {
		return nil, fmt.Errorf("%s:%d from %s is not a VCF record", v.Chrom(), v.End(), r.Path)
	}
	variant, ok := wrap.IVariant.(*vcfgo.Variant)
	if !ok {
		return nil, fmt.Errorf("%s:%d from %s is not a VCF record", v.Chrom(), v.End(), r.Path)
	}

	if err := r.tbx.VReader.Header.ParseSamples(variant); err != nil {
		return nil, err
	}

	return variant, nil
}

func (r *Reader) Close() error {
	var firstErr error
	if r.it != nil {
		r.it.Close()
	}
	if r.tbx != nil {
		firstErr = r.tbx.Close()
	}
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
