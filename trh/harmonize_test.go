package trh

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/carbocation/vcfgo"
)

func readRecords(t *testing.T, vcfText string) []*vcfgo.Variant {
	t.Helper()
	rdr, err := vcfgo.NewReader(strings.NewReader(vcfText), true)
	if err != nil {
		if rdr == nil {
			t.Fatal(err)
		}
		rdr.Clear()
	}

	var out []*vcfgo.Variant
	for {
		v := rdr.Read()
		if v == nil {
			break
		}
		if err := v.Header.ParseSamples(v); err != nil {
			t.Fatal(err)
		}
		out = append(out, v)
		rdr.Clear()
	}

	return out
}

func TestHarmonizeGangSTR(t *testing.T) {
	vcfText := dialectHeaders[TypeGangSTR] +
		"chr1\t100\t.\tCAGCAGCAG\tCAGCAGCAGCAG,CAGCAGCAGCAGCAGCAG\t.\tPASS\tRU=cag\tGT:Q\t0/1:0.9\t1/2:0.8\t.:.\n"

	recs := readRecords(t, vcfText)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}

	rec, err := HarmonizeRecord(TypeGangSTR, recs[0])
	if err != nil {
		t.Fatal(err)
	}

	if rec.Chrom != "chr1" || rec.Pos != 100 || rec.Motif != "CAG" {
		t.Errorf("unexpected locus: %s", rec)
	}
	if rec.RefAllele != "CAGCAGCAG" {
		t.Errorf("ref allele %q", rec.RefAllele)
	}
	if len(rec.AltAlleles) != 2 || !rec.AltAlleles[0].Known() {
		t.Fatalf("unexpected alts: %s", rec)
	}

	if got := rec.GetLengthGenotype(0); !reflect.DeepEqual(got, []float64{3, 4}) {
		t.Errorf("S1 length genotype %v", got)
	}
	if got := rec.GetLengthGenotype(1); !reflect.DeepEqual(got, []float64{4, 6}) {
		t.Errorf("S2 length genotype %v", got)
	}
	if rec.Samples[2].Called {
		t.Error("missing genotype must stay uncalled")
	}
	if v, ok := rec.FormatValue("Q", 0); !ok || v != 0.9 {
		t.Errorf("Q = %v (%v)", v, ok)
	}
}

func TestHarmonizeHipSTR(t *testing.T) {
	vcfText := dialectHeaders[TypeHipSTR] +
		"chr1\t99\t.\tTCAGCAGCAG\tTCAGCAGCAGCAG\t.\tPASS\tSTART=100;END=108;PERIOD=3\tGT:GB\t0|1:0|3\t0|0:0|0\t1\n"

	recs := readRecords(t, vcfText)
	rec, err := HarmonizeRecord(TypeHipSTR, recs[0])
	if err != nil {
		t.Fatal(err)
	}

	if rec.Pos != 100 {
		t.Errorf("pos %d, want the INFO start coordinate", rec.Pos)
	}
	if rec.SourcePos != 99 {
		t.Errorf("source pos %d, want the raw record coordinate 99", rec.SourcePos)
	}
	if rec.Motif != "CAG" {
		t.Errorf("inferred motif %q, want CAG", rec.Motif)
	}

	gts, err := rec.GetStringGenotype(0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gts, []string{"TCAGCAGCAG", "TCAGCAGCAGCAG"}) {
		t.Errorf("S1 string genotype %v", gts)
	}
	if p := rec.GetSamplePloidies(); !reflect.DeepEqual(p, []int{2, 2, 1}) {
		t.Errorf("ploidies %v", p)
	}
}

func TestHarmonizeAdVNTR(t *testing.T) {
	vcfText := dialectHeaders[TypeAdVNTR] +
		"chr1\t100\t.\tGGGAGGGAGGGA\tGGGAGGGA\t.\tPASS\tRU=GGGA;VID=25561\tGT:SR\t0/1:11\t0/0:9\t.\n"

	recs := readRecords(t, vcfText)
	rec, err := HarmonizeRecord(TypeAdVNTR, recs[0])
	if err != nil {
		t.Fatal(err)
	}

	if rec.Motif != "GGGA" || rec.Period() != 4 {
		t.Errorf("motif %q period %d", rec.Motif, rec.Period())
	}
	if got := rec.GetLengthGenotype(0); !reflect.DeepEqual(got, []float64{3, 2}) {
		t.Errorf("S1 length genotype %v", got)
	}
}

func TestHarmonizeEH(t *testing.T) {
	vcfText := dialectHeaders[TypeEH] +
		"chr1\t100\t.\tC\t<STR12>,<STR15>\t.\tPASS\tVARID=STR_1;REPID=STR_1;RU=CAG;REF=3\tGT\t0/1\t1/2\t0/0\n"

	recs := readRecords(t, vcfText)
	rec, err := HarmonizeRecord(TypeEH, recs[0])
	if err != nil {
		t.Fatal(err)
	}

	if rec.RefAllele != "CAGCAGCAG" {
		t.Errorf("ref allele %q, want motif x ref copy number", rec.RefAllele)
	}
	if rec.AltAlleles[0].Known() || rec.AltAlleles[1].Known() {
		t.Error("symbolic alts must stay unknown, not be synthesized")
	}

	if got := rec.GetLengthGenotype(0); !reflect.DeepEqual(got, []float64{3, 12}) {
		t.Errorf("S1 length genotype %v", got)
	}
	if got := rec.GetLengthGenotype(1); !reflect.DeepEqual(got, []float64{12, 15}) {
		t.Errorf("S2 length genotype %v", got)
	}

	// Sequence views: valid for homozygous reference, undefined otherwise.
	gts, err := rec.GetStringGenotype(2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gts, []string{"CAGCAGCAG", "CAGCAGCAG"}) {
		t.Errorf("hom-ref string genotype %v", gts)
	}
	if _, err := rec.GetStringGenotype(0); !errors.As(err, &UndefinedAlleleError{}) {
		t.Errorf("expected UndefinedAlleleError, got %v", err)
	}
}

func TestHarmonizePopSTR(t *testing.T) {
	vcfText := dialectHeaders[TypePopSTR] +
		"chr1\t100\t.\tCAGCAGCAG\t<4.5>,<6>\t.\tPASS\tMotif=CAG;RefLen=3\tGT\t0/1\t1/2\t2/2\n"

	recs := readRecords(t, vcfText)
	rec, err := HarmonizeRecord(TypePopSTR, recs[0])
	if err != nil {
		t.Fatal(err)
	}

	if got := rec.GetLengthGenotype(0); !reflect.DeepEqual(got, []float64{3, 4.5}) {
		t.Errorf("S1 length genotype %v", got)
	}
	if got := rec.GetLengthGenotype(2); !reflect.DeepEqual(got, []float64{6, 6}) {
		t.Errorf("S3 length genotype %v", got)
	}
}

func TestHarmonizeMalformedRecord(t *testing.T) {
	// The stream is typed gangstr, but this record lacks its required RU.
	vcfText := dialectHeaders[TypeGangSTR] +
		"chr1\t100\t.\tCAGCAGCAG\tCAGCAGCAGCAG\t.\tPASS\tREF=3\tGT\t0/1\t0/0\t0/0\n"

	recs := readRecords(t, vcfText)
	_, err := HarmonizeRecord(TypeGangSTR, recs[0])
	var he HarmonizationError
	if !errors.As(err, &he) {
		t.Fatalf("expected HarmonizationError, got %v", err)
	}
	if he.VCFType != TypeGangSTR || he.Pos != 100 {
		t.Errorf("unexpected detail: %+v", he)
	}
}

func TestHarmonizeIdempotent(t *testing.T) {
	vcfText := dialectHeaders[TypeGangSTR] +
		"chr1\t100\t.\tCAGCAGCAG\tCAGCAGCAGCAG\t.\tPASS\tRU=CAG\tGT\t0/1\t1/1\t0/0\n"

	recs := readRecords(t, vcfText)
	first, err := HarmonizeRecord(TypeGangSTR, recs[0])
	if err != nil {
		t.Fatal(err)
	}
	second, err := HarmonizeRecord(TypeGangSTR, recs[0])
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("harmonizing the same record twice must agree")
	}
}

func TestInferMotif(t *testing.T) {
	for _, v := range []struct {
		seq    string
		period int
		want   string
	}{
		{"CAGCAGCAG", 3, "CAG"},
		{"TCAGCAGCAG", 3, "CAG"},
		{"ATATATAT", 2, "AT"},
	} {
		got, err := inferMotif(v.seq, v.period)
		if err != nil {
			t.Errorf("inferMotif(%q, %d): %v", v.seq, v.period, err)
			continue
		}
		if got != v.want {
			t.Errorf("inferMotif(%q, %d) = %q, want %q", v.seq, v.period, got, v.want)
		}
	}

	if _, err := inferMotif("CA", 3); err == nil {
		t.Error("expected error for sequence shorter than period")
	}
}
