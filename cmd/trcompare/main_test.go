package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trtoolkit/trcompare/compare"
	"github.com/trtoolkit/trcompare/mergevcf"
	"github.com/trtoolkit/trcompare/trh"
)

const testVCFHeader = "##fileformat=VCFv4.1\n" +
	"##contig=<ID=chr1,length=1000000>\n" +
	"##INFO=<ID=RU,Number=1,Type=String,Description=\"Repeat motif\">\n" +
	"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n" +
	"##FORMAT=<ID=REPCN,Number=2,Type=Integer,Description=\"Genotype given in number of copies of the repeat motif\">\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tA\tB\n"

func repeatLine(pos string, info string) string {
	return "chr1\t" + pos + "\t.\tCAGCAGCAG\tCAGCAGCAGCAG\t.\tPASS\t" + info + "\tGT\t0/1\t0/0\n"
}

func testComparison(t *testing.T, vcf1, vcf2 string) (*mergevcf.Walker, *compare.Comparison) {
	t.Helper()

	r1, err := mergevcf.NewReader(strings.NewReader(vcf1))
	if err != nil {
		t.Fatal(err)
	}
	r2, err := mergevcf.NewReader(strings.NewReader(vcf2))
	if err != nil {
		t.Fatal(err)
	}

	contigs, err := mergevcf.ContigsFromHeader(r1.Header())
	if err != nil {
		t.Fatal(err)
	}
	walker, err := mergevcf.NewWalker(contigs, r1, r2)
	if err != nil {
		t.Fatal(err)
	}

	idx1, idx2, shared := compare.SharedSamples(r1.SampleNames(), r2.SampleNames(), nil)

	return walker, compare.NewComparison(nil, idx1, idx2, shared)
}

func TestCompareStreamsNumRecordsCutoff(t *testing.T) {
	vcf := testVCFHeader +
		repeatLine("100", "RU=CAG") +
		repeatLine("200", "RU=CAG") +
		repeatLine("300", "RU=CAG")

	walker, comparison := testComparison(t, vcf, vcf)
	compared, err := compareStreams(walker, comparison, trh.TypeGangSTR, trh.TypeGangSTR, 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if compared != 2 {
		t.Errorf("compared %d pairs, want the cutoff of 2", compared)
	}
	if len(comparison.Locus) != 2 {
		t.Errorf("accumulated %d locus rows, want 2", len(comparison.Locus))
	}

	walker, comparison = testComparison(t, vcf, vcf)
	compared, err = compareStreams(walker, comparison, trh.TypeGangSTR, trh.TypeGangSTR, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if compared != 3 {
		t.Errorf("compared %d pairs with no cutoff, want all 3", compared)
	}
}

func TestCompareStreamsStopsOnMalformedRecord(t *testing.T) {
	good := testVCFHeader +
		repeatLine("100", "RU=CAG") +
		repeatLine("200", "RU=CAG")
	bad := testVCFHeader +
		repeatLine("100", "RU=CAG") +
		repeatLine("200", ".") // no RU

	walker, comparison := testComparison(t, good, bad)
	_, err := compareStreams(walker, comparison, trh.TypeGangSTR, trh.TypeGangSTR, 0, false)
	var he trh.HarmonizationError
	if !errors.As(err, &he) {
		t.Fatalf("expected HarmonizationError, got %v", err)
	}
}

func TestRunWritesNoOutputsOnError(t *testing.T) {
	dir := t.TempDir()
	good := testVCFHeader +
		repeatLine("100", "RU=CAG") +
		repeatLine("200", "RU=CAG")
	bad := testVCFHeader +
		repeatLine("100", "RU=CAG") +
		repeatLine("200", ".") // no RU

	vcf1 := filepath.Join(dir, "a.vcf")
	vcf2 := filepath.Join(dir, "b.vcf")
	if err := os.WriteFile(vcf1, []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(vcf2, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	prefix := filepath.Join(dir, "result")
	err := run(config{vcf1: vcf1, vcf2: vcf2, outPrefix: prefix, vcftype1: "auto", vcftype2: "auto", noPlot: true})
	if err == nil {
		t.Fatal("expected the malformed record to fail the run")
	}

	for _, suffix := range []string{"-overall.tab", "-locuscompare.tab", "-samplecompare.tab"} {
		if _, err := os.Stat(prefix + suffix); !os.IsNotExist(err) {
			t.Errorf("%s exists after a failed run", prefix+suffix)
		}
	}
}
