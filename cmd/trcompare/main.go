package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"

	"github.com/trtoolkit/trcompare/compare"
	"github.com/trtoolkit/trcompare/mergevcf"
	"github.com/trtoolkit/trcompare/trh"
)

// Special value that is to be set using ldflags
// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
// Consider aliasing in .profile: alias gobuild='go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"'
var builddate string

func main() {
	fmt.Fprintf(os.Stderr, "This trcompare binary was built at: %s\n", builddate)

	var stratifyFields, stratifyBinsizes flagSlice
	var vcf1, vcf2, outPrefix, vcftype1, vcftype2, samplesFile, region string
	var stratifyFile, bubbleMin, bubbleMax, numRecords int
	var byPeriod, noPlot, verbose bool
	flag.StringVar(&vcf1, "vcf1", "", "Path to the first VCF with TR genotypes (plain or bgzipped).")
	flag.StringVar(&vcf2, "vcf2", "", "Path to the second VCF with TR genotypes (plain or bgzipped).")
	flag.StringVar(&outPrefix, "out", "", "Prefix for output tables and plots. Its directory must already exist.")
	flag.StringVar(&vcftype1, "vcftype1", "auto", "Genotyper dialect of -vcf1. One of: auto, "+trh.VCFTypeNames()+".")
	flag.StringVar(&vcftype2, "vcftype2", "auto", "Genotyper dialect of -vcf2. One of: auto, "+trh.VCFTypeNames()+".")
	flag.StringVar(&samplesFile, "samples", "", "Optional file with one sample ID per line; restricts the comparison to these samples.")
	flag.StringVar(&region, "region", "", "Restrict to one region (chrom:start-end, 1-based inclusive). Requires tabix indexes on both VCFs.")
	flag.Var(&stratifyFields, "stratify-field", "FORMAT field to stratify the overall table by. Pass once per field, paired with -stratify-binsizes.")
	flag.Var(&stratifyBinsizes, "stratify-binsizes", "min:max:binsize for the matching -stratify-field. Pass once per field.")
	flag.IntVar(&stratifyFile, "stratify-file", 0, "Which VCF the stratification bins apply to: 0 = both, 1 = -vcf1, 2 = -vcf2.")
	flag.BoolVar(&byPeriod, "period", false, "Also stratify the overall table (and bubble plots) by repeat period.")
	flag.IntVar(&bubbleMin, "bubble-min", 0, "Lower bound for both bubble plot axes. Left unset (equal to -bubble-max), the axes fit the data.")
	flag.IntVar(&bubbleMax, "bubble-max", 0, "Upper bound for both bubble plot axes. Left unset (equal to -bubble-min), the axes fit the data.")
	flag.BoolVar(&noPlot, "noplot", false, "Skip plot rendering; write tables only.")
	flag.IntVar(&numRecords, "numrecords", 0, "If set, stop after this many aligned record pairs.")
	flag.BoolVar(&verbose, "verbose", false, "Log progress per compared locus.")

	flag.Parse()

	if vcf1 == "" || vcf2 == "" || outPrefix == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(config{
		vcf1:             vcf1,
		vcf2:             vcf2,
		outPrefix:        outPrefix,
		vcftype1:         vcftype1,
		vcftype2:         vcftype2,
		samplesFile:      samplesFile,
		region:           region,
		stratifyFields:   stratifyFields,
		stratifyBinsizes: stratifyBinsizes,
		stratifyFile:     stratifyFile,
		byPeriod:         byPeriod,
		bubbleMin:        bubbleMin,
		bubbleMax:        bubbleMax,
		noPlot:           noPlot,
		numRecords:       numRecords,
		verbose:          verbose,
	}); err != nil {
		log.Fatalln(pfx.Err(err))
	}
}

type config struct {
	vcf1, vcf2       string
	outPrefix        string
	vcftype1         string
	vcftype2         string
	samplesFile      string
	region           string
	stratifyFields   []string
	stratifyBinsizes []string
	stratifyFile     int
	byPeriod         bool
	bubbleMin        int
	bubbleMax        int
	noPlot           bool
	numRecords       int
	verbose          bool
}

func run(cfg config) error {
	if dir := filepath.Dir(cfg.outPrefix); dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("output directory %s does not exist", dir)
		}
	}

	requested1, err := trh.ParseVCFType(cfg.vcftype1)
	if err != nil {
		return err
	}
	requested2, err := trh.ParseVCFType(cfg.vcftype2)
	if err != nil {
		return err
	}

	bins, err := parseBinsizes(cfg.stratifyFields, cfg.stratifyBinsizes)
	if err != nil {
		return err
	}
	if cfg.stratifyFile < compare.StratifyBoth || cfg.stratifyFile > compare.StratifyFile2 {
		return fmt.Errorf("-stratify-file must be 0, 1 or 2, not %d", cfg.stratifyFile)
	}

	var allow []string
	if cfg.samplesFile != "" {
		allow, err = readSampleList(cfg.samplesFile)
		if err != nil {
			return err
		}
		log.Printf("Restricting to the %d samples listed in %s\n", len(allow), cfg.samplesFile)
	}

	r1, err := openStream(cfg.vcf1, cfg.region)
	if err != nil {
		return err
	}
	defer r1.Close()
	r2, err := openStream(cfg.vcf2, cfg.region)
	if err != nil {
		return err
	}
	defer r2.Close()

	vcftype1, err := trh.InferVCFType(r1.Header(), requested1)
	if err != nil {
		return err
	}
	vcftype2, err := trh.InferVCFType(r2.Header(), requested2)
	if err != nil {
		return err
	}
	log.Printf("Genotyper dialects: %s is %s, %s is %s\n", cfg.vcf1, vcftype1, cfg.vcf2, vcftype2)

	if err := checkStratifyFields(cfg.stratifyFields, cfg.stratifyFile, r1, r2); err != nil {
		return err
	}

	idx1, idx2, shared := compare.SharedSamples(r1.SampleNames(), r2.SampleNames(), allow)
	if len(shared) == 0 {
		return fmt.Errorf("the two VCFs share no samples to compare")
	}
	log.Printf("Comparing %d shared samples\n", len(shared))

	contigs, err := mergevcf.ContigsFromHeader(r1.Header())
	if err != nil {
		return err
	}

	walker, err := mergevcf.NewWalker(contigs, r1, r2)
	if err != nil {
		return err
	}

	comparison := compare.NewComparison(cfg.stratifyFields, idx1, idx2, shared)

	compared, err := compareStreams(walker, comparison, vcftype1, vcftype2, cfg.numRecords, cfg.verbose)
	if err != nil {
		return err
	}
	log.Printf("Compared %d aligned loci\n", compared)

	return writeOutputs(cfg, bins, comparison)
}

// compareStreams walks the aligned record pairs and feeds them through the
// comparison, stopping early after numRecords pairs when that is positive.
// Any error leaves the run without outputs.
func compareStreams(walker *mergevcf.Walker, comparison *compare.Comparison, vcftype1, vcftype2 trh.VCFType, numRecords int, verbose bool) (int, error) {
	compared := 0
	for {
		if numRecords > 0 && compared >= numRecords {
			log.Printf("Stopping after %d aligned record pairs (-numrecords)\n", compared)
			return compared, nil
		}

		group, err := walker.Next()
		if err == io.EOF {
			return compared, nil
		}
		if err != nil {
			return compared, err
		}

		rec1, err := trh.HarmonizeRecord(vcftype1, group[0])
		if err != nil {
			return compared, err
		}
		rec2, err := trh.HarmonizeRecord(vcftype2, group[1])
		if err != nil {
			return compared, err
		}

		if err := comparison.Update(rec1, rec2); err != nil {
			return compared, err
		}
		compared++

		if verbose {
			log.Printf("Compared %s:%d\n", rec1.Chrom, rec1.SourcePos)
		} else if compared%10000 == 0 {
			log.Printf("Compared %d aligned loci so far\n", compared)
		}
	}
}

func openStream(path, region string) (*mergevcf.Reader, error) {
	if region == "" {
		return mergevcf.Open(path)
	}

	locus, err := mergevcf.ParseRegion(region)
	if err != nil {
		return nil, err
	}

	return mergevcf.OpenRegion(path, locus)
}

func readSampleList(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("sample list %s is empty", path)
	}

	return out, nil
}

// parseBinsizes pairs each stratified FORMAT field with its min:max:binsize
// triple.
func parseBinsizes(fields, binsizes []string) ([][3]float64, error) {
	if len(fields) != len(binsizes) {
		return nil, fmt.Errorf("got %d -stratify-field values but %d -stratify-binsizes values", len(fields), len(binsizes))
	}

	out := make([][3]float64, len(binsizes))
	for i, raw := range binsizes {
		parts := strings.Split(raw, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("-stratify-binsizes %q is not min:max:binsize", raw)
		}
		for j, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("-stratify-binsizes %q: %v", raw, err)
			}
			out[i][j] = v
		}
		if out[i][2] <= 0 || out[i][1] <= out[i][0] {
			return nil, fmt.Errorf("-stratify-binsizes %q needs min < max and binsize > 0", raw)
		}
	}

	return out, nil
}

func checkStratifyFields(fields []string, scope int, r1, r2 *mergevcf.Reader) error {
	for _, field := range fields {
		missing1 := scope != compare.StratifyFile2 && !r1.HasFormat(field)
		missing2 := scope != compare.StratifyFile1 && !r2.HasFormat(field)
		if missing1 || missing2 {
			return fmt.Errorf("FORMAT field %s is not declared by the VCF(s) it would stratify", field)
		}
	}

	return nil
}

func writeOutputs(cfg config, bins [][3]float64, c *compare.Comparison) error {
	locusRows := compare.LocusSummaries(c.Locus)
	sampleRows := compare.SampleSummaries(c.PerSample)
	overallRows := compare.OverallSummaries(c.Locus, compare.Strata{
		Fields:   cfg.stratifyFields,
		Bins:     bins,
		Scope:    cfg.stratifyFile,
		ByPeriod: cfg.byPeriod,
	})

	if err := compare.WriteOverallTable(cfg.outPrefix+"-overall.tab", cfg.stratifyFields, overallRows); err != nil {
		return err
	}
	if err := compare.WriteLocusTable(cfg.outPrefix+"-locuscompare.tab", locusRows); err != nil {
		return err
	}
	if err := compare.WriteSampleTable(cfg.outPrefix+"-samplecompare.tab", sampleRows); err != nil {
		return err
	}
	log.Printf("Wrote %s-{overall,locuscompare,samplecompare}.tab\n", cfg.outPrefix)

	if cfg.noPlot {
		return nil
	}

	locusConc := make([]float64, len(locusRows))
	for i, row := range locusRows {
		locusConc[i] = row.ConcLen
	}
	if err := compare.PlotConcordanceRanks(cfg.outPrefix+"-locuscompare.png", "Per-locus length concordance", locusConc); err != nil {
		return err
	}

	sampleConc := make([]float64, len(sampleRows))
	for i, row := range sampleRows {
		sampleConc[i] = row.ConcLen
	}
	if err := compare.PlotConcordanceRanks(cfg.outPrefix+"-samplecompare.png", "Per-sample length concordance", sampleConc); err != nil {
		return err
	}

	if err := plotBubbles(cfg, c); err != nil {
		return err
	}
	log.Printf("Wrote plots with prefix %s\n", cfg.outPrefix)

	return nil
}

func plotBubbles(cfg config, c *compare.Comparison) error {
	byPeriod := map[int][2][]float64{}
	var allG1, allG2 []float64
	for _, l := range c.Locus {
		allG1 = append(allG1, l.GtSum1...)
		allG2 = append(allG2, l.GtSum2...)
		if cfg.byPeriod {
			pair := byPeriod[l.Period]
			pair[0] = append(pair[0], l.GtSum1...)
			pair[1] = append(pair[1], l.GtSum2...)
			byPeriod[l.Period] = pair
		}
	}

	err := compare.PlotGenotypeSums(cfg.outPrefix+"-bubble-ALL.png",
		"Genotype sums, all periods", allG1, allG2, cfg.bubbleMin, cfg.bubbleMax)
	if err != nil {
		return err
	}

	for period, pair := range byPeriod {
		name := fmt.Sprintf("%s-bubble-period%d.png", cfg.outPrefix, period)
		title := fmt.Sprintf("Genotype sums, period %d", period)
		if err := compare.PlotGenotypeSums(name, title, pair[0], pair[1], cfg.bubbleMin, cfg.bubbleMax); err != nil {
			return err
		}
	}

	return nil
}
