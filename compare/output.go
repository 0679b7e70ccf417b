package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// WriteLocusTable writes the per-locus summary as a tab-delimited table.
func WriteLocusTable(path string, rows []LocusSummaryRow) error {
	return writeTSV(path, &rows)
}

// WriteSampleTable writes the per-sample summary as a tab-delimited table.
func WriteSampleTable(path string, rows []SampleSummaryRow) error {
	return writeTSV(path, &rows)
}

func writeTSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVWriter(func(out io.Writer) *gocsv.SafeCSVWriter {
		w := csv.NewWriter(out)
		w.Comma = '\t'
		return gocsv.NewSafeCSVWriter(w)
	})

	return gocsv.MarshalFile(rows, f)
}

// WriteOverallTable writes the overall summary. Its columns are dynamic
// (one per stratified FORMAT field), so it is assembled by hand rather than
// from struct tags.
func WriteOverallTable(path string, formatFields []string, rows []OverallRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := append([]string{"period"}, formatFields...)
	header = append(header, "concordance-seq", "concordance-len", "r2", "numcalls")
	if _, err := fmt.Fprintln(f, strings.Join(header, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		cols := append([]string{row.Period}, row.FormatBins...)
		cols = append(cols,
			formatStat(row.ConcSeq),
			formatStat(row.ConcLen),
			formatStat(row.R),
			strconv.Itoa(row.NumCalls),
		)
		if _, err := fmt.Fprintln(f, strings.Join(cols, "\t")); err != nil {
			return err
		}
	}

	return nil
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
