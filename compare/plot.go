package compare

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// PlotConcordanceRanks renders the values best-first against their rank, so
// the tail of poorly-concordant loci or samples is visible at a glance.
func PlotConcordanceRanks(path, title string, conc []float64) error {
	if len(conc) == 0 {
		return nil
	}

	xs := make([]float64, len(conc))
	for i := range xs {
		xs[i] = float64(i)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  640,
		Height: 480,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1.05},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: conc,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
				},
			},
		},
	}

	return renderPNG(path, graph)
}

type gtSumPair struct {
	x, y float64
}

// PlotGenotypeSums renders a bubble plot of the paired genotype sums, one
// bubble per distinct (sum1, sum2) pair, dot width scaled by how many calls
// landed there. axisMin and axisMax pin both axes; equal values leave the
// axes fit to the data.
func PlotGenotypeSums(path, title string, g1, g2 []float64, axisMin, axisMax int) error {
	if len(g1) == 0 {
		return nil
	}

	return renderPNG(path, genotypeSumChart(title, g1, g2, axisMin, axisMax))
}

func genotypeSumChart(title string, g1, g2 []float64, axisMin, axisMax int) chart.Chart {
	counts := make(map[gtSumPair]int, len(g1))
	lo, hi := g1[0], g1[0]
	for i := range g1 {
		counts[gtSumPair{g1[i], g2[i]}]++
		for _, v := range []float64{g1[i], g2[i]} {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	var xRange, yRange chart.Range
	if axisMin != axisMax {
		// Separate instances: each axis stores its own pixel domain on the
		// range during rendering.
		xRange = &chart.ContinuousRange{Min: float64(axisMin), Max: float64(axisMax)}
		yRange = &chart.ContinuousRange{Min: float64(axisMin), Max: float64(axisMax)}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			XValues: []float64{lo, hi},
			YValues: []float64{lo, hi},
			Style: chart.Style{
				StrokeWidth:     1,
				StrokeColor:     drawing.ColorFromHex("cccccc"),
				StrokeDashArray: []float64{4, 4},
			},
		},
	}
	for _, tier := range bubbleTiers(counts) {
		series = append(series, tier)
	}

	return chart.Chart{
		Title:  title,
		Width:  640,
		Height: 480,
		XAxis: chart.XAxis{
			Range: xRange,
		},
		YAxis: chart.YAxis{
			Range: yRange,
		},
		Series: series,
	}
}

func observedCountRange(counts map[gtSumPair]int) (int, int) {
	first := true
	lo, hi := 0, 0
	for _, n := range counts {
		if first || n < lo {
			lo = n
		}
		if first || n > hi {
			hi = n
		}
		first = false
	}

	return lo, hi
}

// bubbleTiers buckets the pairs into at most three dot-width tiers spanning
// the observed call counts, largest counts drawn widest.
func bubbleTiers(counts map[gtSumPair]int) []chart.ContinuousSeries {
	minCount, maxCount := observedCountRange(counts)
	span := maxCount - minCount

	widths := []float64{3, 6, 9}
	xs := make([][]float64, len(widths))
	ys := make([][]float64, len(widths))

	pairs := make([]gtSumPair, 0, len(counts))
	for p := range counts {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].x != pairs[j].x {
			return pairs[i].x < pairs[j].x
		}
		return pairs[i].y < pairs[j].y
	})

	for _, p := range pairs {
		n := counts[p]
		tier := 0
		if span > 0 {
			tier = (n - minCount) * len(widths) / (span + 1)
		}
		xs[tier] = append(xs[tier], p.x)
		ys[tier] = append(ys[tier], p.y)
	}

	var out []chart.ContinuousSeries
	for i, w := range widths {
		if len(xs[i]) == 0 {
			continue
		}
		out = append(out, chart.ContinuousSeries{
			Name:    fmt.Sprintf("bucket %d", i+1),
			XValues: xs[i],
			YValues: ys[i],
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    w,
			},
		})
	}

	return out
}

func renderPNG(path string, graph chart.Chart) error {
	// Render to a byte buffer
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return err
	}

	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer outFile.Close()
	if _, err := buffer.WriteTo(outFile); err != nil {
		return err
	}

	return nil
}
