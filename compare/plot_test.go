package compare

import (
	"testing"

	chart "github.com/wcharczuk/go-chart/v2"
)

func TestGenotypeSumChartAxisRange(t *testing.T) {
	g1 := []float64{0, 1, 2}
	g2 := []float64{0, 1, 3}

	graph := genotypeSumChart("", g1, g2, -4, 12)
	for _, r := range []chart.Range{graph.XAxis.Range, graph.YAxis.Range} {
		cr, ok := r.(*chart.ContinuousRange)
		if !ok {
			t.Fatalf("axis range is %T, want a pinned continuous range", r)
		}
		if cr.Min != -4 || cr.Max != 12 {
			t.Errorf("axis range %v-%v, want -4-12", cr.Min, cr.Max)
		}
	}
	if graph.XAxis.Range == graph.YAxis.Range {
		t.Error("axes must carry separate range instances")
	}

	auto := genotypeSumChart("", g1, g2, 0, 0)
	if auto.XAxis.Range != nil || auto.YAxis.Range != nil {
		t.Error("equal bounds must leave the axes fit to the data")
	}
}

func TestBubbleTiers(t *testing.T) {
	counts := map[gtSumPair]int{
		{0, 0}: 1,
		{1, 1}: 5,
		{2, 2}: 9,
	}

	tiers := bubbleTiers(counts)
	if len(tiers) != 3 {
		t.Fatalf("got %d tiers, want one per count magnitude", len(tiers))
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Style.DotWidth <= tiers[i-1].Style.DotWidth {
			t.Errorf("tier %d width %v not larger than tier %d width %v",
				i, tiers[i].Style.DotWidth, i-1, tiers[i-1].Style.DotWidth)
		}
	}
}
