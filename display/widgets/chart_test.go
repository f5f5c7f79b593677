package widgets

import (
	"strings"
	"testing"
	"time"

	"gitlab.com/emberline/vitals/aggregate"
	"gitlab.com/emberline/vitals/series"
)

func testBuckets(t *testing.T, samples []series.Sample) []aggregate.Bucket {
	t.Helper()
	now := time.Unix(100_000, 0)
	return aggregate.Windowed(samples, now, time.Minute, 10*time.Second)
}

func TestRenderChartEmptyWindow(t *testing.T) {
	out := RenderChart(ChartConfig{Buckets: testBuckets(t, nil)})
	if out != "no data in window" {
		t.Errorf("empty window = %q", out)
	}

	if out := RenderChart(ChartConfig{}); out != "no data in window" {
		t.Errorf("nil buckets = %q", out)
	}
}

func TestRenderChartGapsForEmptyBuckets(t *testing.T) {
	now := time.Unix(100_000, 0)
	samples := []series.Sample{
		{Time: now.Add(-50 * time.Second).Unix(), Value: 40},
		{Time: now.Add(-10 * time.Second).Unix(), Value: 80},
	}

	out := RenderChart(ChartConfig{Buckets: testBuckets(t, samples)})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want scale/chart/axis", len(lines))
	}

	chart := lines[1]
	if !strings.Contains(chart, " ") {
		t.Errorf("buckets without samples should render as gaps: %q", chart)
	}
	if !strings.ContainsRune(chart, chartBlocks[len(chartBlocks)-1]) {
		t.Errorf("the window peak should render as a full column: %q", chart)
	}
	if !strings.Contains(lines[0], "peak 80.0") {
		t.Errorf("scale line = %q", lines[0])
	}
}

func TestRenderChartWidthKeepsNewestBuckets(t *testing.T) {
	now := time.Unix(100_000, 0)
	samples := []series.Sample{
		{Time: now.Add(-50 * time.Second).Unix(), Value: 10},
		{Time: now.Unix(), Value: 90},
	}

	// Width 3 keeps only the newest columns; the old sample falls off.
	out := RenderChart(ChartConfig{Buckets: testBuckets(t, samples), Width: 3})
	chart := strings.Split(out, "\n")[1]
	cols := []rune(chart)
	if len(cols) != 3 {
		t.Fatalf("chart has %d columns, want 3: %q", len(cols), chart)
	}
	if !strings.Contains(out, "peak 90.0") {
		t.Errorf("peak should rescale to visible buckets: %q", out)
	}
}

func TestRenderChartAxisLabels(t *testing.T) {
	now := time.Unix(100_000, 0)
	samples := []series.Sample{{Time: now.Unix(), Value: 50}}
	buckets := testBuckets(t, samples)

	out := RenderChart(ChartConfig{Buckets: buckets, TimeLayout: "15:04:05"})
	axis := strings.Split(out, "\n")[2]

	first := buckets[0].Start.Format("15:04:05")
	if !strings.HasPrefix(axis, first) {
		t.Errorf("axis %q should start with %q", axis, first)
	}
}
