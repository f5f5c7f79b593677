package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/emberline/vitals/aggregate"
)

// chartBlocks are the partial-height column characters, lowest first.
var chartBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// ChartConfig controls the history bucket chart.
type ChartConfig struct {
	// Buckets is the windowed aggregation, oldest first.
	Buckets []aggregate.Bucket

	// Width caps the number of columns; the newest buckets win when the
	// window has more buckets than fit. Zero means one column per bucket.
	Width int

	// TimeLayout formats the axis labels under the chart.
	TimeLayout string

	// Color is the column color.
	Color lipgloss.Color
}

// RenderChart draws one column per bucket, scaled against the window
// maximum. Empty buckets render as gaps, never as zero-height columns:
// a series that was not sampled looks different from one that read zero.
func RenderChart(cfg ChartConfig) string {
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		return "no data in window"
	}

	if cfg.Width > 0 && len(buckets) > cfg.Width {
		buckets = buckets[len(buckets)-cfg.Width:]
	}

	peak := aggregate.MaxValue(buckets)
	if peak == 0 {
		return "no data in window"
	}

	var cols []rune
	for _, b := range buckets {
		if !b.HasData() {
			cols = append(cols, ' ')
			continue
		}
		idx := int(b.Max / peak * float64(len(chartBlocks)-1))
		if idx >= len(chartBlocks) {
			idx = len(chartBlocks) - 1
		}
		cols = append(cols, chartBlocks[idx])
	}

	chart := string(cols)
	if cfg.Color != "" {
		chart = lipgloss.NewStyle().Foreground(cfg.Color).Render(chart)
	}

	axis := renderAxis(buckets, len(cols), cfg.TimeLayout)
	scale := fmt.Sprintf("peak %.1f", peak)

	return strings.Join([]string{scale, chart, axis}, "\n")
}

// renderAxis labels the chart's first and last columns with bucket
// start times, padding the gap between them to the chart width.
func renderAxis(buckets []aggregate.Bucket, width int, layout string) string {
	if layout == "" {
		layout = "15:04:05"
	}

	first := buckets[0].Start.Format(layout)
	last := buckets[len(buckets)-1].Start.Format(layout)

	gap := width - len(first) - len(last)
	if gap < 1 {
		return first
	}
	return first + strings.Repeat(" ", gap) + last
}
