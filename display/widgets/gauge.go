// Package widgets renders the terminal building blocks of the dashboard:
// threshold-colored gauges for live metrics and bucket charts for history.
package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	gaugeFilled = "█"
	gaugeEmpty  = "░"
)

var (
	colorOK      = lipgloss.Color("#22C55E")
	colorWarn    = lipgloss.Color("#EAB308")
	colorCrit    = lipgloss.Color("#EF4444")
	styleMissing = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Gauge is a horizontal bar for one live metric. A metric whose source
// was unavailable renders as "n/a" instead of an empty bar, so a dead
// sensor is never mistaken for a zero reading.
type Gauge struct {
	// Label is the fixed-width name column text.
	Label string

	// Percent is the 0-100 value; clamped on render.
	Percent float64

	// Available is false when the metric had no source this pass.
	Available bool

	// Width is the bar width in cells. Defaults to 20.
	Width int

	// WarnAt and CritAt are the color-change thresholds. A zero CritAt
	// disables threshold coloring (used for metrics without a sensible
	// danger level).
	WarnAt float64
	CritAt float64

	// Detail is an optional annotation after the percent, e.g. "-56 dBm".
	Detail string
}

// Render draws the gauge as a single line.
func (g Gauge) Render() string {
	label := fmt.Sprintf("%-12s", g.Label)

	if !g.Available {
		return label + styleMissing.Render("n/a")
	}

	width := g.Width
	if width <= 0 {
		width = 20
	}

	pct := math.Max(0, math.Min(100, g.Percent))
	filled := int(math.Round(pct / 100 * float64(width)))

	bar := lipgloss.NewStyle().
		Foreground(g.color(pct)).
		Render(strings.Repeat(gaugeFilled, filled))
	bar += strings.Repeat(gaugeEmpty, width-filled)

	line := fmt.Sprintf("%s%s %5.1f%%", label, bar, pct)
	if g.Detail != "" {
		line += "  " + styleMissing.Render(g.Detail)
	}
	return line
}

func (g Gauge) color(pct float64) lipgloss.Color {
	if g.CritAt <= 0 {
		return colorOK
	}
	switch {
	case pct >= g.CritAt:
		return colorCrit
	case pct >= g.WarnAt:
		return colorWarn
	default:
		return colorOK
	}
}
