package tui

import (
	"fmt"
	"strings"

	"gitlab.com/emberline/vitals/aggregate"
	"gitlab.com/emberline/vitals/display/widgets"
)

// renderHistory renders the windowed history tab: the selected series
// as a max-hold bucket chart, plus the series/window selectors.
func (m Model) renderHistory(width int) string {
	preset := m.preset()
	name := m.seriesName()

	var sections []string

	title := fmt.Sprintf("History: %s, last %s", name, preset.Name)
	sections = append(sections, styleTitle.Render(title))

	if !m.deps.Config.Log[name] {
		sections = append(sections, styleNotice.Render("logging disabled for this series"))
	}
	sections = append(sections, "")

	sections = append(sections, widgets.RenderChart(widgets.ChartConfig{
		Buckets:    m.buckets,
		Width:      width,
		TimeLayout: aggregate.TimeLayout(preset.Window),
		Color:      colorPrimary,
	}))

	sections = append(sections, "")
	sections = append(sections, m.renderPresetMenu())
	sections = append(sections, styleFooter.Render("h/l: series  +/-: window"))

	return strings.Join(sections, "\n")
}

// renderPresetMenu shows the window menu with the selection highlighted.
func (m Model) renderPresetMenu() string {
	var items []string
	for i, p := range aggregate.Presets {
		if i == m.presetIdx {
			items = append(items, styleActiveTab.Render(p.Name))
		} else {
			items = append(items, styleInactiveTab.Render(p.Name))
		}
	}
	return strings.Join(items, " ")
}
