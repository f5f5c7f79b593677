package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"gitlab.com/emberline/vitals/internal/format"
)

// renderProcesses renders the heaviest processes by CPU share.
func (m Model) renderProcesses(height int) string {
	if len(m.procs) == 0 {
		return "No process data yet"
	}

	var sections []string
	sections = append(sections, styleTitle.Render("Top Processes"))
	sections = append(sections, "")
	sections = append(sections, styleLabel.Render(
		fmt.Sprintf("%7s  %-24s %7s %7s %10s", "PID", "NAME", "CPU%", "MEM%", "RSS")))

	rows := m.procs
	if max := height - 4; max > 0 && len(rows) > max {
		rows = rows[:max]
	}

	for _, p := range rows {
		sections = append(sections, fmt.Sprintf("%7d  %-24s %7.1f %7.1f %10s",
			p.PID,
			format.TruncateWithEllipsis(p.Name, 24),
			p.CPUPercent,
			p.MemPercent,
			humanize.Bytes(p.RSS)))
	}

	return strings.Join(sections, "\n")
}
