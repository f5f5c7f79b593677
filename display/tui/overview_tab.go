package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gitlab.com/emberline/vitals/display/widgets"
	"gitlab.com/emberline/vitals/internal/format"
	"gitlab.com/emberline/vitals/sampler"
)

// gaugeWidth is the bar width shared by all overview gauges.
const gaugeWidth = 24

// renderOverview renders the live metrics tab: one gauge per enabled
// metric, load averages, host identity and network totals.
func (m Model) renderOverview() string {
	if m.snap == nil {
		return "No samples yet\n\nWaiting for the first pass to complete."
	}

	var sections []string

	sections = append(sections, styleTitle.Render("Live Metrics"))
	sections = append(sections, "")
	sections = append(sections, m.renderGauges(m.snap)...)
	sections = append(sections, "")

	sections = append(sections,
		styleLabel.Render("Load:")+" "+m.snap.Load.String())
	sections = append(sections, m.renderHostLines()...)

	sections = append(sections, "")
	sections = append(sections, m.renderSchedulerLine())

	return strings.Join(sections, "\n")
}

// renderGauges returns one gauge line per metric, in fixed order.
func (m Model) renderGauges(snap *sampler.Snapshot) []string {
	wifiDetail := ""
	if snap.WiFi.OK {
		wifiDetail = fmt.Sprintf("%.0f dBm", snap.WiFi.DBm)
	}

	gauges := []widgets.Gauge{
		{Label: "CPU", Percent: snap.CPU.Value, Available: snap.CPU.OK, WarnAt: 70, CritAt: 90},
		{Label: "RAM", Percent: snap.RAM.Value, Available: snap.RAM.OK, WarnAt: 70, CritAt: 90},
		{Label: "Swap", Percent: snap.Swap.Value, Available: snap.Swap.OK, WarnAt: 50, CritAt: 80},
		{Label: "Disk", Percent: snap.Disk.Value, Available: snap.Disk.OK, WarnAt: 80, CritAt: 95},
		{Label: "Temp", Percent: snap.Temperature.Value, Available: snap.Temperature.OK,
			WarnAt: 70, CritAt: 80, Detail: "°C scale"},
		{Label: "WiFi", Percent: snap.WiFi.Percent, Available: snap.WiFi.OK, Detail: wifiDetail},
	}

	lines := make([]string, 0, len(gauges))
	for _, g := range gauges {
		g.Width = gaugeWidth
		lines = append(lines, g.Render())
	}
	return lines
}

// renderHostLines renders host identity, uptime and network totals.
func (m Model) renderHostLines() []string {
	var lines []string

	if m.host.Hostname != "" {
		lines = append(lines, styleLabel.Render("Host:")+" "+
			fmt.Sprintf("%s (%s, kernel %s)", m.host.Hostname, m.host.Platform, m.host.Kernel))
		lines = append(lines, styleLabel.Render("Uptime:")+" "+
			format.FormatDuration(time.Duration(m.host.Uptime)*time.Second))
	}

	if m.netOK {
		lines = append(lines, styleLabel.Render("Net:")+" "+
			fmt.Sprintf("%s down / %s up", humanize.Bytes(m.net.BytesRecv), humanize.Bytes(m.net.BytesSent)))
	}

	return lines
}

// renderSchedulerLine shows both the persisted flag and the live timer
// state, so drift between the two is visible at a glance.
func (m Model) renderSchedulerLine() string {
	flag := "off"
	if m.deps.Config.SchedulerEnabled {
		flag = "on"
	}
	timer := "inactive"
	if m.timerActive {
		timer = "active"
	}
	return styleLabel.Render("Scheduler:") + fmt.Sprintf(" %s (timer %s)", flag, timer)
}
