// Package tui is the interactive dashboard: a tabbed Bubbletea
// application showing live metrics, windowed history and the heaviest
// processes, refreshed on a fixed tick.
package tui

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/emberline/vitals/aggregate"
	"gitlab.com/emberline/vitals/config"
	"gitlab.com/emberline/vitals/sampler"
	"gitlab.com/emberline/vitals/schedule"
	"gitlab.com/emberline/vitals/series"
	"gitlab.com/emberline/vitals/sysinfo"
)

// Tab identifies which tab is currently active.
type Tab int

const (
	TabOverview Tab = iota
	TabHistory
	TabProcesses
	tabCount // sentinel for wrapping
)

// tabNames maps each Tab value to its display label.
var tabNames = map[Tab]string{
	TabOverview:  "Overview",
	TabHistory:   "History",
	TabProcesses: "Processes",
}

// Deps bundles everything the dashboard reads and writes.
type Deps struct {
	ConfigPath  string
	Config      *config.Config
	Store       *series.Store
	Sampler     *sampler.Sampler
	Sysinfo     *sysinfo.Provider
	Sched       *schedule.Reconciler
	Logger      *slog.Logger
	SnapshotDir string // destination for snapshot exports; "" means cwd
}

// Model is the top-level Bubbletea model for the dashboard.
type Model struct {
	deps Deps

	activeTab Tab
	width     int
	height    int
	ready     bool

	snap        *sampler.Snapshot
	host        sysinfo.Host
	net         sysinfo.NetTotals
	netOK       bool
	procs       []sysinfo.Process
	buckets     []aggregate.Bucket
	timerActive bool

	seriesIdx int
	presetIdx int

	help        help.Model
	notice      string
	lastUpdated time.Time
}

// NewModel returns an initialized Model with the Overview tab active
// and the 10 minute history preset selected.
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Model{
		deps:      deps,
		activeTab: TabOverview,
		presetIdx: 1,
		help:      help.New(),
	}
}

// seriesName returns the history series currently selected.
func (m Model) seriesName() string {
	names := config.SeriesNames()
	return names[m.seriesIdx%len(names)]
}

// preset returns the history window currently selected.
func (m Model) preset() aggregate.Preset {
	return aggregate.Presets[m.presetIdx]
}

// Init implements tea.Model. It triggers the initial refresh; all
// subsequent refreshes are driven by user keys, never a timer.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case refreshMsg:
		m.snap = msg.snap
		m.host = msg.host
		m.net = msg.net
		m.netOK = msg.netOK
		m.procs = msg.procs
		m.buckets = msg.buckets
		m.timerActive = msg.timerActive
		m.lastUpdated = time.Now()

	case configReloadedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("config reload failed: %v", msg.err)
			return m, nil
		}
		m.deps.Config = msg.cfg
		m.notice = "config reloaded"
		return m, m.refreshCmd()

	case snapshotSavedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("snapshot failed: %v", msg.err)
		} else {
			m.notice = "snapshot saved to " + msg.path
		}

	case schedulerToggledMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("scheduler toggle failed: %v", msg.err)
		}
		m.deps.Config.SchedulerEnabled = msg.enabled
		if msg.err == nil {
			if msg.enabled {
				m.notice = "scheduler enabled"
			} else {
				m.notice = "scheduler disabled"
			}
		}
		return m, m.refreshCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.NextTab):
		m.activeTab = (m.activeTab + 1) % tabCount
	case key.Matches(msg, keys.PrevTab):
		m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
	case key.Matches(msg, keys.Tab1):
		m.activeTab = TabOverview
	case key.Matches(msg, keys.Tab2):
		m.activeTab = TabHistory
	case key.Matches(msg, keys.Tab3):
		m.activeTab = TabProcesses

	case key.Matches(msg, keys.Refresh):
		return m, m.reloadConfigCmd()

	case key.Matches(msg, keys.Snapshot):
		return m, m.saveSnapshotCmd()

	case key.Matches(msg, keys.Scheduler):
		return m, m.toggleSchedulerCmd()

	case key.Matches(msg, keys.NextSeries):
		m.seriesIdx = (m.seriesIdx + 1) % len(config.SeriesNames())
		return m, m.refreshCmd()
	case key.Matches(msg, keys.PrevSeries):
		n := len(config.SeriesNames())
		m.seriesIdx = (m.seriesIdx - 1 + n) % n
		return m, m.refreshCmd()

	case key.Matches(msg, keys.Wider):
		if m.presetIdx < len(aggregate.Presets)-1 {
			m.presetIdx++
			return m, m.refreshCmd()
		}
	case key.Matches(msg, keys.Narrower):
		if m.presetIdx > 0 {
			m.presetIdx--
			return m, m.refreshCmd()
		}

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// View implements tea.Model. It renders the header, active tab content, and footer.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	content := m.renderTabContent()
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

// renderHeader renders the tab bar with the active tab highlighted.
func (m Model) renderHeader() string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		name := tabNames[i]
		if i == m.activeTab {
			tabs = append(tabs, styleActiveTab.Render(name))
		} else {
			tabs = append(tabs, styleInactiveTab.Render(name))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return styleHeader.Width(m.width).Render(tabBar)
}

// renderTabContent delegates to the appropriate tab renderer.
func (m Model) renderTabContent() string {
	// Reserve space for header and footer (approximate).
	contentHeight := m.height - 6
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch m.activeTab {
	case TabOverview:
		content = m.renderOverview()
	case TabHistory:
		content = m.renderHistory(m.width - 4)
	case TabProcesses:
		content = m.renderProcesses(contentHeight)
	default:
		content = ""
	}

	return styleContent.Width(m.width).Render(content)
}

// renderFooter renders the key help plus any transient notice and the
// last refresh timestamp.
func (m Model) renderFooter() string {
	line := m.help.View(keys)

	if m.notice != "" {
		line += "\n" + styleNotice.Render(m.notice)
	}
	if !m.lastUpdated.IsZero() {
		line += fmt.Sprintf("  Updated: %s", m.lastUpdated.Format("15:04:05"))
	}

	return styleFooter.Width(m.width).Render(line)
}
