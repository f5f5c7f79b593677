package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/emberline/vitals/aggregate"
	"gitlab.com/emberline/vitals/config"
	"gitlab.com/emberline/vitals/sampler"
	"gitlab.com/emberline/vitals/schedule"
	"gitlab.com/emberline/vitals/sysinfo"
)

// fetchTimeout bounds one refresh pass. Sampling itself blocks for the
// CPU delta window, so this has to stay comfortably above that.
const fetchTimeout = 5 * time.Second

// processRows is how many rows the process tab requests.
const processRows = 15

// refreshMsg carries everything one refresh pass read.
type refreshMsg struct {
	snap        *sampler.Snapshot
	host        sysinfo.Host
	net         sysinfo.NetTotals
	netOK       bool
	procs       []sysinfo.Process
	buckets     []aggregate.Bucket
	timerActive bool
}

// configReloadedMsg reports a manual configuration reload.
type configReloadedMsg struct {
	cfg *config.Config
	err error
}

// snapshotSavedMsg reports a snapshot export.
type snapshotSavedMsg struct {
	path string
	err  error
}

// schedulerToggledMsg reports a scheduler enable/disable round trip.
type schedulerToggledMsg struct {
	enabled bool
	err     error
}

// refreshCmd reads the live system and the history window for the
// selected series. It runs as a command so sampling I/O never blocks
// the event loop. There is no internal refresh timer; passes happen on
// startup and on explicit user actions only.
func (m Model) refreshCmd() tea.Cmd {
	deps := m.deps
	name := m.seriesName()
	preset := m.preset()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		msg := refreshMsg{
			snap:        deps.Sampler.Snapshot(ctx, deps.Config.Sample),
			timerActive: deps.Sched.TimerActive(ctx),
		}

		if h, err := deps.Sysinfo.HostInfo(ctx); err == nil {
			msg.host = h
		}
		if n, err := deps.Sysinfo.NetCounters(ctx); err == nil {
			msg.net = n
			msg.netOK = true
		}
		if procs, err := deps.Sysinfo.TopProcesses(ctx, processRows); err == nil {
			msg.procs = procs
		}

		samples, err := deps.Store.ReadAll(name)
		if err != nil {
			deps.Logger.Warn("tui: history read failed", "series", name, "error", err)
		}
		msg.buckets = aggregate.Windowed(samples, time.Now(), preset.Window, preset.Bucket)

		return msg
	}
}

// reloadConfigCmd re-reads the configuration from disk. Bound to the
// refresh key so edits made outside the dashboard take effect without
// a restart.
func (m Model) reloadConfigCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		cfg, err := config.Load(deps.ConfigPath, deps.Logger)
		return configReloadedMsg{cfg: cfg, err: err}
	}
}

// toggleSchedulerCmd flips the persisted scheduler flag, then converges
// the live timer state with it.
func (m Model) toggleSchedulerCmd() tea.Cmd {
	deps := m.deps
	enable := !deps.Config.SchedulerEnabled

	return func() tea.Msg {
		if err := config.SetSchedulerEnabled(deps.ConfigPath, enable, deps.Logger); err != nil {
			return schedulerToggledMsg{enabled: !enable, err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		schedCfg := schedule.Config{
			Interval:  deps.Config.Interval,
			Retention: deps.Config.Retention,
			Enabled:   enable,
		}
		if err := deps.Sched.ApplyEnabledState(ctx, schedCfg); err != nil {
			return schedulerToggledMsg{enabled: enable, err: err}
		}
		return schedulerToggledMsg{enabled: enable}
	}
}
