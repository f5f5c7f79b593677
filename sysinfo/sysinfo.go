// Package sysinfo reads auxiliary host state for the dashboard overview:
// identity, uptime, network counters and the process table. Unlike the
// sampled metric series, nothing here is persisted; values are shown
// live and dropped.
package sysinfo

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v3/host"
	gnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// Host identifies the machine being monitored.
type Host struct {
	Hostname string
	Platform string
	Kernel   string
	Uptime   uint64 // seconds
}

// NetTotals are cumulative traffic counters summed over all interfaces.
type NetTotals struct {
	BytesRecv uint64
	BytesSent uint64
}

// Process is one row of the process table.
type Process struct {
	PID        int32
	Name       string
	CPUPercent float64
	MemPercent float32
	RSS        uint64 // resident bytes
}

// Provider reads host state through overridable probes so tests can
// substitute fixtures for the live system.
type Provider struct {
	hostInfo    func(ctx context.Context) (*host.InfoStat, error)
	ioCounters  func(ctx context.Context, pernic bool) ([]gnet.IOCountersStat, error)
	listProcs   func(ctx context.Context) ([]*process.Process, error)
	procDetails func(ctx context.Context, p *process.Process) (Process, error)
}

// NewProvider creates a Provider wired to the live system.
func NewProvider() *Provider {
	return &Provider{
		hostInfo:   host.InfoWithContext,
		ioCounters: gnet.IOCountersWithContext,
		listProcs:  process.ProcessesWithContext,
		procDetails: func(ctx context.Context, p *process.Process) (Process, error) {
			name, err := p.NameWithContext(ctx)
			if err != nil {
				return Process{}, err
			}
			cpuPct, _ := p.CPUPercentWithContext(ctx)
			memPct, _ := p.MemoryPercentWithContext(ctx)

			var rss uint64
			if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
				rss = mi.RSS
			}

			return Process{
				PID:        p.Pid,
				Name:       name,
				CPUPercent: cpuPct,
				MemPercent: memPct,
				RSS:        rss,
			}, nil
		},
	}
}

// HostInfo returns the machine identity and uptime.
func (p *Provider) HostInfo(ctx context.Context) (Host, error) {
	info, err := p.hostInfo(ctx)
	if err != nil {
		return Host{}, fmt.Errorf("sysinfo: host info: %w", err)
	}
	return Host{
		Hostname: info.Hostname,
		Platform: info.Platform,
		Kernel:   info.KernelVersion,
		Uptime:   info.Uptime,
	}, nil
}

// NetCounters returns cumulative traffic summed over all interfaces.
func (p *Provider) NetCounters(ctx context.Context) (NetTotals, error) {
	counters, err := p.ioCounters(ctx, false)
	if err != nil {
		return NetTotals{}, fmt.Errorf("sysinfo: net counters: %w", err)
	}

	var totals NetTotals
	for _, c := range counters {
		totals.BytesRecv += c.BytesRecv
		totals.BytesSent += c.BytesSent
	}
	return totals, nil
}

// TopProcesses lists the limit heaviest processes by CPU share.
// Processes that vanish mid-listing are skipped, not an error.
func (p *Provider) TopProcesses(ctx context.Context, limit int) ([]Process, error) {
	if limit <= 0 {
		return nil, nil
	}

	procs, err := p.listProcs(ctx)
	if err != nil {
		return nil, fmt.Errorf("sysinfo: list processes: %w", err)
	}

	rows := make([]Process, 0, len(procs))
	for _, proc := range procs {
		row, err := p.procDetails(ctx, proc)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CPUPercent != rows[j].CPUPercent {
			return rows[i].CPUPercent > rows[j].CPUPercent
		}
		return rows[i].MemPercent > rows[j].MemPercent
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
