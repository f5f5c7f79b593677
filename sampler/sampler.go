// Package sampler derives normalized metric values from the current OS
// state. A sampling pass is a pure function of the system at call time:
// no persisted state, no side effects beyond reading OS interfaces.
//
// Every OS data source is an injected probe (a function field), so
// tests run against deterministic fixtures instead of the live system.
package sampler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	// thermalPath is the primary temperature sensor on the target boards.
	thermalPath = "/sys/class/thermal/thermal_zone0/temp"

	// wirelessPath lists per-interface wireless link quality.
	wirelessPath = "/proc/net/wireless"

	// cpuSampleInterval is the delta window for CPU utilization. Two
	// readings this far apart give the busy fraction over the interval
	// rather than the since-boot average.
	cpuSampleInterval = 250 * time.Millisecond
)

// Metric is one sampled value. OK is false when the underlying source
// was unavailable; the value is then meaningless and must not be stored.
type Metric struct {
	Value float64
	OK    bool
}

// LoadAvg holds the three standard load averages.
type LoadAvg struct {
	Load1  float64
	Load5  float64
	Load15 float64
	OK     bool
}

// String renders the conventional "1.23/0.98/0.75" form.
func (l LoadAvg) String() string {
	if !l.OK {
		return "n/a"
	}
	return fmt.Sprintf("%.2f/%.2f/%.2f", l.Load1, l.Load5, l.Load15)
}

// Wireless holds the primary wireless link's signal strength.
type Wireless struct {
	// DBm is the raw signal level in dBm.
	DBm float64

	// Percent is the clamped 0-100 scale derived from DBm.
	Percent float64

	OK bool
}

// Snapshot is the result of one sampling pass. Metrics that were
// disabled or unavailable carry OK == false.
type Snapshot struct {
	Time        time.Time
	CPU         Metric
	RAM         Metric
	Swap        Metric
	Disk        Metric
	Temperature Metric
	Load        LoadAvg
	WiFi        Wireless
}

// Value maps a series name to the value recorded for it. The second
// return is false when the metric is unavailable or the name unknown.
func (s *Snapshot) Value(name string) (float64, bool) {
	switch name {
	case "cpu":
		return s.CPU.Value, s.CPU.OK
	case "ram":
		return s.RAM.Value, s.RAM.OK
	case "swap":
		return s.Swap.Value, s.Swap.OK
	case "disk":
		return s.Disk.Value, s.Disk.OK
	case "temperature":
		return s.Temperature.Value, s.Temperature.OK
	case "load":
		return s.Load.Load1, s.Load.OK
	case "wifi_signal":
		return s.WiFi.Percent, s.WiFi.OK
	default:
		return 0, false
	}
}

// Sampler reads raw OS counters and derives normalized metric values.
type Sampler struct {
	logger *slog.Logger

	// Overridable OS probes for testing.
	cpuPercent    func(ctx context.Context, interval time.Duration) ([]float64, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	swapMemory    func(ctx context.Context) (*mem.SwapMemoryStat, error)
	diskUsage     func(ctx context.Context, path string) (*disk.UsageStat, error)
	loadAvg       func(ctx context.Context) (*load.AvgStat, error)
	readThermal   func() ([]byte, error)
	openWireless  func() (io.ReadCloser, error)
}

// New creates a Sampler wired to the live system.
// If logger is nil, a no-op logger is used.
func New(logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Sampler{
		logger: logger,
		cpuPercent: func(ctx context.Context, interval time.Duration) ([]float64, error) {
			return cpu.PercentWithContext(ctx, interval, false)
		},
		virtualMemory: mem.VirtualMemoryWithContext,
		swapMemory:    mem.SwapMemoryWithContext,
		diskUsage:     disk.UsageWithContext,
		loadAvg:       load.AvgWithContext,
		readThermal: func() ([]byte, error) {
			return os.ReadFile(thermalPath)
		},
		openWireless: func() (io.ReadCloser, error) {
			return os.Open(wirelessPath)
		},
	}
}

// Snapshot samples every metric enabled in the toggle map. Metrics are
// sampled independently: an unavailable source yields OK == false for
// that metric and never aborts the pass.
func (s *Sampler) Snapshot(ctx context.Context, enabled map[string]bool) *Snapshot {
	snap := &Snapshot{Time: time.Now()}

	if enabled["cpu"] {
		snap.CPU = s.sampleCPU(ctx)
	}
	if enabled["ram"] {
		snap.RAM = s.sampleRAM(ctx)
	}
	if enabled["swap"] {
		snap.Swap = s.sampleSwap(ctx)
	}
	if enabled["disk"] {
		snap.Disk = s.sampleDisk(ctx)
	}
	if enabled["temperature"] {
		snap.Temperature = s.sampleTemperature()
	}
	if enabled["load"] {
		snap.Load = s.sampleLoad(ctx)
	}
	if enabled["wifi_signal"] {
		snap.WiFi = s.sampleWireless()
	}

	return snap
}

// sampleCPU measures CPU utilization as a two-reading delta over a
// short interval. The old single-reading estimate reported the busy
// fraction accumulated since boot, which converges to a long-run
// average instead of reflecting recent load.
func (s *Sampler) sampleCPU(ctx context.Context) Metric {
	pcts, err := s.cpuPercent(ctx, cpuSampleInterval)
	if err != nil || len(pcts) == 0 {
		s.logger.Warn("sampler: cpu unavailable", "error", err)
		return Metric{}
	}
	return Metric{Value: clampPercent(pcts[0]), OK: true}
}

func (s *Sampler) sampleRAM(ctx context.Context) Metric {
	vm, err := s.virtualMemory(ctx)
	if err != nil || vm == nil || vm.Total == 0 {
		s.logger.Warn("sampler: ram unavailable", "error", err)
		return Metric{}
	}
	return Metric{Value: clampPercent(float64(vm.Used) / float64(vm.Total) * 100), OK: true}
}

func (s *Sampler) sampleSwap(ctx context.Context) Metric {
	sw, err := s.swapMemory(ctx)
	if err != nil || sw == nil {
		s.logger.Warn("sampler: swap unavailable", "error", err)
		return Metric{}
	}
	if sw.Total == 0 {
		// No swap configured: report 0% used rather than unavailable.
		return Metric{Value: 0, OK: true}
	}
	return Metric{Value: clampPercent(float64(sw.Used) / float64(sw.Total) * 100), OK: true}
}

func (s *Sampler) sampleDisk(ctx context.Context) Metric {
	usage, err := s.diskUsage(ctx, "/")
	if err != nil || usage == nil {
		s.logger.Warn("sampler: disk unavailable", "error", err)
		return Metric{}
	}
	return Metric{Value: clampPercent(usage.UsedPercent), OK: true}
}

// sampleTemperature reads the millidegree sensor value and truncates to
// whole degrees: 60999 reads as 60, not 61.
func (s *Sampler) sampleTemperature() Metric {
	raw, err := s.readThermal()
	if err != nil {
		s.logger.Warn("sampler: temperature sensor unavailable", "error", err)
		return Metric{}
	}

	milli, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		s.logger.Warn("sampler: temperature sensor unreadable", "error", err)
		return Metric{}
	}

	return Metric{Value: float64(milli / 1000), OK: true}
}

func (s *Sampler) sampleLoad(ctx context.Context) LoadAvg {
	avg, err := s.loadAvg(ctx)
	if err != nil || avg == nil {
		s.logger.Warn("sampler: load unavailable", "error", err)
		return LoadAvg{}
	}
	return LoadAvg{Load1: avg.Load1, Load5: avg.Load5, Load15: avg.Load15, OK: true}
}

func (s *Sampler) sampleWireless() Wireless {
	f, err := s.openWireless()
	if err != nil {
		s.logger.Warn("sampler: no wireless interface", "error", err)
		return Wireless{}
	}
	defer f.Close()

	dbm, err := parseWireless(f)
	if err != nil {
		s.logger.Warn("sampler: wireless link unreadable", "error", err)
		return Wireless{}
	}

	return Wireless{DBm: dbm, Percent: PercentFromDBm(dbm), OK: true}
}

// parseWireless extracts the signal level in dBm of the first interface
// listed in /proc/net/wireless. Format (after two header lines):
//
//	wlan0: 0000   54.  -56.  -256        0      0      0      0      0        0
//
// The fourth column is the signal level; values carry a trailing dot.
func parseWireless(r io.Reader) (float64, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, ":") {
			continue // header lines
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			return 0, fmt.Errorf("sampler: wireless line too short: %q", line)
		}

		level := strings.TrimSuffix(fields[3], ".")
		dbm, err := strconv.ParseFloat(level, 64)
		if err != nil {
			return 0, fmt.Errorf("sampler: parse signal level %q: %w", fields[3], err)
		}
		return dbm, nil
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("sampler: read wireless: %w", err)
	}
	return 0, fmt.Errorf("sampler: no wireless interface listed")
}

// PercentFromDBm maps a signal level in dBm onto a clamped 0-100 scale:
// -100 dBm is 0%, -50 dBm is 100%, saturating outside that band.
func PercentFromDBm(dbm float64) float64 {
	return clampPercent((dbm + 100) * 100 / 50)
}

// clampPercent bounds a value to the 0-100 range.
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
