// vitals is a single-host resource monitor for small Linux boards.
//
// It samples CPU, memory, swap, disk, temperature, load and WiFi signal,
// appends enabled series to per-series CSV logs, keeps a systemd timer
// converged with the configured sampling schedule, and renders live and
// historical readings in an interactive TUI.
//
// Usage:
//
//	vitals [flags]
//
// Flags:
//
//	-log              Run one sampling pass: append enabled series and prune
//	-reset            Delete all recorded series data and the config file
//	-config string    Path to configuration file (default: ~/.config/vitals/vitals.conf)
//	-unit-dir string  Directory for generated systemd units (default: /etc/systemd/system)
//	-verbose          Enable verbose logging
//	-version          Print version and exit
//
// Without flags, vitals reconciles the sampling schedule and launches
// the dashboard.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/emberline/vitals/config"
	"gitlab.com/emberline/vitals/display/tui"
	"gitlab.com/emberline/vitals/internal/format"
	"gitlab.com/emberline/vitals/sampler"
	"gitlab.com/emberline/vitals/schedule"
	"gitlab.com/emberline/vitals/series"
	"gitlab.com/emberline/vitals/sysinfo"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.config/vitals/vitals.conf)")
		runLog      = flag.Bool("log", false, "Run one sampling pass: append enabled series and prune")
		runReset    = flag.Bool("reset", false, "Delete all recorded series data and the config file")
		unitDir     = flag.String("unit-dir", "", "Directory for generated systemd units (default: /etc/systemd/system)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("vitals %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	store, err := series.NewStore(cfg.DataDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open data directory: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// ---------------------------------------------------------------
	// Sampling pass (invoked by the systemd timer)
	// ---------------------------------------------------------------

	if *runLog {
		// The generated service unit pins the retention it was written
		// for; an env override here keeps an already-installed timer
		// honoring its unit even while the config file is being edited.
		if env := os.Getenv("VITALS_LOG_RETENTION"); env != "" {
			if d, err := format.ParseRetention(env); err == nil {
				cfg.Retention = d
			} else {
				logger.Warn("ignoring invalid VITALS_LOG_RETENTION", "value", env, "error", err)
			}
		}

		s := sampler.New(logger)
		snap := s.Snapshot(ctx, cfg.Sample)
		if err := runSamplePass(cfg, store, snap, logger); err != nil {
			fmt.Fprintf(os.Stderr, "sampling pass failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Reset
	// ---------------------------------------------------------------

	if *runReset {
		if !confirmReset(os.Stdin, store.Dir(), path) {
			fmt.Println("Aborted.")
			os.Exit(0)
		}
		if err := store.Reset(); err != nil {
			fmt.Fprintf(os.Stderr, "reset failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "reset failed: %v\n", err)
			os.Exit(1)
		}
		// Re-seed the config so the next launch starts from defaults.
		if _, err := config.Load(path, logger); err != nil {
			fmt.Fprintf(os.Stderr, "failed to recreate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All series data and configuration reset.")
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Default: reconcile schedule, then launch the dashboard
	// ---------------------------------------------------------------

	binPath, err := os.Executable()
	if err != nil {
		binPath = os.Args[0]
	}
	sched := schedule.NewReconciler(*unitDir, binPath, nil, logger)
	schedCfg := schedule.Config{
		Interval:  cfg.Interval,
		Retention: cfg.Retention,
		Enabled:   cfg.SchedulerEnabled,
	}

	// Schedule convergence needs root for /etc/systemd/system; the
	// dashboard itself does not. Degrade to read-only on failure.
	if _, err := sched.Reconcile(ctx, schedCfg); err != nil {
		logger.Warn("schedule reconciliation skipped", "error", err)
	} else if err := sched.ApplyEnabledState(ctx, schedCfg); err != nil {
		logger.Warn("schedule state not applied", "error", err)
	}

	defer func() {
		if r := recover(); r != nil {
			// Attempt to restore terminal from alt-screen before printing error.
			fmt.Print("\x1b[?1049l\x1b[?25h")
			fmt.Fprintf(os.Stderr, "vitals: TUI panic: %v\n", r)
			os.Exit(1)
		}
	}()

	model := tui.NewModel(tui.Deps{
		ConfigPath: path,
		Config:     cfg,
		Store:      store,
		Sampler:    sampler.New(logger),
		Sysinfo:    sysinfo.NewProvider(),
		Sched:      sched,
		Logger:     logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}

// runSamplePass appends every series that is both sampled and logged,
// then prunes when retention enforcement is on. Append failures are
// collected rather than aborting: one full disk must not stop the
// remaining series from being recorded.
func runSamplePass(cfg *config.Config, store *series.Store, snap *sampler.Snapshot, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ts := snap.Time.Unix()
	var failed []string

	for _, name := range config.SeriesNames() {
		if !cfg.Sample[name] || !cfg.Log[name] {
			continue
		}

		value, ok := snap.Value(name)
		if !ok {
			logger.Debug("series skipped, metric unavailable", "series", name)
			continue
		}

		if err := store.Append(name, ts, value); err != nil {
			logger.Warn("series append failed", "series", name, "error", err)
			failed = append(failed, name)
			continue
		}

		if cfg.Prune {
			if err := store.Prune(name, cfg.Retention, time.Now()); err != nil {
				logger.Warn("series prune failed", "series", name, "error", err)
			}
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("append failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

// confirmReset asks for interactive confirmation before wiping state.
func confirmReset(in io.Reader, dataDir, configPath string) bool {
	fmt.Printf("This deletes all recorded series in %s and removes %s.\n", dataDir, configPath)
	fmt.Print("Proceed? [y/N] ")

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
