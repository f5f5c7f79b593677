// Package schedule converges OS-level periodic execution state with the
// configured sampling schedule. The desired state is a systemd
// service/timer unit pair generated deterministically from the
// configuration; reconciliation diffs the generated text against the
// on-disk units and reloads systemd only when something changed.
package schedule

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/emberline/vitals/internal/format"
)

const (
	// ServiceUnit is the oneshot unit running a single sampling pass.
	ServiceUnit = "vitals-sample.service"

	// TimerUnit is the periodic trigger for ServiceUnit.
	TimerUnit = "vitals-sample.timer"

	// DefaultUnitDir is where generated units are installed.
	DefaultUnitDir = "/etc/systemd/system"

	// bootDelay keeps the first pass off the boot critical path.
	bootDelay = 30 * time.Second
)

// Config is the desired periodic-sampling state, derived from the
// application configuration. It is owned by the reconciler and only
// ever mutated through explicit toggles, never by the sampler.
type Config struct {
	// Interval is the time between sampling passes.
	Interval time.Duration

	// Retention is the series retention window; it parameterizes the
	// housekeeping environment of the generated service unit.
	Retention time.Duration

	// Enabled is whether the periodic trigger should be active.
	Enabled bool
}

// CommandRunner executes external commands. The live implementation
// shells out to systemctl; tests substitute a recording fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("schedule: %s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (execRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

// Reconciler makes the on-disk and live systemd state match a Config.
type Reconciler struct {
	unitDir string
	binPath string
	runner  CommandRunner
	logger  *slog.Logger
}

// NewReconciler creates a Reconciler writing units under unitDir and
// generating ExecStart lines for the given binary path. A nil runner
// selects the real systemctl; a nil logger discards output.
func NewReconciler(unitDir, binPath string, runner CommandRunner, logger *slog.Logger) *Reconciler {
	if unitDir == "" {
		unitDir = DefaultUnitDir
	}
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{
		unitDir: unitDir,
		binPath: binPath,
		runner:  runner,
		logger:  logger,
	}
}

// UnitFile pairs a unit name with its generated definition.
type UnitFile struct {
	Name    string
	Content string
}

// UnitDefinitions generates the unit texts for a Config. The output is
// a pure function of the config, byte-for-byte identical for identical
// input, so the diff-based change detection in Reconcile is reliable.
func (r *Reconciler) UnitDefinitions(cfg Config) []UnitFile {
	service := fmt.Sprintf(`[Unit]
Description=vitals metrics sampling pass

[Service]
Type=oneshot
Environment=VITALS_LOG_RETENTION=%s
ExecStart=%s -log
`, format.FormatRetention(cfg.Retention), r.binPath)

	timer := fmt.Sprintf(`[Unit]
Description=periodic vitals metrics sampling

[Timer]
OnBootSec=%ds
OnUnitActiveSec=%ds
AccuracySec=1s

[Install]
WantedBy=timers.target
`, int(bootDelay.Seconds()), int(cfg.Interval.Seconds()))

	return []UnitFile{
		{Name: ServiceUnit, Content: service},
		{Name: TimerUnit, Content: timer},
	}
}

// Reconcile compares the desired unit definitions against the on-disk
// files, writes any that differ or are absent, and triggers a single
// daemon-reload only when at least one definition changed. Calling it
// again with an unchanged config performs no writes and no reload.
func (r *Reconciler) Reconcile(ctx context.Context, cfg Config) (bool, error) {
	if err := os.MkdirAll(r.unitDir, 0o755); err != nil {
		return false, fmt.Errorf("schedule: create unit directory %s: %w", r.unitDir, err)
	}

	changed := false
	for _, u := range r.UnitDefinitions(cfg) {
		path := filepath.Join(r.unitDir, u.Name)

		existing, err := os.ReadFile(path)
		if err == nil && string(existing) == u.Content {
			continue
		}
		if err != nil && !os.IsNotExist(err) {
			return changed, fmt.Errorf("schedule: read %s: %w", u.Name, err)
		}

		if err := os.WriteFile(path, []byte(u.Content), 0o644); err != nil {
			return changed, fmt.Errorf("schedule: write %s: %w", u.Name, err)
		}
		r.logger.Info("schedule unit updated", "unit", u.Name)
		changed = true
	}

	if changed {
		if err := r.runner.Run(ctx, "systemctl", "daemon-reload"); err != nil {
			return changed, err
		}
		r.logger.Info("schedule daemon-reload triggered")
	}

	return changed, nil
}

// ApplyEnabledState converges the live timer state with cfg.Enabled.
// It runs unconditionally on every call so externally introduced drift
// (someone manually stopping the timer) self-heals at the next startup.
func (r *Reconciler) ApplyEnabledState(ctx context.Context, cfg Config) error {
	if cfg.Enabled {
		if err := r.runner.Run(ctx, "systemctl", "enable", "--now", TimerUnit); err != nil {
			return err
		}
		r.logger.Debug("schedule timer enabled", "unit", TimerUnit)
		return nil
	}

	if err := r.runner.Run(ctx, "systemctl", "disable", "--now", TimerUnit); err != nil {
		return err
	}
	r.logger.Debug("schedule timer disabled", "unit", TimerUnit)
	return nil
}

// TimerActive re-derives the live timer state from the OS. The display
// shows this, never a cached value, so a half-applied toggle is visible
// on the next render.
func (r *Reconciler) TimerActive(ctx context.Context) bool {
	out, err := r.runner.Output(ctx, "systemctl", "is-active", TimerUnit)
	return err == nil && strings.TrimSpace(out) == "active"
}
