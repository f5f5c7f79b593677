// Package config provides typed configuration parsing for vitals.
//
// The on-disk format is a plain key=value file, one setting per line,
// with '#' comments. Unknown keys are tolerated and never removed;
// missing keys are backfilled with their defaults on load so old
// config files keep working as new settings are added.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gitlab.com/emberline/vitals/internal/format"
)

// seriesNames is the fixed set of metric/series identifiers. Each gets a
// sampling toggle (sample_<name>) and a logging toggle (log_<name>).
var seriesNames = []string{
	"cpu",
	"ram",
	"swap",
	"disk",
	"temperature",
	"load",
	"wifi_signal",
}

// SeriesNames returns the fixed set of series identifiers in canonical order.
func SeriesNames() []string {
	out := make([]string, len(seriesNames))
	copy(out, seriesNames)
	return out
}

// Config is the parsed, validated configuration. It is an explicit value
// passed into each component; nothing reads ambient global state.
type Config struct {
	// Sample controls which metrics the sampler probes, keyed by series name.
	Sample map[string]bool

	// Log controls which series the scheduled pass appends to.
	Log map[string]bool

	// Retention is the maximum sample age kept in a series before pruning.
	Retention time.Duration

	// Prune enables pruning at the end of each scheduled sampling pass.
	Prune bool

	// Interval is the periodic sampling interval driven by the OS scheduler.
	Interval time.Duration

	// SchedulerEnabled is the desired state of the periodic sampling timer.
	SchedulerEnabled bool

	// DataDir is the directory holding the series CSV files.
	DataDir string
}

// Default returns a Config populated with documented defaults.
func Default() *Config {
	home, _ := os.UserHomeDir()

	sample := make(map[string]bool, len(seriesNames))
	logTog := make(map[string]bool, len(seriesNames))
	for _, name := range seriesNames {
		sample[name] = true
		logTog[name] = true
	}

	return &Config{
		Sample:           sample,
		Log:              logTog,
		Retention:        7 * 24 * time.Hour,
		Prune:            true,
		Interval:         5 * time.Second,
		SchedulerEnabled: false,
		DataDir:          filepath.Join(home, ".local", "share", "vitals"),
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "vitals", "vitals.conf")
}

// entry is one key=value pair in canonical file order.
type entry struct {
	key   string
	value string
}

// entries renders a Config as ordered key=value pairs.
func entries(c *Config) []entry {
	var e []entry
	for _, name := range seriesNames {
		e = append(e, entry{"sample_" + name, strconv.FormatBool(c.Sample[name])})
	}
	for _, name := range seriesNames {
		e = append(e, entry{"log_" + name, strconv.FormatBool(c.Log[name])})
	}
	e = append(e,
		entry{"log_retention", format.FormatRetention(c.Retention)},
		entry{"log_prune", strconv.FormatBool(c.Prune)},
		entry{"sample_interval", c.Interval.String()},
		entry{"scheduler_enabled", strconv.FormatBool(c.SchedulerEnabled)},
		entry{"data_dir", c.DataDir},
	)
	return e
}

// isSeries reports whether name is one of the fixed series identifiers.
func isSeries(name string) bool {
	for _, s := range seriesNames {
		if s == name {
			return true
		}
	}
	return false
}

// apply sets the field for a known key from its string value.
// A malformed value returns an error and leaves the field untouched,
// so the caller falls back to the default.
func (c *Config) apply(key, value string) error {
	if name, ok := strings.CutPrefix(key, "sample_"); ok && isSeries(name) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.Sample[name] = b
		return nil
	}
	if name, ok := strings.CutPrefix(key, "log_"); ok && isSeries(name) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.Log[name] = b
		return nil
	}

	switch key {
	case "log_retention":
		d, err := format.ParseRetention(value)
		if err != nil {
			return err
		}
		c.Retention = d
	case "log_prune":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.Prune = b
	case "sample_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", key, value)
		}
		c.Interval = d
	case "scheduler_enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		c.SchedulerEnabled = b
	case "data_dir":
		if value == "" {
			return fmt.Errorf("config: data_dir must not be empty")
		}
		c.DataDir = value
	default:
		return fmt.Errorf("config: unknown key %q", key)
	}
	return nil
}

// knownKeys returns the set of keys the parser understands.
func knownKeys() map[string]bool {
	known := make(map[string]bool)
	for _, e := range entries(Default()) {
		known[e.key] = true
	}
	return known
}

// Load reads the configuration file at path, merging with defaults.
//
// A missing file is created with full defaults. Malformed values are
// logged and replaced with their defaults; loading never fails for
// content reasons. Known keys absent from the file are appended to it
// with their default values, exactly once (subsequent loads see them
// present and append nothing).
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Save(cfg, path); err != nil {
			return nil, fmt.Errorf("config: initialize %s: %w", path, err)
		}
		logger.Info("config created with defaults", "path", path)
		return cfg, nil
	}

	known := knownKeys()
	seen := make(map[string]bool)

	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		key, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			logger.Warn("config: skipping malformed line", "path", path, "line", i+1)
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if !known[key] {
			// Unknown keys are preserved on disk but ignored here.
			continue
		}
		seen[key] = true

		if err := cfg.apply(key, value); err != nil {
			logger.Warn("config: invalid value, using default",
				"key", key,
				"value", value,
				"error", err,
			)
		}
	}

	// Backfill: append any known key the file does not carry yet.
	var missing []entry
	for _, e := range entries(cfg) {
		if !seen[e.key] {
			missing = append(missing, e)
		}
	}
	if len(missing) > 0 {
		if err := appendEntries(path, data, missing); err != nil {
			return nil, fmt.Errorf("config: backfill %s: %w", path, err)
		}
		logger.Info("config backfilled missing keys", "path", path, "count", len(missing))
	}

	return cfg, nil
}

// appendEntries appends key=value lines to the config file, inserting a
// newline first if the existing content does not end with one.
func appendEntries(path string, existing []byte, missing []entry) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	var b strings.Builder
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		b.WriteByte('\n')
	}
	for _, e := range missing {
		fmt.Fprintf(&b, "%s=%s\n", e.key, e.value)
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return err
	}
	return f.Close()
}

// Save writes the configuration in canonical form with an atomic
// temp-file + rename, creating the parent directory if needed.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: create directory %s: %w", dir, err)
	}

	var b strings.Builder
	b.WriteString("# vitals configuration\n")
	for _, e := range entries(cfg) {
		fmt.Fprintf(&b, "%s=%s\n", e.key, e.value)
	}

	return atomicWrite(path, []byte(b.String()))
}

// SetSchedulerEnabled updates the scheduler_enabled key in place,
// preserving comments, ordering, and unknown keys. The file is created
// with defaults first if it does not exist.
func SetSchedulerEnabled(path string, enabled bool, logger *slog.Logger) error {
	if _, err := Load(path, logger); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	replaced := false
	for i, line := range lines {
		key, _, ok := strings.Cut(strings.TrimSpace(line), "=")
		if ok && strings.TrimSpace(key) == "scheduler_enabled" {
			lines[i] = "scheduler_enabled=" + strconv.FormatBool(enabled)
			replaced = true
			break
		}
	}
	if !replaced {
		// Load backfills the key, so this path should not occur.
		lines = append(lines, "scheduler_enabled="+strconv.FormatBool(enabled))
	}

	return atomicWrite(path, []byte(strings.Join(lines, "\n")))
}

// atomicWrite replaces path's content via a temp file in the same
// directory followed by a rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("config: create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("config: chmod temp for %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("config: write temp for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("config: rename temp for %s: %w", path, err)
	}

	success = true
	return nil
}
