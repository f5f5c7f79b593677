// Package series provides the on-disk time-series store for vitals.
//
// Each series is a single CSV file in a flat directory:
//
//	~/.local/share/vitals/
//	  cpu.csv
//	  ram.csv
//	  temperature.csv
//	  ...
//
// Files carry a self-describing header row followed by one
// "epoch-seconds,value" row per sample. Appends are single writes so a
// concurrent reader never observes a torn row; rewrites (pruning) go
// through a temp file and an atomic rename.
package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// header is the first row of every series file. New columns may be added
// after "value" in the future; readers ignore columns they do not know.
const header = "timestamp,value"

// Sample is one recorded measurement in a series.
type Sample struct {
	// Time is the sample timestamp in seconds since the Unix epoch.
	Time int64

	// Value is the recorded metric value.
	Value float64
}

// Store reads and writes series CSV files in a single directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a series store at the given directory, creating the
// directory if it does not exist. If logger is nil, a no-op logger is used.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("series: create directory %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// path returns the filesystem path for a series name.
func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".csv")
}

// Append writes one sample row to the named series, creating the file
// with its header row first if needed. The row is written with a single
// write call so concurrent readers cannot observe a partial row.
func (s *Store) Append(name string, ts int64, value float64) error {
	f, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("series: open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("series: stat %s: %w", name, err)
	}

	var b strings.Builder
	if info.Size() == 0 {
		b.WriteString(header)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d,%.1f\n", ts, value)

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("series: append %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("series: close %s: %w", name, err)
	}
	return nil
}

// ReadAll returns the named series' samples in file order. The file is
// re-read on every call. Rows that fail to parse (for example a trailing
// row truncated by an interrupted write) are skipped. A missing series
// yields no samples and no error.
func (s *Store) ReadAll(name string) ([]Sample, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("series: open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var samples []Sample
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed CSV row; skip and keep reading.
			continue
		}
		if first {
			first = false
			if len(record) > 0 && record[0] == "timestamp" {
				continue
			}
		}
		sample, ok := parseRecord(record)
		if !ok {
			continue
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// parseRecord converts one CSV record into a Sample. Extra columns
// beyond "timestamp,value" are ignored.
func parseRecord(record []string) (Sample, bool) {
	if len(record) < 2 {
		return Sample{}, false
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return Sample{}, false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return Sample{}, false
	}
	return Sample{Time: ts, Value: value}, true
}

// Prune removes rows older than the retention window from the named
// series: every kept row satisfies ts >= now - retention. The rewrite
// keeps data lines verbatim (preserving any extra columns) and goes
// through a temp file plus rename so readers never see a half-written
// file. Unparseable data lines are dropped during the rewrite. Pruning
// a missing series is a no-op.
func (s *Store) Prune(name string, retention time.Duration, now time.Time) error {
	path := s.path(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("series: read %s: %w", name, err)
	}

	cutoff := now.Add(-retention).Unix()

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	kept, dropped := 0, 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		first, _, _ := strings.Cut(line, ",")
		ts, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
		if err != nil {
			// Header row or torn row; the header is re-emitted above.
			continue
		}
		if ts < cutoff {
			dropped++
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
		kept++
	}

	if err := s.atomicWrite(path, []byte(b.String())); err != nil {
		return fmt.Errorf("series: prune %s: %w", name, err)
	}

	if dropped > 0 {
		s.logger.Debug("series pruned",
			"series", name,
			"kept", kept,
			"dropped", dropped,
			"cutoff", cutoff,
		)
	}
	return nil
}

// atomicWrite replaces path's content via a temp file in the store
// directory followed by a rename.
func (s *Store) atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
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
		return fmt.Errorf("chmod temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp: %w", err)
	}

	success = true
	return nil
}

// Names returns all series present in the store directory,
// without the .csv extension.
func (s *Store) Names() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		if strings.HasSuffix(name, ".csv") {
			names = append(names, strings.TrimSuffix(name, ".csv"))
		}
	}
	return names
}

// Reset removes every series file from the store directory.
// Used by the CLI reset path.
func (s *Store) Reset() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("series: reset read dir: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(name, ".csv") && !strings.HasPrefix(name, ".tmp-") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("series: reset remove %s: %w", name, err)
		}
	}
	return nil
}
