package series

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestAppendReadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append("cpu", 100, 5.0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("cpu", 200, 7.5); err != nil {
		t.Fatalf("Append: %v", err)
	}

	samples, err := s.ReadAll("cpu")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	want := []Sample{{Time: 100, Value: 5.0}, {Time: 200, Value: 7.5}}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d: %+v", len(samples), len(want), samples)
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("sample[%d] = %+v, want %+v", i, samples[i], want[i])
		}
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append("ram", 10, 50.0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append("ram", 20, 51.0); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), "ram.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "timestamp,value\n") {
		t.Errorf("missing header row:\n%s", content)
	}
	if got := strings.Count(content, "timestamp,value"); got != 1 {
		t.Errorf("header appears %d times, want 1:\n%s", got, content)
	}
}

func TestReadAllMissingSeries(t *testing.T) {
	s := newTestStore(t)

	samples, err := s.ReadAll("nonexistent")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if samples != nil {
		t.Errorf("expected nil samples for missing series, got %+v", samples)
	}
}

func TestReadAllSkipsTornRow(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append("disk", 100, 42.0); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// Simulate a write interrupted mid-row.
	f, err := os.OpenFile(filepath.Join(s.Dir(), "disk.csv"), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString("20"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()

	samples, err := s.ReadAll("disk")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1 (torn row skipped): %+v", len(samples), samples)
	}
	if samples[0] != (Sample{Time: 100, Value: 42.0}) {
		t.Errorf("sample = %+v", samples[0])
	}
}

func TestReadAllIgnoresExtraColumns(t *testing.T) {
	s := newTestStore(t)

	content := "timestamp,value,flags\n100,1.5,x\n200,2.5,y\n"
	if err := os.WriteFile(filepath.Join(s.Dir(), "temperature.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	samples, err := s.ReadAll("temperature")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[1].Value != 2.5 {
		t.Errorf("value = %v, want 2.5", samples[1].Value)
	}
}

func TestPruneMonotonicity(t *testing.T) {
	s := newTestStore(t)

	now := time.Unix(10_000, 0)
	retention := 1 * time.Hour // cutoff at 6400

	// Samples straddling the cutoff.
	times := []int64{1000, 6399, 6400, 6401, 9999}
	for _, ts := range times {
		if err := s.Append("cpu", ts, float64(ts)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	if err := s.Prune("cpu", retention, now); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	samples, err := s.ReadAll("cpu")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	cutoff := now.Add(-retention).Unix()
	for _, sm := range samples {
		if sm.Time < cutoff {
			t.Errorf("sample at %d survived prune (cutoff %d)", sm.Time, cutoff)
		}
	}

	// Everything at or inside the window must survive.
	want := []int64{6400, 6401, 9999}
	if len(samples) != len(want) {
		t.Fatalf("got %d samples, want %d: %+v", len(samples), len(want), samples)
	}
	for i, ts := range want {
		if samples[i].Time != ts {
			t.Errorf("samples[%d].Time = %d, want %d", i, samples[i].Time, ts)
		}
	}
}

func TestPruneMissingSeriesIsNoOp(t *testing.T) {
	s := newTestStore(t)
	if err := s.Prune("ghost", time.Hour, time.Now()); err != nil {
		t.Fatalf("Prune on missing series: %v", err)
	}
}

func TestPrunePreservesExtraColumns(t *testing.T) {
	s := newTestStore(t)

	content := "timestamp,value,flags\n100,1.5,x\n9000,2.5,y\n"
	path := filepath.Join(s.Dir(), "load.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := s.Prune("load", time.Hour, time.Unix(10_000, 0)); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "9000,2.5,y") {
		t.Errorf("extra column lost on rewrite:\n%s", data)
	}
	if strings.Contains(string(data), "100,1.5") {
		t.Errorf("expired row survived:\n%s", data)
	}
}

func TestConcurrentAppendAndRead(t *testing.T) {
	s := newTestStore(t)

	const writes = 200

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			if err := s.Append("wifi_signal", int64(i), float64(i)); err != nil {
				t.Errorf("Append %d: %v", i, err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			samples, err := s.ReadAll("wifi_signal")
			if err != nil {
				t.Errorf("ReadAll: %v", err)
				return
			}
			// Readers may see any prefix, but never a torn or reordered row.
			for j, sm := range samples {
				if sm.Time != int64(j) {
					t.Errorf("sample %d has timestamp %d", j, sm.Time)
					return
				}
			}
		}
	}()

	wg.Wait()

	samples, err := s.ReadAll("wifi_signal")
	if err != nil {
		t.Fatalf("final ReadAll: %v", err)
	}
	if len(samples) != writes {
		t.Errorf("got %d samples, want %d", len(samples), writes)
	}
}

func TestNamesAndReset(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"cpu", "ram", "temperature"} {
		if err := s.Append(name, 1, 1.0); err != nil {
			t.Fatalf("Append %s: %v", name, err)
		}
	}

	names := s.Names()
	if len(names) != 3 {
		t.Fatalf("got %d names, want 3: %v", len(names), names)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if names := s.Names(); len(names) != 0 {
		t.Errorf("expected no series after reset, got %v", names)
	}
}

func TestAppendValueFormatting(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append("swap", 123, 33.333); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), "swap.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := fmt.Sprintf("%d,%.1f\n", 123, 33.333)
	if !strings.HasSuffix(string(data), want) {
		t.Errorf("row = %q, want suffix %q", data, want)
	}
}
