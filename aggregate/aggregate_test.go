package aggregate

import (
	"testing"
	"time"

	"gitlab.com/emberline/vitals/series"
)

func TestWindowedBucketCount(t *testing.T) {
	// 600s window with 10s buckets yields exactly 600/10 + 1 = 61 buckets.
	now := time.Unix(100_000, 0)

	buckets := Windowed(nil, now, 600*time.Second, 10*time.Second)
	if len(buckets) != 61 {
		t.Fatalf("got %d buckets, want 61", len(buckets))
	}

	// Labels are 10 seconds apart, starting at now - window.
	for i := 1; i < len(buckets); i++ {
		gap := buckets[i].Start.Sub(buckets[i-1].Start)
		if gap != 10*time.Second {
			t.Errorf("bucket %d starts %v after its neighbor, want 10s", i, gap)
		}
	}
	if !buckets[0].Start.Equal(now.Add(-600 * time.Second)) {
		t.Errorf("first bucket starts at %v, want %v", buckets[0].Start, now.Add(-600*time.Second))
	}
}

func TestWindowedMaxHold(t *testing.T) {
	now := time.Unix(100_000, 0)
	t0 := now.Add(-10 * time.Second).Unix()

	samples := []series.Sample{
		{Time: t0, Value: 10},
		{Time: t0 + 2, Value: 55},
		{Time: t0 + 4, Value: 30},
	}

	buckets := Windowed(samples, now, 10*time.Second, 10*time.Second)
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	if buckets[0].Max != 55 {
		t.Errorf("bucket max = %v, want 55 (max-hold)", buckets[0].Max)
	}
	if buckets[0].Samples != 3 {
		t.Errorf("bucket samples = %d, want 3", buckets[0].Samples)
	}
}

func TestWindowedEmptyInput(t *testing.T) {
	now := time.Unix(100_000, 0)

	buckets := Windowed(nil, now, time.Minute, time.Second)
	for i, b := range buckets {
		if b.Max != 0 {
			t.Errorf("bucket %d max = %v, want 0", i, b.Max)
		}
		if b.HasData() {
			t.Errorf("bucket %d reports data in an empty window", i)
		}
	}
}

func TestWindowedDistinguishesZeroFromNoData(t *testing.T) {
	now := time.Unix(100_000, 0)
	inWindow := now.Add(-30 * time.Second).Unix()

	samples := []series.Sample{{Time: inWindow, Value: 0}}

	buckets := Windowed(samples, now, time.Minute, 10*time.Second)

	var withData int
	for _, b := range buckets {
		if b.HasData() {
			withData++
			if b.Max != 0 {
				t.Errorf("max = %v, want 0 for a genuine zero sample", b.Max)
			}
		}
	}
	if withData != 1 {
		t.Errorf("%d buckets report data, want 1", withData)
	}
}

func TestWindowedIgnoresSamplesOutsideWindow(t *testing.T) {
	now := time.Unix(100_000, 0)

	samples := []series.Sample{
		{Time: now.Add(-2 * time.Minute).Unix(), Value: 99}, // before window
		{Time: now.Add(time.Minute).Unix(), Value: 88},      // in the future
		{Time: now.Add(-30 * time.Second).Unix(), Value: 40},
	}

	buckets := Windowed(samples, now, time.Minute, 10*time.Second)
	if got := MaxValue(buckets); got != 40 {
		t.Errorf("MaxValue = %v, want 40 (out-of-window samples ignored)", got)
	}
}

func TestWindowedDuplicateTimestamps(t *testing.T) {
	// Ties are independent samples in the same bucket.
	now := time.Unix(100_000, 0)
	ts := now.Add(-15 * time.Second).Unix()

	samples := []series.Sample{
		{Time: ts, Value: 20},
		{Time: ts, Value: 60},
		{Time: ts, Value: 40},
	}

	buckets := Windowed(samples, now, time.Minute, 10*time.Second)

	var target *Bucket
	for i := range buckets {
		if buckets[i].HasData() {
			target = &buckets[i]
		}
	}
	if target == nil {
		t.Fatal("no bucket received the samples")
	}
	if target.Max != 60 {
		t.Errorf("max = %v, want 60", target.Max)
	}
	if target.Samples != 3 {
		t.Errorf("samples = %d, want 3", target.Samples)
	}
}

func TestWindowedInvalidArguments(t *testing.T) {
	now := time.Unix(100_000, 0)
	if got := Windowed(nil, now, 0, time.Second); got != nil {
		t.Errorf("zero window should yield nil, got %d buckets", len(got))
	}
	if got := Windowed(nil, now, time.Minute, 0); got != nil {
		t.Errorf("zero bucket should yield nil, got %d buckets", len(got))
	}
}

func TestPresetsMatchMenu(t *testing.T) {
	want := []struct {
		window time.Duration
		bucket time.Duration
	}{
		{time.Minute, time.Second},
		{10 * time.Minute, 10 * time.Second},
		{time.Hour, time.Minute},
		{6 * time.Hour, 10 * time.Minute},
		{12 * time.Hour, 20 * time.Minute},
		{24 * time.Hour, time.Hour},
	}

	if len(Presets) != len(want) {
		t.Fatalf("got %d presets, want %d", len(Presets), len(want))
	}
	for i, w := range want {
		if Presets[i].Window != w.window || Presets[i].Bucket != w.bucket {
			t.Errorf("preset %d = %v/%v, want %v/%v",
				i, Presets[i].Window, Presets[i].Bucket, w.window, w.bucket)
		}
	}
}

func TestTimeLayout(t *testing.T) {
	if got := TimeLayout(10 * time.Minute); got != "15:04:05" {
		t.Errorf("short window layout = %q", got)
	}
	if got := TimeLayout(24 * time.Hour); got != "01-02 15:04" {
		t.Errorf("day window layout = %q", got)
	}
}
