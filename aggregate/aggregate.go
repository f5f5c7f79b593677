// Package aggregate reduces raw series samples into fixed-count,
// time-bucketed summaries for the history view.
//
// The aggregation policy is max-hold: each bucket reports the maximum
// value observed inside its time slice, so short spikes stay visible
// when a long window is compressed into a small number of buckets.
package aggregate

import (
	"time"

	"gitlab.com/emberline/vitals/series"
)

// Bucket is one fixed-width time slice of a query window.
// Buckets are derived on read and never persisted.
type Bucket struct {
	// Start is the absolute start time of this bucket's slice.
	Start time.Time

	// Max is the maximum sample value observed in the slice.
	// Zero when the slice holds no samples.
	Max float64

	// Samples counts how many samples landed in the slice. It
	// distinguishes "no data" from a measured value of exactly zero.
	Samples int
}

// HasData reports whether any sample landed in this bucket.
func (b Bucket) HasData() bool {
	return b.Samples > 0
}

// Preset is one entry of the fixed window/bucket menu.
type Preset struct {
	// Name is the menu label, e.g. "10 min".
	Name string

	// Window is the total query window.
	Window time.Duration

	// Bucket is the slice width; Window/Bucket gives the bucket count.
	Bucket time.Duration
}

// Presets is the fixed menu of query windows offered by the display.
var Presets = []Preset{
	{Name: "1 min", Window: time.Minute, Bucket: time.Second},
	{Name: "10 min", Window: 10 * time.Minute, Bucket: 10 * time.Second},
	{Name: "1 hour", Window: time.Hour, Bucket: time.Minute},
	{Name: "6 hours", Window: 6 * time.Hour, Bucket: 10 * time.Minute},
	{Name: "12 hours", Window: 12 * time.Hour, Bucket: 20 * time.Minute},
	{Name: "24 hours", Window: 24 * time.Hour, Bucket: time.Hour},
}

// TimeLayout returns the timestamp layout used to label buckets for a
// given window: day-scale windows include the date, shorter ones the
// time of day only.
func TimeLayout(window time.Duration) string {
	if window >= 24*time.Hour {
		return "01-02 15:04"
	}
	return "15:04:05"
}

// Windowed reduces samples into window/bucket + 1 max-hold buckets
// covering [now-window, now]. Samples outside the window are ignored;
// duplicate or out-of-order timestamps fold into their bucket like any
// other sample. A window with no samples yields buckets with Samples
// of zero throughout.
func Windowed(samples []series.Sample, now time.Time, window, bucket time.Duration) []Bucket {
	if window <= 0 || bucket <= 0 {
		return nil
	}

	start := now.Add(-window)
	count := int(window/bucket) + 1

	buckets := make([]Bucket, count)
	for i := range buckets {
		buckets[i].Start = start.Add(time.Duration(i) * bucket)
	}

	startUnix := start.Unix()
	bucketSec := int64(bucket / time.Second)
	if bucketSec <= 0 {
		return nil
	}

	for _, s := range samples {
		if s.Time < startUnix {
			continue
		}
		idx := (s.Time - startUnix) / bucketSec
		if idx < 0 || idx >= int64(count) {
			continue
		}
		b := &buckets[idx]
		if s.Value > b.Max {
			b.Max = s.Value
		}
		b.Samples++
	}

	return buckets
}

// MaxValue returns the largest bucket maximum, used to scale bar charts.
// Returns 0 when no bucket has data.
func MaxValue(buckets []Bucket) float64 {
	var max float64
	for _, b := range buckets {
		if b.HasData() && b.Max > max {
			max = b.Max
		}
	}
	return max
}
