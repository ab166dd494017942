package retention

import (
	"testing"
	"time"

	"github.com/pulsedb/pulse/internal/storage/index"
	"github.com/pulsedb/pulse/internal/storage/types"
)

func TestCutoff(t *testing.T) {
	r := New(24*time.Hour, time.Minute)
	now := time.UnixMilli(100_000_000_000)

	want := now.UnixMilli() - 24*time.Hour.Milliseconds()
	if got := r.Cutoff(now); got != want {
		t.Errorf("Cutoff = %d, want %d", got, want)
	}
}

func TestSweepAt(t *testing.T) {
	r := New(time.Hour, time.Minute)
	now := time.UnixMilli(10 * time.Hour.Milliseconds())
	cutoff := r.Cutoff(now)

	ix := index.New()
	ix.Append(types.NewDataPoint(cutoff-1, "cpu", 1, nil))     // expired
	ix.Append(types.NewDataPoint(cutoff, "cpu", 2, nil))       // exactly cutoff: retained
	ix.Append(types.NewDataPoint(cutoff+1000, "cpu", 3, nil))  // retained
	ix.Append(types.NewDataPoint(cutoff-5000, "memory", 4, nil)) // expired

	res := r.SweepAt(ix, now)
	if res.Cutoff != cutoff {
		t.Errorf("result cutoff = %d, want %d", res.Cutoff, cutoff)
	}
	if res.PointsEvicted != 2 {
		t.Errorf("PointsEvicted = %d, want 2", res.PointsEvicted)
	}
	if res.BucketsEvicted != 2 {
		t.Errorf("BucketsEvicted = %d, want 2", res.BucketsEvicted)
	}

	// Points at or above the cutoff survive.
	var remaining []int64
	ix.Scan("cpu", cutoff-10000, cutoff+10000, func(p types.DataPoint) bool {
		remaining = append(remaining, p.Timestamp())
		return true
	})
	if len(remaining) != 2 || remaining[0] != cutoff {
		t.Errorf("remaining cpu timestamps = %v", remaining)
	}
}

func TestStats_Accumulate(t *testing.T) {
	r := New(time.Hour, time.Minute)
	now := time.UnixMilli(10 * time.Hour.Milliseconds())

	ix := index.New()
	ix.Append(types.NewDataPoint(0, "cpu", 1, nil))
	r.SweepAt(ix, now)
	r.SweepAt(ix, now.Add(time.Minute))

	stats := r.Stats()
	if stats.Runs != 2 {
		t.Errorf("Runs = %d, want 2", stats.Runs)
	}
	if stats.PointsEvicted != 1 {
		t.Errorf("PointsEvicted = %d, want 1", stats.PointsEvicted)
	}
	if !stats.LastRunTime.Equal(now.Add(time.Minute)) {
		t.Errorf("LastRunTime = %v", stats.LastRunTime)
	}
}
