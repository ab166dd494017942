// Package retention implements the reaper: the periodic sweep that evicts
// points older than the retention window from the in-memory index.
//
// Eviction only touches the index. It never retracts already-written log
// records; instead the same cutoff is applied again at replay time, so
// expired points do not resurface after a restart.
package retention

import (
	"sync"
	"time"

	"github.com/pulsedb/pulse/internal/storage/index"
)

// SweepResult holds the outcome of one sweep.
type SweepResult struct {
	Cutoff         int64
	BucketsEvicted int
	PointsEvicted  int
}

// Stats holds cumulative reaper statistics.
type Stats struct {
	Runs           int64
	BucketsEvicted int64
	PointsEvicted  int64
	LastRunTime    time.Time
}

// Reaper computes retention cutoffs and sweeps expired buckets out of the
// index. The caller is responsible for holding exclusive access to the index
// during a sweep; the reaper's own mutex only guards its statistics.
type Reaper struct {
	window   time.Duration
	interval time.Duration

	mu    sync.Mutex
	stats Stats
}

// New creates a reaper with the given retention window and sweep interval.
func New(window, interval time.Duration) *Reaper {
	return &Reaper{
		window:   window,
		interval: interval,
	}
}

// Window returns the retention window.
func (r *Reaper) Window() time.Duration { return r.window }

// Interval returns the sweep interval.
func (r *Reaper) Interval() time.Duration { return r.interval }

// Cutoff returns the eviction cutoff for the given wall-clock time: points
// with a timestamp strictly below now minus window are expired, the cutoff
// itself is retained.
func (r *Reaper) Cutoff(now time.Time) int64 {
	return now.UnixMilli() - r.window.Milliseconds()
}

// Sweep evicts expired buckets as of time.Now().
func (r *Reaper) Sweep(ix *index.Index) SweepResult {
	return r.SweepAt(ix, time.Now())
}

// SweepAt evicts expired buckets as of the given time. Split out from Sweep
// so tests can pin the clock.
func (r *Reaper) SweepAt(ix *index.Index, now time.Time) SweepResult {
	cutoff := r.Cutoff(now)
	buckets, points := ix.EvictBefore(cutoff)

	r.mu.Lock()
	r.stats.Runs++
	r.stats.BucketsEvicted += int64(buckets)
	r.stats.PointsEvicted += int64(points)
	r.stats.LastRunTime = now
	r.mu.Unlock()

	return SweepResult{
		Cutoff:         cutoff,
		BucketsEvicted: buckets,
		PointsEvicted:  points,
	}
}

// Stats returns cumulative statistics.
func (r *Reaper) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
