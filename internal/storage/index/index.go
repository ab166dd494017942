// Package index implements the in-memory metric index: a per-metric,
// time-ordered structure mapping each timestamp to its bucket of points.
//
// The index itself performs no locking. All access is serialized by the
// store's concurrency controller: writers (insert, replay, retention sweeps)
// hold exclusive access, readers hold shared access.
package index

import (
	"sort"

	"github.com/pulsedb/pulse/internal/storage/types"
)

// bucket holds every point sharing one metric and one exact timestamp,
// in insertion order. Distinct tag sets may legitimately share a timestamp,
// e.g. different hosts reporting simultaneously.
type bucket struct {
	ts     int64
	points []types.DataPoint
}

// series is the time-ordered structure for one metric: buckets sorted by
// timestamp ascending, so range scans are a binary search plus a contiguous
// walk.
type series struct {
	buckets []bucket
}

// search returns the position of the first bucket with ts >= t.
func (s *series) search(t int64) int {
	return sort.Search(len(s.buckets), func(i int) bool {
		return s.buckets[i].ts >= t
	})
}

// append adds a point to the bucket at p.Timestamp(), creating the bucket if
// needed. Appends at or past the tail are the common case and take the fast
// path.
func (s *series) append(p types.DataPoint) {
	ts := p.Timestamp()

	if n := len(s.buckets); n == 0 || ts > s.buckets[n-1].ts {
		s.buckets = append(s.buckets, bucket{ts: ts, points: []types.DataPoint{p}})
		return
	}
	if last := &s.buckets[len(s.buckets)-1]; last.ts == ts {
		last.points = append(last.points, p)
		return
	}

	i := s.search(ts)
	if i < len(s.buckets) && s.buckets[i].ts == ts {
		s.buckets[i].points = append(s.buckets[i].points, p)
		return
	}

	s.buckets = append(s.buckets, bucket{})
	copy(s.buckets[i+1:], s.buckets[i:])
	s.buckets[i] = bucket{ts: ts, points: []types.DataPoint{p}}
}

// Index maps metric names to their time-ordered series.
type Index struct {
	metrics map[string]*series
	points  int
}

// New creates an empty index.
func New() *Index {
	return &Index{
		metrics: make(map[string]*series),
	}
}

// Append adds a point to the index.
func (ix *Index) Append(p types.DataPoint) {
	sr, ok := ix.metrics[p.Metric()]
	if !ok {
		sr = &series{}
		ix.metrics[p.Metric()] = sr
	}
	sr.append(p)
	ix.points++
}

// RemoveLast removes the most recently appended point for p's metric and
// timestamp, provided it equals p. It exists so a failed durability append
// can be rolled back; insert holds exclusive access across the mutation and
// the append, so the last point in the bucket is always the one just added.
// Returns false if no matching point was found.
func (ix *Index) RemoveLast(p types.DataPoint) bool {
	sr, ok := ix.metrics[p.Metric()]
	if !ok {
		return false
	}

	i := sr.search(p.Timestamp())
	if i >= len(sr.buckets) || sr.buckets[i].ts != p.Timestamp() {
		return false
	}

	b := &sr.buckets[i]
	last := len(b.points) - 1
	if last < 0 || !b.points[last].Equal(p) {
		return false
	}

	b.points[last] = types.DataPoint{}
	b.points = b.points[:last]
	ix.points--

	if len(b.points) == 0 {
		sr.buckets = append(sr.buckets[:i], sr.buckets[i+1:]...)
	}
	if len(sr.buckets) == 0 {
		delete(ix.metrics, p.Metric())
	}
	return true
}

// Scan iterates the half-open timestamp range [start, end) of one metric in
// ascending bucket order, and within each bucket in insertion order. The
// callback returns false to stop early. Scanning an unknown metric is a no-op.
func (ix *Index) Scan(metric string, start, end int64, fn func(types.DataPoint) bool) {
	sr, ok := ix.metrics[metric]
	if !ok {
		return
	}

	for i := sr.search(start); i < len(sr.buckets) && sr.buckets[i].ts < end; i++ {
		for _, p := range sr.buckets[i].points {
			if !fn(p) {
				return
			}
		}
	}
}

// EvictBefore removes every bucket with timestamp strictly less than cutoff
// from every metric's series. The cutoff itself is retained, keeping the
// half-open query semantics consistent. Returns the number of buckets and
// points removed.
func (ix *Index) EvictBefore(cutoff int64) (buckets, points int) {
	for metric, sr := range ix.metrics {
		i := sr.search(cutoff)
		if i == 0 {
			continue
		}
		for _, b := range sr.buckets[:i] {
			points += len(b.points)
		}
		buckets += i

		n := copy(sr.buckets, sr.buckets[i:])
		for j := n; j < len(sr.buckets); j++ {
			sr.buckets[j] = bucket{}
		}
		sr.buckets = sr.buckets[:n]

		if n == 0 {
			delete(ix.metrics, metric)
		}
	}
	ix.points -= points
	return buckets, points
}

// NumMetrics returns the number of distinct metrics in the index.
func (ix *Index) NumMetrics() int { return len(ix.metrics) }

// NumPoints returns the total number of points in the index.
func (ix *Index) NumPoints() int { return ix.points }

// Metrics returns the metric names currently present, sorted.
func (ix *Index) Metrics() []string {
	names := make([]string, 0, len(ix.metrics))
	for name := range ix.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
