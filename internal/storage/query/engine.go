// Package query implements range queries with exact-match tag filtering over
// the metric index.
package query

import (
	"github.com/pulsedb/pulse/internal/storage/index"
	"github.com/pulsedb/pulse/internal/storage/types"
)

// Params describes one query: a metric, a half-open timestamp range
// [Start, End), and optional exact-match tag filters.
type Params struct {
	Metric  string
	Start   int64 // inclusive, epoch milliseconds
	End     int64 // exclusive, epoch milliseconds
	Filters map[string]string
}

// Engine executes queries against an index. It performs no locking of its
// own: the store runs Engine.Run under shared access, concurrently with other
// readers but never with a writer, so every query observes a consistent
// snapshot.
type Engine struct {
	idx *index.Index
}

// NewEngine creates a query engine over the given index.
func NewEngine(idx *index.Index) *Engine {
	return &Engine{idx: idx}
}

// Run returns every point of p.Metric in [p.Start, p.End) whose tags contain
// all of p.Filters, in ascending timestamp order and insertion order within a
// timestamp. An unknown metric yields an empty, non-nil result. Tag filtering
// is linear in the time-filtered candidate set; there is no secondary tag
// index, which is the known scaling limit for high-cardinality tags.
func (e *Engine) Run(p Params) []types.DataPoint {
	result := []types.DataPoint{}
	e.idx.Scan(p.Metric, p.Start, p.End, func(dp types.DataPoint) bool {
		if dp.MatchesTags(p.Filters) {
			result = append(result, dp)
		}
		return true
	})
	return result
}

// Count returns the number of matching points without materializing them.
func (e *Engine) Count(p Params) int {
	n := 0
	e.idx.Scan(p.Metric, p.Start, p.End, func(dp types.DataPoint) bool {
		if dp.MatchesTags(p.Filters) {
			n++
		}
		return true
	})
	return n
}
