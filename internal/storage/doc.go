// Package storage implements the pulse store: an embedded, durable,
// concurrent time-series store.
//
// Points are tagged float64 measurements keyed by metric name and millisecond
// timestamp. The store answers half-open time-range queries with exact-match
// tag filtering, survives restarts by replaying an append-only log, and evicts
// points older than a retention window with a periodic background reaper.
//
// Subpackages, leaves first:
//   - types: the immutable DataPoint value
//   - index: the per-metric time-ordered in-memory index
//   - wal: the append-only durability log and its replay
//   - retention: the reaper
//   - query: range scans with tag filtering
//   - config: YAML configuration
//   - parquet: export of query results
//
// The Store in this package wires them together and owns the single
// shared/exclusive lock that serializes writers against readers.
package storage
