package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pulsedb/pulse/internal/errors"
	"github.com/pulsedb/pulse/internal/logging"
	"github.com/pulsedb/pulse/internal/storage/config"
	"github.com/pulsedb/pulse/internal/storage/index"
	"github.com/pulsedb/pulse/internal/storage/query"
	"github.com/pulsedb/pulse/internal/storage/retention"
	"github.com/pulsedb/pulse/internal/storage/types"
	"github.com/pulsedb/pulse/internal/storage/wal"
)

// Store is the embedded time-series store. It is safe for concurrent use:
// a single RWMutex serializes writers (Insert, replay, retention sweeps)
// against readers (Query), so queries always observe a consistent snapshot
// and never a partially filled bucket.
type Store struct {
	mu sync.RWMutex

	cfg    *config.Config
	idx    *index.Index
	engine *query.Engine
	wal    *wal.Appender
	reaper *retention.Reaper
	log    *slog.Logger

	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	replay wal.ReplayResult
}

// Stats holds a snapshot of store statistics.
type Stats struct {
	Metrics   int
	Points    int
	Replay    wal.ReplayResult
	WAL       wal.AppendStats
	Retention retention.Stats
}

// Open initializes a store from the given configuration: it replays the
// durability log into the index (applying the retention cutoff at load time),
// opens the log for appending, and starts the reaper. Call Close before
// process exit. A nil config uses defaults.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, errors.Wrapf(errors.ErrOpening, "ensure directories: %v", err)
	}

	s := &Store{
		cfg:    cfg,
		idx:    index.New(),
		reaper: retention.New(cfg.Retention.Window, cfg.Retention.SweepInterval),
		log:    logging.Component("store"),
	}
	s.engine = query.NewEngine(s.idx)

	// Replay before the appender opens: the log is read in file order through
	// the same index-mutation path inserts use. Replay is at-least-once, so
	// duplicate records become duplicate points.
	cutoff := s.reaper.Cutoff(time.Now())
	res, err := wal.Replay(cfg.WALPath(), cutoff, s.idx.Append)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrOpening, "replay: %v", err)
	}
	s.replay = res
	if res.Loaded > 0 || res.Skipped > 0 || res.Expired > 0 {
		s.log.Info("log replay complete",
			"loaded", res.Loaded, "skipped", res.Skipped, "expired", res.Expired)
	}

	appender, err := wal.OpenAppender(cfg.WALPath(), wal.Options{
		SyncMode:   cfg.WAL.SyncMode,
		BufferSize: cfg.WAL.BufferSize,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrOpening, "open log: %v", err)
	}
	s.wal = appender

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.wg.Add(1)
	go s.reaperWorker()

	return s, nil
}

// Insert adds a point to the store. The metric name must be non-empty; the
// tags map may be nil and is copied, never retained. The index mutation and
// the synchronous log append happen under one exclusive critical section, and
// a failed append rolls the index mutation back, so a point is queryable iff
// it is durable. Insert blocks on log I/O while holding exclusive access.
func (s *Store) Insert(timestamp int64, metric string, value float64, tags map[string]string) error {
	if metric == "" {
		return errors.ErrEmptyMetric
	}

	p := types.NewDataPoint(timestamp, metric, value, tags)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.ErrClosed
	}

	s.idx.Append(p)
	if err := s.wal.Append(p); err != nil {
		s.idx.RemoveLast(p)
		return errors.Wrapf(errors.ErrWALAppend, "%v", err)
	}
	return nil
}

// Query returns every point of metric in the half-open range [start, end)
// whose tags contain all of filters, ascending by timestamp and in insertion
// order within a timestamp. An unknown metric yields an empty result, not an
// error. The result is a snapshot: it never aliases stored state.
func (s *Store) Query(metric string, start, end int64, filters map[string]string) ([]types.DataPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errors.ErrClosed
	}

	return s.engine.Run(query.Params{
		Metric:  metric,
		Start:   start,
		End:     end,
		Filters: filters,
	}), nil
}

// Sweep runs one retention pass immediately, outside the periodic schedule.
func (s *Store) Sweep() (retention.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return retention.SweepResult{}, errors.ErrClosed
	}
	return s.reaper.Sweep(s.idx), nil
}

// Close stops the reaper, then flushes and closes the durability log. After
// Close begins, Insert and Query return ErrClosed; no sweep runs once Close
// returns. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	// The reaper re-checks closed under the lock, so after this wait no sweep
	// can touch the index again.
	s.cancel()
	s.wg.Wait()

	if err := s.wal.Sync(); err != nil {
		// Best effort: still release the handle.
		closeErr := s.wal.Close()
		s.log.Error("final log sync failed", "error", err)
		if closeErr != nil {
			return errors.Wrapf(errors.ErrWALSync, "sync: %v, close: %v", err, closeErr)
		}
		return errors.Wrapf(errors.ErrWALSync, "%v", err)
	}
	if err := s.wal.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}

	s.log.Info("store closed", "points", s.idx.NumPoints(), "metrics", s.idx.NumMetrics())
	return nil
}

// Stats returns a snapshot of store statistics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Metrics:   s.idx.NumMetrics(),
		Points:    s.idx.NumPoints(),
		Replay:    s.replay,
		WAL:       s.wal.Stats(),
		Retention: s.reaper.Stats(),
	}
}

// Metrics returns the metric names currently in the index, sorted.
func (s *Store) Metrics() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.Metrics()
}

// reaperWorker runs the periodic retention sweep until Close cancels it.
func (s *Store) reaperWorker() {
	defer s.wg.Done()

	log := logging.Component("retention")
	ticker := time.NewTicker(s.reaper.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.closed {
				s.mu.Unlock()
				return
			}
			res := s.reaper.Sweep(s.idx)
			s.mu.Unlock()

			if res.PointsEvicted > 0 {
				log.Info("sweep complete",
					"cutoff", res.Cutoff,
					"buckets_evicted", res.BucketsEvicted,
					"points_evicted", res.PointsEvicted)
			}
		}
	}
}
