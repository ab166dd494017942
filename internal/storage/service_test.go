package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pulsedb/pulse/internal/errors"
	"github.com/pulsedb/pulse/internal/storage"
	"github.com/pulsedb/pulse/internal/storage/config"
)

// testConfig returns a config rooted in a fresh temp dir with a sweep
// interval long enough that the periodic reaper never interferes with a test.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Retention.SweepInterval = time.Hour
	return cfg
}

func TestStore_InsertQuery(t *testing.T) {
	st, err := storage.Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.Insert(1000, "cpu", 45.2, map[string]string{"host": "a"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	points, err := st.Query("cpu", 1000, 1001, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	p := points[0]
	if p.Timestamp() != 1000 || p.Metric() != "cpu" || p.Value() != 45.2 {
		t.Errorf("unexpected point %v", p)
	}
	if v, _ := p.Tag("host"); v != "a" {
		t.Errorf("tag host = %q, want a", v)
	}

	points, err = st.Query("cpu", 1000, 1001, map[string]string{"host": "b"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("host=b should match nothing, got %d points", len(points))
	}
}

func TestStore_EmptyMetricRejected(t *testing.T) {
	st, err := storage.Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	err = st.Insert(1000, "", 1, nil)
	if !errors.Is(err, errors.ErrEmptyMetric) {
		t.Fatalf("expected ErrEmptyMetric, got %v", err)
	}
	if !errors.IsValidation(err) {
		t.Error("empty metric should be a validation failure")
	}

	// No mutation happened: neither in the index nor in the log.
	stats := st.Stats()
	if stats.Points != 0 {
		t.Errorf("points = %d after failed insert, want 0", stats.Points)
	}
	if stats.WAL.RecordsAppended != 0 {
		t.Errorf("wal records = %d after failed insert, want 0", stats.WAL.RecordsAppended)
	}
}

func TestStore_RestartReplay(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now().UnixMilli()

	st, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := int64(0); i < 10; i++ {
		if err := st.Insert(now+i*1000, "cpu", float64(i), map[string]string{"host": "a"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	if st2.Stats().Replay.Loaded != 10 {
		t.Errorf("replay loaded %d records, want 10", st2.Stats().Replay.Loaded)
	}

	points, err := st2.Query("cpu", now, now+10_000, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(points) != 10 {
		t.Fatalf("expected 10 points after restart, got %d", len(points))
	}
	for i, p := range points {
		if p.Value() != float64(i) {
			t.Errorf("point %d: value %g, want %d", i, p.Value(), i)
		}
	}
}

func TestStore_RestartReplayAtLeastOnce(t *testing.T) {
	cfg := testConfig(t)
	now := time.Now().UnixMilli()

	st, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// Two identical inserts are two records, and replay keeps both.
	for i := 0; i < 2; i++ {
		if err := st.Insert(now, "cpu", 1, map[string]string{"host": "a"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	st.Close()

	st2, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	points, err := st2.Query("cpu", now, now+1, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(points) != 2 {
		t.Errorf("expected duplicate records to replay as 2 points, got %d", len(points))
	}
}

func TestStore_ReplaySkipsMalformedAndExpired(t *testing.T) {
	cfg := testConfig(t)
	cfg.Retention.Window = time.Hour
	now := time.Now().UnixMilli()

	st, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Insert(now, "cpu", 1, nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := st.Insert(now-2*time.Hour.Milliseconds(), "cpu", 2, nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	st.Close()

	// Corrupt the log with a trailing partial record.
	f, err := os.OpenFile(filepath.Join(cfg.DataDir, cfg.WAL.Filename), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	f.WriteString(`{"timestamp":123,"metric":"cpu","val`)
	f.Close()

	st2, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()

	res := st2.Stats().Replay
	if res.Loaded != 1 {
		t.Errorf("Loaded = %d, want 1", res.Loaded)
	}
	if res.Expired != 1 {
		t.Errorf("Expired = %d, want 1 (old point must not resurrect)", res.Expired)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 (partial record)", res.Skipped)
	}
}

func TestStore_RetentionSweep(t *testing.T) {
	cfg := testConfig(t)
	cfg.Retention.Window = time.Hour

	st, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	now := time.Now().UnixMilli()
	old := now - 2*time.Hour.Milliseconds()
	if err := st.Insert(old, "cpu", 1, nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := st.Insert(now, "cpu", 2, nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	res, err := st.Sweep()
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if res.PointsEvicted != 1 {
		t.Errorf("PointsEvicted = %d, want 1", res.PointsEvicted)
	}

	points, err := st.Query("cpu", old-1000, now+1000, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(points) != 1 || points[0].Value() != 2 {
		t.Errorf("expected only the fresh point, got %v", points)
	}
}

func TestStore_CloseSemantics(t *testing.T) {
	st, err := storage.Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Idempotent.
	if err := st.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if err := st.Insert(1, "cpu", 1, nil); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("Insert after Close = %v, want ErrClosed", err)
	}
	if _, err := st.Query("cpu", 0, 10, nil); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("Query after Close = %v, want ErrClosed", err)
	}
	if _, err := st.Sweep(); !errors.Is(err, errors.ErrClosed) {
		t.Errorf("Sweep after Close = %v, want ErrClosed", err)
	}
}

func TestStore_OpenFailure(t *testing.T) {
	// A data dir path that is an existing file cannot be created.
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.DataDir = blocker

	if _, err := storage.Open(cfg); !errors.Is(err, errors.ErrOpening) {
		t.Errorf("Open = %v, want ErrOpening", err)
	}
}

func TestStore_QueryResultIsSnapshot(t *testing.T) {
	st, err := storage.Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.Insert(1000, "cpu", 1, map[string]string{"host": "a"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	points, _ := st.Query("cpu", 0, 10000, nil)
	tags := points[0].Tags()
	tags["host"] = "mutated"

	again, _ := st.Query("cpu", 0, 10000, nil)
	if v, _ := again[0].Tag("host"); v != "a" {
		t.Errorf("stored state mutated through query result: host=%q", v)
	}
}
