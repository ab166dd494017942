// Package wal implements the append-only durability log: one JSON record per
// line, appended synchronously on every accepted insert and replayed on
// startup to rebuild the in-memory index.
//
// The log is never compacted or truncated; it grows monotonically across
// restarts. Corruption is handled at line granularity during replay.
package wal

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"github.com/pulsedb/pulse/internal/storage/types"
)

// Sync modes for the appender.
const (
	// SyncFlush flushes the userspace buffer to the OS after every append.
	// A process crash loses nothing; an OS crash can lose the last records.
	SyncFlush = "flush"

	// SyncFsync additionally fsyncs the file after every append. Strongest
	// durability, lowest throughput.
	SyncFsync = "fsync"
)

// Options configures the appender.
type Options struct {
	// SyncMode is either SyncFlush (default) or SyncFsync.
	SyncMode string

	// BufferSize is the size of the write buffer. Default: 64KB.
	BufferSize int
}

// DefaultOptions returns default appender options.
func DefaultOptions() Options {
	return Options{
		SyncMode:   SyncFlush,
		BufferSize: 64 * 1024,
	}
}

// AppendStats holds appender statistics.
type AppendStats struct {
	RecordsAppended int64
	BytesWritten    int64
	SyncsPerformed  int64
	Errors          int64
}

// Appender appends points to the log file. It carries its own mutex: the log
// is a single ordered sequence of records, so writes serialize here even if
// the index ever moves to finer-grained locking.
type Appender struct {
	mu sync.Mutex

	path   string
	file   *os.File
	writer *bufio.Writer
	opts   Options
	closed bool

	stats AppendStats
}

// OpenAppender opens the log file for appending, creating it if needed.
func OpenAppender(path string, opts Options) (*Appender, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}
	if opts.SyncMode == "" {
		opts.SyncMode = SyncFlush
	}
	if opts.SyncMode != SyncFlush && opts.SyncMode != SyncFsync {
		return nil, fmt.Errorf("unknown sync mode %q", opts.SyncMode)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}

	return &Appender{
		path:   path,
		file:   f,
		writer: bufio.NewWriterSize(f, opts.BufferSize),
		opts:   opts,
	}, nil
}

// Append serializes a point, writes it as one line, and flushes before
// returning, so a nil return means the record has left the process.
func (a *Appender) Append(p types.DataPoint) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		a.stats.Errors++
		return fmt.Errorf("appender is closed")
	}

	line, err := encodeRecord(p)
	if err != nil {
		a.stats.Errors++
		return fmt.Errorf("encode record: %w", err)
	}

	if _, err := a.writer.Write(line); err != nil {
		a.stats.Errors++
		return fmt.Errorf("write record: %w", err)
	}
	if err := a.writer.WriteByte('\n'); err != nil {
		a.stats.Errors++
		return fmt.Errorf("write record: %w", err)
	}

	if err := a.syncLocked(); err != nil {
		a.stats.Errors++
		return fmt.Errorf("sync: %w", err)
	}

	a.stats.RecordsAppended++
	a.stats.BytesWritten += int64(len(line)) + 1
	return nil
}

// Sync flushes buffered data to disk.
func (a *Appender) Sync() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	return a.syncLocked()
}

func (a *Appender) syncLocked() error {
	if err := a.writer.Flush(); err != nil {
		return err
	}
	if a.opts.SyncMode == SyncFsync {
		if err := a.file.Sync(); err != nil {
			return err
		}
	}
	a.stats.SyncsPerformed++
	return nil
}

// Close flushes and closes the log file. Close is idempotent.
func (a *Appender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	flushErr := a.writer.Flush()
	if err := a.file.Close(); err != nil {
		return err
	}
	return flushErr
}

// Stats returns appender statistics.
func (a *Appender) Stats() AppendStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Path returns the log file path.
func (a *Appender) Path() string {
	return a.path
}
