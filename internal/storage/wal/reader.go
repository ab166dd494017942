package wal

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/pulsedb/pulse/internal/logging"
	"github.com/pulsedb/pulse/internal/storage/types"
)

// maxLineSize bounds a single log line during replay. Records are small; a
// line this long is corruption.
const maxLineSize = 1 * 1024 * 1024

// ReplayResult summarizes a replay pass over the log.
type ReplayResult struct {
	// Loaded is the number of records applied through fn.
	Loaded int

	// Skipped is the number of malformed lines dropped.
	Skipped int

	// Expired is the number of well-formed records older than the retention
	// cutoff, filtered at load time so eviction already applied in a previous
	// run does not resurrect points.
	Expired int
}

// Replay streams every record of the log at path, in file order, through fn.
//
// Records with a timestamp strictly below cutoff are counted as expired and
// not applied. Malformed lines are skipped with a warning and never abort the
// rest of the replay; replay is at-least-once, so duplicate records produce
// duplicate points. A missing log file is not an error: there is simply
// nothing to replay.
func Replay(path string, cutoff int64, fn func(types.DataPoint)) (ReplayResult, error) {
	var res ReplayResult

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()

	log := logging.Component("wal")

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		p, err := decodeRecord(line)
		if err != nil {
			res.Skipped++
			log.Warn("skipping malformed log record", "line", lineNo, "error", err)
			continue
		}
		if p.Timestamp() < cutoff {
			res.Expired++
			continue
		}

		fn(p)
		res.Loaded++
	}
	if err := scanner.Err(); err != nil {
		// A scan error (e.g. an oversized line) ends the usable portion of
		// the log; everything read so far is kept.
		res.Skipped++
		log.Warn("log replay stopped early", "line", lineNo, "error", err)
	}

	return res, nil
}
