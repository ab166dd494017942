package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pulsedb/pulse/internal/storage/types"
	"github.com/pulsedb/pulse/internal/storage/wal"
)

// runLoad bulk-inserts a JSON-lines sample file into the store with a pool
// of concurrent writers.
func runLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file path")
	dataDir := fs.String("data", "", "data directory (overrides config)")
	file := fs.String("file", "sample_data.jsonl", "sample-data file to load")
	workers := fs.Int("workers", 4, "concurrent insert workers")
	fs.Parse(args)

	st, err := openStore(*cfgPath, *dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()

	points := make(chan types.DataPoint, 1024)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < *workers; i++ {
		g.Go(func() error {
			for p := range points {
				if err := st.Insert(p.Timestamp(), p.Metric(), p.Value(), p.Tags()); err != nil {
					return err
				}
			}
			return nil
		})
	}

	loaded, skipped := 0, 0
	g.Go(func() error {
		defer close(points)
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			p, err := wal.DecodeLine(line)
			if err != nil {
				skipped++
				continue
			}
			select {
			case points <- p:
				loaded++
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return scanner.Err()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	stats := st.Stats()
	fmt.Printf("loaded %d points (%d skipped) in %s (%.0f points/s)\n",
		loaded, skipped, elapsed.Round(time.Millisecond),
		float64(loaded)/elapsed.Seconds())
	fmt.Printf("store: %d metrics, %d points\n", stats.Metrics, stats.Points)
	return nil
}
