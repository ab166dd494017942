package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pulsedb/pulse/internal/datagen"
	"github.com/pulsedb/pulse/internal/storage/wal"
)

// runGen writes a JSON-lines sample-data file, one record per line in the
// same format the durability log uses.
func runGen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	out := fs.String("out", "sample_data.jsonl", "output file")
	hosts := fs.Int("hosts", 5, "number of simulated hosts")
	interval := fs.Duration("interval", time.Minute, "interval between points per series")
	duration := fs.Duration("duration", 24*time.Hour, "time span to cover, ending now")
	seed := fs.Int64("seed", 42, "random seed")
	fs.Parse(args)

	end := time.Now().UnixMilli()
	gen := datagen.New(datagen.Options{
		Start:    end - duration.Milliseconds(),
		End:      end,
		Interval: *interval,
		Hosts:    *hosts,
		Seed:     *seed,
	})
	points := gen.Points()

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1024*1024)
	for _, p := range points {
		line, err := wal.EncodeLine(p)
		if err != nil {
			return fmt.Errorf("encode point: %w", err)
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("wrote %d points to %s\n", len(points), *out)
	return nil
}
