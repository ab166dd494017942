package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/pulsedb/pulse/internal/datagen"
)

// runBench inserts generated points one at a time and reports throughput and
// per-insert latency percentiles.
func runBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file path")
	dataDir := fs.String("data", "", "data directory (overrides config)")
	count := fs.Int("n", 100000, "number of points to insert")
	hosts := fs.Int("hosts", 10, "number of simulated hosts")
	seed := fs.Int64("seed", 42, "random seed")
	fs.Parse(args)

	st, err := openStore(*cfgPath, *dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	// Enough series-seconds to cover the requested count.
	end := time.Now().UnixMilli()
	gen := datagen.New(datagen.Options{
		Start:    end - 24*time.Hour.Milliseconds(),
		End:      end,
		Interval: time.Second,
		Hosts:    *hosts,
		Seed:     *seed,
	})
	points := gen.Points()
	if len(points) > *count {
		points = points[:*count]
	}

	sketch, err := ddsketch.NewDefaultDDSketch(0.01)
	if err != nil {
		return fmt.Errorf("create sketch: %w", err)
	}

	began := time.Now()
	for _, p := range points {
		t0 := time.Now()
		if err := st.Insert(p.Timestamp(), p.Metric(), p.Value(), p.Tags()); err != nil {
			return err
		}
		if err := sketch.Add(float64(time.Since(t0).Microseconds())); err != nil {
			return fmt.Errorf("record latency: %w", err)
		}
	}
	elapsed := time.Since(began)

	quantile := func(q float64) float64 {
		v, err := sketch.GetValueAtQuantile(q)
		if err != nil {
			return 0
		}
		return v
	}

	fmt.Printf("inserted %d points in %s (%.0f points/s)\n",
		len(points), elapsed.Round(time.Millisecond),
		float64(len(points))/elapsed.Seconds())
	fmt.Printf("insert latency: p50=%.0fµs p95=%.0fµs p99=%.0fµs max=%.0fµs\n",
		quantile(0.5), quantile(0.95), quantile(0.99), quantile(1.0))
	return nil
}
