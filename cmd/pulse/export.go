package main

import (
	"flag"
	"fmt"

	"github.com/pulsedb/pulse/internal/storage/parquet"
)

// runExport runs a query and writes the result to a Parquet file.
func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file path")
	dataDir := fs.String("data", "", "data directory (overrides config)")
	metric := fs.String("metric", "", "metric name (required)")
	startArg := fs.String("start", "0", "range start, inclusive (epoch ms, RFC 3339, or \"now\")")
	endArg := fs.String("end", "now", "range end, exclusive")
	out := fs.String("out", "export.parquet", "output file")
	compression := fs.String("compression", "zstd", "compression: none, snappy, zstd, lz4, gzip")
	fs.Parse(args)

	if *metric == "" {
		return fmt.Errorf("-metric is required")
	}
	start, err := parseTimestamp(*startArg)
	if err != nil {
		return err
	}
	end, err := parseTimestamp(*endArg)
	if err != nil {
		return err
	}
	filters, err := parseTagArgs(fs.Args())
	if err != nil {
		return err
	}

	st, err := openStore(*cfgPath, *dataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	points, err := st.Query(*metric, start, end, filters)
	if err != nil {
		return err
	}

	opts := parquet.Options{Compression: parquet.ParseCompressionType(*compression)}
	if err := parquet.WriteFile(*out, points, opts); err != nil {
		return err
	}

	fmt.Printf("exported %d points to %s\n", len(points), *out)
	return nil
}
