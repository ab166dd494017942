package main

import (
	"flag"
	"fmt"
	"time"
)

// runQuery opens the store, runs one range query, and prints the matches.
func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file path")
	dataDir := fs.String("data", "", "data directory (overrides config)")
	metric := fs.String("metric", "", "metric name (required)")
	startArg := fs.String("start", "0", "range start, inclusive (epoch ms, RFC 3339, or \"now\")")
	endArg := fs.String("end", "now", "range end, exclusive")
	limit := fs.Int("limit", 20, "maximum points to print (0 = all)")
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

	began := time.Now()
	points, err := st.Query(*metric, start, end, filters)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	for i, p := range points {
		if *limit > 0 && i >= *limit {
			fmt.Printf("... %d more\n", len(points)-*limit)
			break
		}
		fmt.Println(p)
	}
	fmt.Printf("%d points in %s\n", len(points), elapsed.Round(time.Microsecond))
	return nil
}
