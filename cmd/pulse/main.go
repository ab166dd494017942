// pulse is the command-line companion of the embedded pulse time-series
// store: it generates sample data, bulk-loads it, runs queries, benchmarks
// inserts, exports results to Parquet, and offers an interactive shell.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/pulsedb/pulse/internal/logging"
	"github.com/pulsedb/pulse/internal/storage"
	"github.com/pulsedb/pulse/internal/storage/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// JSON logs when output is redirected, text on a terminal.
	logging.Init(slog.LevelInfo, !term.IsTerminal(int(os.Stderr.Fd())))

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "gen":
		err = runGen(args)
	case "load":
		err = runLoad(args)
	case "query":
		err = runQuery(args)
	case "bench":
		err = runBench(args)
	case "export":
		err = runExport(args)
	case "shell":
		err = runShell(args)
	case "version":
		fmt.Printf("pulse %s\n", Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "pulse %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: pulse <command> [flags]

Commands:
  gen      generate a sample-data file (JSON lines)
  load     bulk-load a sample-data file into the store
  query    run a one-shot range query
  bench    benchmark inserts and report latency percentiles
  export   write a query result to a Parquet file
  shell    interactive insert/query shell
  version  print version

Run 'pulse <command> -h' for command flags.
`)
}

// openStore loads the configuration and opens the store. Every subcommand
// that touches the store shares these flags via addStoreFlags.
func openStore(cfgPath, dataDir string) (*storage.Store, error) {
	var cfg *config.Config
	if cfgPath != "" {
		loaded, err := config.LoadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return storage.Open(cfg)
}

// parseTagArgs parses trailing "key=value" arguments into a tag map.
func parseTagArgs(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	tags := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid tag %q (want key=value)", arg)
		}
		tags[k] = v
	}
	return tags, nil
}

// parseTimestamp accepts epoch milliseconds, RFC 3339, or "now".
func parseTimestamp(s string) (int64, error) {
	if s == "now" {
		return time.Now().UnixMilli(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ms, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (want epoch ms, RFC 3339, or \"now\")", s)
	}
	return t.UnixMilli(), nil
}
