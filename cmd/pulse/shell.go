package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/pulsedb/pulse/internal/storage"
)

// runShell starts the interactive shell: insert and query the store from a
// prompt with completion over commands and known metric names.
func runShell(args []string) error {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file path")
	dataDir := fs.String("data", "", "data directory (overrides config)")
	fs.Parse(args)

	st, err := openStore(*cfgPath, *dataDir)
	if err != nil {
		return err
	}

	sh := &shell{store: st}
	fmt.Println("pulse shell. Type 'help' for commands, 'exit' to quit.")
	p := prompt.New(
		sh.execute,
		sh.complete,
		prompt.OptionTitle("pulse"),
		prompt.OptionPrefix("pulse> "),
	)
	p.Run()
	return st.Close()
}

type shell struct {
	store *storage.Store
}

var shellCommands = []prompt.Suggest{
	{Text: "insert", Description: "insert <metric> <ts> <value> [k=v ...]"},
	{Text: "query", Description: "query <metric> <start> <end> [k=v ...]"},
	{Text: "metrics", Description: "list metric names"},
	{Text: "stats", Description: "show store statistics"},
	{Text: "sweep", Description: "run a retention sweep now"},
	{Text: "help", Description: "show help"},
	{Text: "exit", Description: "close the store and quit"},
}

func (sh *shell) complete(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	fields := strings.Fields(text)

	// First word: complete the command.
	if len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(text, " ")) {
		return prompt.FilterHasPrefix(shellCommands, d.GetWordBeforeCursor(), true)
	}

	// Second word of insert/query: complete metric names.
	if fields[0] == "insert" || fields[0] == "query" {
		if len(fields) == 1 || (len(fields) == 2 && !strings.HasSuffix(text, " ")) {
			var metrics []prompt.Suggest
			for _, m := range sh.store.Metrics() {
				metrics = append(metrics, prompt.Suggest{Text: m})
			}
			return prompt.FilterHasPrefix(metrics, d.GetWordBeforeCursor(), true)
		}
	}
	return nil
}

func (sh *shell) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	var err error
	switch fields[0] {
	case "insert":
		err = sh.insert(fields[1:])
	case "query":
		err = sh.query(fields[1:])
	case "metrics":
		for _, m := range sh.store.Metrics() {
			fmt.Println(m)
		}
	case "stats":
		sh.stats()
	case "sweep":
		err = sh.sweep()
	case "help":
		for _, c := range shellCommands {
			fmt.Printf("  %-8s %s\n", c.Text, c.Description)
		}
	case "exit", "quit":
		if err := sh.store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	default:
		err = fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func (sh *shell) insert(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: insert <metric> <ts> <value> [k=v ...]")
	}
	ts, err := parseTimestamp(args[1])
	if err != nil {
		return err
	}
	value, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q", args[2])
	}
	tags, err := parseTagArgs(args[3:])
	if err != nil {
		return err
	}
	if err := sh.store.Insert(ts, args[0], value, tags); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func (sh *shell) query(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: query <metric> <start> <end> [k=v ...]")
	}
	start, err := parseTimestamp(args[1])
	if err != nil {
		return err
	}
	end, err := parseTimestamp(args[2])
	if err != nil {
		return err
	}
	filters, err := parseTagArgs(args[3:])
	if err != nil {
		return err
	}
	points, err := sh.store.Query(args[0], start, end, filters)
	if err != nil {
		return err
	}
	for _, p := range points {
		fmt.Println(p)
	}
	fmt.Printf("%d points\n", len(points))
	return nil
}

func (sh *shell) stats() {
	st := sh.store.Stats()
	fmt.Printf("metrics:  %d\n", st.Metrics)
	fmt.Printf("points:   %d\n", st.Points)
	fmt.Printf("replay:   loaded=%d skipped=%d expired=%d\n",
		st.Replay.Loaded, st.Replay.Skipped, st.Replay.Expired)
	fmt.Printf("wal:      appended=%d bytes=%d syncs=%d errors=%d\n",
		st.WAL.RecordsAppended, st.WAL.BytesWritten, st.WAL.SyncsPerformed, st.WAL.Errors)
	fmt.Printf("reaper:   runs=%d evicted=%d\n",
		st.Retention.Runs, st.Retention.PointsEvicted)
}

func (sh *shell) sweep() error {
	res, err := sh.store.Sweep()
	if err != nil {
		return err
	}
	fmt.Printf("evicted %d points (%d buckets) below cutoff %d\n",
		res.PointsEvicted, res.BucketsEvicted, res.Cutoff)
	return nil
}
