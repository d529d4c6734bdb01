// topicdex-shell is an interactive REPL for exercising a topicdex Instance
// against a local memlog.Store.
//
// Usage:
//
//	topicdex-shell --dir ./data --topics accounts,orders
//	topicdex-shell --dir ./data --config ./topicdex.hujson --cache-size 50000
//
// Commands (in REPL):
//
//	put <topic> <key> <value> [timestamp]   Write a key
//	get <topic> <key> [bypass]              Read a key
//	del <topic> <key>                       Remove a key
//	scan <topic> [limit]                    Iterate a topic from offset 0
//	stats <topic>                           Show cache hit/miss/read stats
//	resetstats <topic>                      Zero a topic's cache counters
//	timekey <timestamp>                     Look up the time-to-key index
//	info <topic>                            Dump the in-memory hash index
//	help                                    Show this help
//	exit / quit / q                         Exit
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/arvindmenon/topicdex/internal/memlog"
	"github.com/arvindmenon/topicdex/internal/table"
	"github.com/arvindmenon/topicdex/pkg/logengine"
	"github.com/arvindmenon/topicdex/pkg/options"
	"github.com/arvindmenon/topicdex/pkg/topicdex"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	dir := pflag.StringP("dir", "d", "./topicdex-data", "data directory for the on-disk log files")
	configPath := pflag.StringP("config", "c", "", "path to a hujson config file (defaults -> file -> flags)")
	topicsFlag := pflag.StringP("topics", "t", "accounts", "comma-separated list of topics to serve")
	cacheSize := pflag.Int("cache-size", options.DefaultCacheSize, "per-topic value cache capacity")
	fetchMaxBytes := pflag.Int("fetch-max-bytes", options.DefaultFetchMaxBytes, "byte budget per fetch window")
	withTimeIndex := pflag.Bool("time-index", false, "enable the timestamp -> key index")
	compression := pflag.String("compression", "none", "batch compression: none|snappy")
	pflag.Parse()

	var opts []options.OptionFunc

	if *configPath != "" {
		fileOpts, err := options.LoadFile(*configPath)
		if err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
		opts = append(opts, fileOpts...)
	}

	// Flags only override the config file's values when the user actually
	// set them on the command line; an unset flag leaves the file's (or
	// the package default's) value in place.
	if pflag.Lookup("topics").Changed {
		opts = append(opts, options.WithTopics(strings.Split(*topicsFlag, ",")...))
	}
	if pflag.Lookup("cache-size").Changed {
		opts = append(opts, options.WithCacheSize(*cacheSize))
	}
	if pflag.Lookup("fetch-max-bytes").Changed {
		opts = append(opts, options.WithFetchMaxBytes(*fetchMaxBytes))
	}
	if pflag.Lookup("time-index").Changed {
		opts = append(opts, options.WithTimeIndex(*withTimeIndex))
	}
	if pflag.Lookup("compression").Changed {
		compressionValue := logengine.CompressionNone
		if strings.EqualFold(*compression, "snappy") {
			compressionValue = logengine.CompressionSnappy
		}
		opts = append(opts, options.WithCompression(int(compressionValue)))
	}

	if *configPath == "" && !pflag.Lookup("topics").Changed {
		opts = append(opts, options.WithTopics(strings.Split(*topicsFlag, ",")...))
	}

	ctx := context.Background()

	store, err := memlog.Open(*dir, nil)
	if err != nil {
		return fmt.Errorf("opening data directory: %w", err)
	}
	defer store.Close()

	inst, err := topicdex.NewInstance(ctx, "topicdex-shell", store, opts...)
	if err != nil {
		return fmt.Errorf("building table: %w", err)
	}
	defer inst.Close(ctx)

	resolvedTopics := strings.Split(*topicsFlag, ",")
	repl := &REPL{ctx: ctx, instance: inst, topics: resolvedTopics}
	return repl.Run()
}

// REPL is the interactive command loop.
type REPL struct {
	ctx      context.Context
	instance *topicdex.Instance
	topics   []string
	liner    *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".topicdex_shell_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("topicdex-shell (topics=%s)\n", strings.Join(r.topics, ","))
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("topicdex> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")
			r.saveHistory()
			return nil
		case "help", "?":
			r.printHelp()
		case "put":
			r.cmdPut(args)
		case "get":
			r.cmdGet(args)
		case "del", "delete":
			r.cmdDelete(args)
		case "scan", "ls", "list":
			r.cmdScan(args)
		case "stats":
			r.cmdStats(args)
		case "resetstats":
			r.cmdResetStats(args)
		case "timekey":
			r.cmdTimeKey(args)
		case "info":
			r.cmdInfo(args)
		case "clear", "cls":
			fmt.Print("\033[H\033[2J")
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()
	return nil
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"put", "get", "del", "delete", "scan", "ls", "list",
		"stats", "resetstats", "timekey", "info", "clear", "cls",
		"help", "exit", "quit", "q",
	}

	var completions []string
	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}
	return completions
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  put <topic> <key> <value> [timestamp]   Write a key")
	fmt.Println("  get <topic> <key> [bypass]               Read a key")
	fmt.Println("  del <topic> <key>                        Remove a key")
	fmt.Println("  scan <topic> [limit]                     Iterate a topic from offset 0")
	fmt.Println("  stats <topic>                            Show cache hit/miss/read stats")
	fmt.Println("  resetstats <topic>                       Zero a topic's cache counters")
	fmt.Println("  timekey <timestamp>                      Look up the time-to-key index")
	fmt.Println("  info <topic>                             Dump the in-memory hash index")
	fmt.Println("  help                                     Show this help")
	fmt.Println("  exit / quit / q                          Exit")
}

func (r *REPL) cmdPut(args []string) {
	if len(args) < 3 {
		fmt.Println("Usage: put <topic> <key> <value> [timestamp]")
		return
	}

	timestamp := int64(-1)
	if len(args) >= 4 {
		ts, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			fmt.Printf("Error parsing timestamp: %v\n", err)
			return
		}
		timestamp = ts
	}

	n, err := r.instance.Write(r.ctx, []table.KeyValue{
		{Key: []byte(args[1]), Value: []byte(args[2]), Timestamp: timestamp},
	}, args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if n == 0 {
		fmt.Println("OK: elided (value unchanged)")
		return
	}
	fmt.Printf("OK: wrote %s=%s\n", args[1], args[2])
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: get <topic> <key> [bypass]")
		return
	}

	bypass := len(args) >= 3 && strings.EqualFold(args[2], "bypass")

	found, err := r.instance.Read(r.ctx, []byte(args[1]), args[0], bypass)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !found.Present {
		fmt.Println("(not found)")
		return
	}

	fmt.Printf("Value:     %s\n", string(found.Value))
	fmt.Printf("Timestamp: %d\n", found.Timestamp)
}

func (r *REPL) cmdDelete(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: del <topic> <key>")
		return
	}

	if err := r.instance.Remove(r.ctx, [][]byte{[]byte(args[1])}, args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("OK: removed %s\n", args[1])
}

func (r *REPL) cmdScan(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: scan <topic> [limit]")
		return
	}

	limit := 20
	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Printf("Error parsing limit: %v\n", err)
			return
		}
		limit = n
	}

	count := 0
	err := r.instance.IterateOver(r.ctx, args[0], 0, func(offset int64, rec logengine.Record) error {
		if count >= limit {
			return errScanLimitReached
		}
		count++
		if rec.HasValue {
			fmt.Printf("%4d. %-20q = %q (ts=%d)\n", offset, rec.Key, rec.Value, rec.Timestamp)
		} else {
			fmt.Printf("%4d. %-20q (tombstone)\n", offset, rec.Key)
		}
		return nil
	})
	if err != nil && err != errScanLimitReached {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if count == 0 {
		fmt.Println("(empty)")
	}
}

var errScanLimitReached = errors.New("scan limit reached")

func (r *REPL) cmdStats(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: stats <topic>")
		return
	}

	stats, err := r.instance.CacheStats(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Hit rate:    %.2f%%\n", stats.HitRate*100)
	fmt.Printf("Miss rate:   %.2f%%\n", stats.MissRate*100)
	fmt.Printf("Read count:  %d\n", stats.ReadCount)
}

func (r *REPL) cmdResetStats(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: resetstats <topic>")
		return
	}

	if err := r.instance.ResetCacheStats(args[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK: stats reset")
}

func (r *REPL) cmdTimeKey(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: timekey <timestamp>")
		return
	}

	ts, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Printf("Error parsing timestamp: %v\n", err)
		return
	}

	key, ok := r.instance.GetKeyByTime(ts)
	if !ok {
		fmt.Println("(absent)")
		return
	}
	fmt.Printf("Key: %q\n", key)
}

func (r *REPL) cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: info <topic>")
		return
	}

	snapshot, err := r.instance.IndexSnapshot(args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(snapshot) == 0 {
		fmt.Println("(empty index)")
		return
	}

	hashes := make([]int32, 0, len(snapshot))
	for h := range snapshot {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	fmt.Printf("%d distinct key hash(es):\n", len(hashes))
	for _, h := range hashes {
		fmt.Printf("  %d: %v\n", h, snapshot[h])
	}
}
