package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/cachecore/lru"
	"github.com/urfave/cli"
)

var replayCommand = cli.Command{
	Name:      "replay",
	Category:  "Cache",
	Usage:     "Replay a trace of cache operations.",
	ArgsUsage: "[trace-file]",
	Description: `
	Read cache operations line by line from the trace file, or stdin if no
	file is given, apply them to a fresh cache and print the result of
	every operation.

	Supported operations:
	    set <key> <value>   store a value
	    get <key>           look up a key, refreshing it
	    peek <key>          look up a key without refreshing it
	    del <key>           remove a key
	    keys                list keys from least to most recently used
	    stats               print the cache counters

	Empty lines and lines starting with # are ignored.
	`,
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "dump",
			Usage: "print the cache contents once the trace is done",
		},
		cli.BoolFlag{
			Name:  "quiet, q",
			Usage: "only print errors and the final dump",
		},
	},
	Action: replayTrace,
}

func replayTrace(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return cli.ShowCommandHelp(ctx, "replay")
	}

	cache, err := newCache(ctx)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if ctx.NArg() == 1 {
		f, err := os.Open(ctx.Args().First())
		if err != nil {
			return fmt.Errorf("unable to open trace: %w", err)
		}
		defer f.Close()

		in = f
	}

	out := io.Writer(os.Stdout)
	if ctx.Bool("quiet") {
		out = io.Discard
	}

	if err := replay(in, out, cache); err != nil {
		return err
	}

	if ctx.Bool("dump") {
		renderCache(os.Stdout, cache)
	}

	return nil
}

// replay applies every operation read from r to the cache and writes one
// line per result to w.
func replay(r io.Reader, w io.Writer, cache *lru.Cache[string, string]) error {
	scanner := bufio.NewScanner(r)

	var lineNum int
	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := applyOp(w, cache, strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}

	return scanner.Err()
}

// applyOp runs a single parsed operation.
func applyOp(w io.Writer, cache *lru.Cache[string, string],
	fields []string) error {

	op, args := fields[0], fields[1:]

	wantArgs := map[string]int{
		"set":   2,
		"get":   1,
		"peek":  1,
		"del":   1,
		"keys":  0,
		"stats": 0,
	}
	n, ok := wantArgs[op]
	if !ok {
		return fmt.Errorf("unknown operation %q", op)
	}
	if len(args) != n {
		return fmt.Errorf("%s takes %d argument(s), got %d", op, n,
			len(args))
	}

	switch op {
	case "set":
		cache.Set(args[0], args[1])
		fmt.Fprintf(w, "set %s = %s (size %d)\n", args[0], args[1],
			cache.Len())

	case "get":
		fmt.Fprintf(w, "get %s -> %s\n", args[0],
			cache.Get(args[0]).UnwrapOr(absent))

	case "peek":
		fmt.Fprintf(w, "peek %s -> %s\n", args[0],
			cache.Peek(args[0]).UnwrapOr(absent))

	case "del":
		fmt.Fprintf(w, "del %s -> %v\n", args[0],
			cache.Remove(args[0]))

	case "keys":
		fmt.Fprintf(w, "keys -> [%s]\n",
			strings.Join(cache.Keys(), " "))

	case "stats":
		s := cache.Stats()
		fmt.Fprintf(w, "stats -> hits=%d misses=%d evictions=%d "+
			"size=%d/%d\n", s.Hits, s.Misses, s.Evictions, s.Len,
			s.Capacity)
	}

	return nil
}

// absent is printed for keys that are not cached.
const absent = "<absent>"

// renderCache prints the cached entries from least to most recently used.
func renderCache(w io.Writer, cache *lru.Cache[string, string]) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Cache contents (%d/%d)", cache.Len(), cache.Capacity())
	t.AppendHeader(table.Row{"#", "Key", "Value"})

	for i, key := range cache.Keys() {
		t.AppendRow(table.Row{
			i + 1, key, cache.Peek(key).UnwrapOr(absent),
		})
	}

	cache.IndexStats().WhenSome(func(idx hashindex.Stats) {
		t.AppendFooter(table.Row{
			"", "buckets", fmt.Sprintf("%d (load %.2f)",
				idx.Buckets, idx.Load),
		})
	})

	t.Render()
}
