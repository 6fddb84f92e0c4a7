package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli"
)

// scenario is a named trace run against a cache of fixed capacity.
type scenario struct {
	capacity    int
	description string
	trace       string
}

// scenarios are the built-in walk-throughs of the eviction policy.
var scenarios = map[string]scenario{
	"fill": {
		capacity:    3,
		description: "inserting one key past capacity evicts the first",
		trace: `
set k1 v1
set k2 v2
set k3 v3
set k4 v4
get k1
get k4
keys`,
	},
	"refresh-on-get": {
		capacity:    3,
		description: "reading the oldest key protects it",
		trace: `
set k1 v1
set k2 v2
set k3 v3
get k1
set k4 v4
get k2
get k1
keys`,
	},
	"refresh-on-set": {
		capacity:    3,
		description: "updating a key counts as a use",
		trace: `
set k1 v1
set k2 v2
set k3 v3
set k1 v11
set k4 v4
get k2
get k1
stats`,
	},
	"remove": {
		capacity:    2,
		description: "a removed key frees its slot without an eviction",
		trace: `
set a 1
set b 2
del a
set c 3
get b
stats`,
	},
}

var scenarioCommand = cli.Command{
	Name:      "scenario",
	Category:  "Cache",
	Usage:     "Run one or all of the built-in eviction scenarios.",
	ArgsUsage: "[name]",
	Description: `
	Run a built-in trace against a fresh cache, print the result of every
	operation and the final cache contents. Without a name, every scenario
	is run. Use --list to show the available scenarios.
	`,
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "list",
			Usage: "list the scenarios instead of running them",
		},
	},
	Action: runScenarios,
}

func runScenarios(ctx *cli.Context) error {
	names := scenarioNames()

	if ctx.Bool("list") {
		for _, name := range names {
			fmt.Printf("%-16s %s\n", name,
				scenarios[name].description)
		}

		return nil
	}

	if ctx.NArg() == 1 {
		names = []string{ctx.Args().First()}
	}

	for _, name := range names {
		if err := runScenario(ctx, os.Stdout, name); err != nil {
			return err
		}
	}

	return nil
}

// runScenario replays the named scenario and prints the final cache.
func runScenario(ctx *cli.Context, w io.Writer, name string) error {
	s, ok := scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q, available: %s", name,
			strings.Join(scenarioNames(), ", "))
	}

	cache, err := newCacheWithCapacity(ctx, s.capacity)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "== %s (capacity %d): %s\n", name, s.capacity,
		s.description)

	if err := replay(strings.NewReader(s.trace), w, cache); err != nil {
		return fmt.Errorf("scenario %s: %w", name, err)
	}
	renderCache(w, cache)

	return nil
}

// scenarioNames returns the scenario names in a stable order.
func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
