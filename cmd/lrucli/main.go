package main

import (
	"fmt"
	"os"

	"github.com/lightningnetwork/lnd/cachecore/build"
	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/cachecore/lru"
	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[lrucli] %v\n", err)
	os.Exit(1)
}

// newCache builds an empty string cache from the global flags.
func newCache(ctx *cli.Context) (*lru.Cache[string, string], error) {
	return newCacheWithCapacity(ctx, ctx.GlobalInt("capacity"))
}

// newCacheWithCapacity builds an empty string cache of the given capacity,
// taking the index tunables from the global flags.
func newCacheWithCapacity(ctx *cli.Context,
	capacity int) (*lru.Cache[string, string], error) {

	return lru.NewWithConfig(lru.Config[string, string]{
		Capacity: capacity,
		IndexConfig: &hashindex.Config[string]{
			InitialBuckets: ctx.GlobalInt("initialbuckets"),
			LoadFactor:     ctx.GlobalFloat64("loadfactor"),
			Hasher:         hashindex.StringHasher[string]{},
		},
	})
}

func main() {
	app := cli.NewApp()
	app.Name = "lrucli"
	app.Version = build.Version() + " commit=" + build.Commit
	app.Usage = "exercise a least recently used cache from the shell"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "capacity, c",
			Value: lru.DefaultCapacity,
			Usage: "The maximum number of entries the cache holds.",
		},
		cli.IntFlag{
			Name: "initialbuckets",
			Usage: "The initial bucket count of the hash index, " +
				"0 selects the default.",
		},
		cli.Float64Flag{
			Name: "loadfactor",
			Usage: "The entries per bucket at which the hash " +
				"index doubles, 0 selects the default.",
		},
	}
	app.Commands = []cli.Command{
		replayCommand,
		scenarioCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
