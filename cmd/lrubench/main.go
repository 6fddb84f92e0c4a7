package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flags "github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/cachecore"
	"github.com/lightningnetwork/lnd/cachecore/build"
	"github.com/lightningnetwork/lnd/cachecore/cachecfg"
)

func main() {
	// Load the configuration, and parse any command line options.
	loadedConfig, err := cachecfg.LoadConfig(os.Args[1:])
	if err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if loadedConfig.ShowVersion {
		fmt.Println("lrubench version", build.Version(),
			"commit="+build.Commit, "go="+build.GoVersion())
		os.Exit(0)
	}

	// Stop the workload and the exporter on interrupt.
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	err = cachecore.Main(ctx, loadedConfig, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
