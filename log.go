package cachecore

import (
	"github.com/btcsuite/btclog/v2"
	"github.com/lightningnetwork/lnd/cachecore/bench"
	"github.com/lightningnetwork/lnd/cachecore/build"
	"github.com/lightningnetwork/lnd/cachecore/cachecfg"
	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/cachecore/lru"
	"github.com/lightningnetwork/lnd/cachecore/monitoring"
)

// Subsystem is the logging code of the top level package.
const Subsystem = "CCOR"

// ccorLog is the logger of the top level package. It is replaced by
// SetupLoggers.
var ccorLog = build.NewSubLogger(Subsystem, nil)

// SetupLoggers initializes all package-global logger variables.
func SetupLoggers(root *build.SubLoggerManager) {
	genLogger := root.GenSubLogger

	ccorLog = build.NewSubLogger(Subsystem, genLogger)

	AddSubLogger(root, hashindex.Subsystem, hashindex.UseLogger)
	AddSubLogger(root, lru.Subsystem, lru.UseLogger)
	AddSubLogger(root, cachecfg.Subsystem, cachecfg.UseLogger)
	AddSubLogger(root, monitoring.Subsystem, monitoring.UseLogger)
	AddSubLogger(root, bench.Subsystem, bench.UseLogger)
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.SubLoggerManager, subsystem string,
	useLoggers ...func(btclog.Logger)) {

	// Create and register just a single logger to prevent them from
	// overwriting each other internally.
	logger := build.NewSubLogger(subsystem, root.GenSubLogger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}
