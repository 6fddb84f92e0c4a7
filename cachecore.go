package cachecore

import (
	"context"
	"fmt"
	"io"

	"github.com/lightningnetwork/lnd/cachecore/bench"
	"github.com/lightningnetwork/lnd/cachecore/build"
	"github.com/lightningnetwork/lnd/cachecore/cachecfg"
	"github.com/lightningnetwork/lnd/cachecore/monitoring"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// benchCacheName is the cache label the benchmark's metrics carry.
const benchCacheName = "bench"

// Main is the true entry point of lrubench. It sets up logging, runs the
// configured workload against a fresh cache and writes the report to out.
// If the Prometheus exporter is enabled, the cache metrics stay available
// after the run until ctx is cancelled.
func Main(ctx context.Context, cfg *cachecfg.Config, out io.Writer) error {
	var logRotator *build.RotatingLogWriter
	if logFile := cfg.LogFilePath(); logFile != "" {
		logRotator = build.NewRotatingLogWriter()
		err := logRotator.InitLogRotator(cfg.LogConfig.File, logFile)
		if err != nil {
			return fmt.Errorf("unable to initialize log rotator: "+
				"%w", err)
		}
		defer logRotator.Close()
	}

	logMgr := build.NewSubLoggerManager(
		build.NewDefaultLogHandler(cfg.LogConfig, logRotator),
	)
	SetupLoggers(logMgr)

	if err := build.ParseAndSetDebugLevels(
		cfg.DebugLevel, logMgr,
	); err != nil {

		return err
	}

	ccorLog.Infof("Version: %s commit=%s, build=%v, logging=%v, "+
		"debuglevel=%s", build.Version(), build.Commit,
		build.Deployment, build.LoggingType, cfg.DebugLevel)

	if build.IsDevBuild() {
		ccorLog.Warnf("Running a %v build, throughput figures are not "+
			"representative", build.Deployment)
	}

	runner, err := bench.NewRunner(bench.Config{
		Workload:    cfg.Workload,
		Capacity:    cfg.Capacity,
		IndexConfig: cfg.IndexConfig(),
	})
	if err != nil {
		return fmt.Errorf("unable to create runner: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Prometheus.Enabled() {
		registry := prometheus.NewRegistry()
		err := registry.Register(monitoring.NewCacheCollector(
			benchCacheName, runner.Cache(),
		))
		if err != nil {
			return fmt.Errorf("unable to register collector: %w",
				err)
		}

		g.Go(func() error {
			return monitoring.Serve(
				ctx, cfg.Prometheus.Listen, registry,
			)
		})
	}

	g.Go(func() error {
		report, err := runner.Run(ctx)
		if err != nil {
			return fmt.Errorf("workload failed: %w", err)
		}

		report.Render(out)

		if cfg.Prometheus.Enabled() {
			ccorLog.Infof("Workload done, serving metrics on %v "+
				"until interrupted", cfg.Prometheus.Listen)
		}

		return nil
	})

	return g.Wait()
}
