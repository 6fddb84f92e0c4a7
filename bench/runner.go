package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/lightningnetwork/lnd/cachecore/cachecfg"
	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/cachecore/lnutils"
	"github.com/lightningnetwork/lnd/cachecore/lru"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/queue"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRecentEvictions is the number of evicted keys a report keeps
	// when the config leaves it unset.
	DefaultRecentEvictions = 10

	// zipfS and zipfV shape the key popularity: a few keys are hot and a
	// long tail is rarely touched.
	zipfS = 1.1
	zipfV = 1

	// ctxCheckInterval is how many operations a worker runs between
	// checks for cancellation.
	ctxCheckInterval = 1024
)

// errNoWorkload is returned when a runner is created without a workload.
var errNoWorkload = errors.New("no workload configured")

// Config holds everything needed to create a Runner.
type Config struct {
	// Workload describes the operations to run.
	Workload *cachecfg.Workload

	// Capacity is the capacity of the cache under test.
	Capacity int

	// IndexConfig configures the cache's hash index. A nil IndexConfig
	// selects the defaults.
	IndexConfig *hashindex.Config[string]

	// Clock is used to time the run. Defaults to the wall clock.
	Clock clock.Clock

	// RecentEvictions is the number of most recently evicted keys kept for
	// the report.
	RecentEvictions int
}

// Runner drives a synthetic workload against a shared cache from several
// goroutines.
type Runner struct {
	cfg Config

	cache *lru.SyncCache[string, uint64]

	// recent holds the last evicted keys. It is only written from the
	// eviction callback, which runs under the cache's lock.
	recent *queue.CircularBuffer
}

// NewRunner creates a runner and the empty cache it drives.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Workload == nil {
		return nil, errNoWorkload
	}
	if err := cfg.Workload.Validate(); err != nil {
		return nil, err
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.RecentEvictions == 0 {
		cfg.RecentEvictions = DefaultRecentEvictions
	}

	recent, err := queue.NewCircularBuffer(cfg.RecentEvictions)
	if err != nil {
		return nil, fmt.Errorf("unable to create eviction log: %w",
			err)
	}

	r := &Runner{
		cfg:    cfg,
		recent: recent,
	}

	r.cache, err = lru.NewSyncWithConfig(lru.Config[string, uint64]{
		Capacity:    cfg.Capacity,
		IndexConfig: cfg.IndexConfig,
		OnEvict:     r.recordEviction,
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Cache returns the cache under test, for instance to export its metrics
// while the workload runs.
func (r *Runner) Cache() *lru.SyncCache[string, uint64] {
	return r.cache
}

// recordEviction keeps the evicted key in the eviction log.
func (r *Runner) recordEviction(key string, _ uint64) {
	r.recent.Add(key)
}

// opCounts tallies the operations of one worker.
type opCounts struct {
	reads  int
	writes int
	loads  int
}

// Run executes the workload and returns its report. Ops are split evenly
// between the workers. A read that misses loads the key into the cache, as a
// read-through cache would.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	w := r.cfg.Workload

	log.Infof("Running %d ops over %d keys with %d workers, read "+
		"ratio %v", w.Ops, w.KeySpace, w.Workers, w.ReadRatio)

	start := r.cfg.Clock.Now()

	counts := make([]opCounts, w.Workers)
	perWorker, rem := w.Ops/w.Workers, w.Ops%w.Workers

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.Workers; i++ {
		n := perWorker
		if i < rem {
			n++
		}

		g.Go(func() error {
			return r.work(ctx, i, n, &counts[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Workers:   w.Workers,
		Started:   start,
		Elapsed:   r.cfg.Clock.Now().Sub(start),
		Stats:     r.cache.Stats(),
		IndexInfo: r.cache.IndexStats(),
	}
	for _, c := range counts {
		report.Reads += c.reads
		report.Writes += c.writes
		report.Loads += c.loads
	}

	// The eviction log is only safe to read under the cache's lock. All
	// workers are done, so nothing else holds it.
	report.RecentEvictions = lnutils.Map(
		r.recent.List(), func(item any) string {
			return item.(string)
		},
	)

	log.DebugS(ctx, "Workload finished", "elapsed", report.Elapsed,
		"evictions", report.Stats.Evictions,
		lnutils.LogKeys("recent_evictions", report.RecentEvictions, 5))

	return report, nil
}

// work runs n operations against the cache from a single goroutine.
func (r *Runner) work(ctx context.Context, worker, n int,
	counts *opCounts) error {

	w := r.cfg.Workload
	rng := rand.New(rand.NewPCG(w.Seed, uint64(worker)))

	nextKey := func() uint64 {
		return 0
	}
	if w.KeySpace > 1 {
		zipf := rand.NewZipf(rng, zipfS, zipfV, w.KeySpace-1)
		nextKey = zipf.Uint64
	}

	for i := 0; i < n; i++ {
		if i%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		key := KeyName(nextKey())
		if rng.Float64() < w.ReadRatio {
			counts.reads++
			if r.cache.Get(key).IsNone() {
				r.cache.Set(key, uint64(i))
				counts.loads++
			}

			continue
		}

		counts.writes++
		r.cache.Set(key, uint64(i))
	}

	return nil
}

// KeyName returns the cache key used for the i-th key of the key space.
func KeyName(i uint64) string {
	return "key-" + strconv.FormatUint(i, 10)
}
