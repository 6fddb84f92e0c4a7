package monitoring

import (
	"context"

	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/cachecore/lnutils"
	"github.com/lightningnetwork/lnd/cachecore/lru"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every exported metric.
const namespace = "cachecore"

// StatsSource is anything that can report cache statistics, such as
// lru.Cache or lru.SyncCache. The collector calls it on every scrape, so a
// source shared with other goroutines must be safe for concurrent use.
type StatsSource interface {
	// Stats returns the cache counters.
	Stats() lru.Stats

	// IndexStats returns the statistics of the cache's index, if it keeps
	// any.
	IndexStats() fn.Option[hashindex.Stats]
}

// CacheCollector exports the statistics of a single cache as Prometheus
// metrics, labelled with the cache's name.
type CacheCollector struct {
	name   string
	source StatsSource

	hitsDesc      *prometheus.Desc
	missesDesc    *prometheus.Desc
	evictionsDesc *prometheus.Desc
	entriesDesc   *prometheus.Desc
	capacityDesc  *prometheus.Desc

	bucketsDesc  *prometheus.Desc
	rehashesDesc *prometheus.Desc
	loadDesc     *prometheus.Desc
}

// A compile time check to ensure CacheCollector implements the
// prometheus.Collector interface.
var _ prometheus.Collector = (*CacheCollector)(nil)

// NewCacheCollector returns a collector for the cache known under name.
func NewCacheCollector(name string, source StatsSource) *CacheCollector {
	labels := prometheus.Labels{"cache": name}
	desc := func(subsystem, metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, metric),
			help, nil, labels,
		)
	}

	return &CacheCollector{
		name:   name,
		source: source,
		hitsDesc: desc(
			"cache", "hits_total",
			"Number of lookups that found their key.",
		),
		missesDesc: desc(
			"cache", "misses_total",
			"Number of lookups that did not find their key.",
		),
		evictionsDesc: desc(
			"cache", "evictions_total",
			"Number of entries evicted to make room for new keys.",
		),
		entriesDesc: desc(
			"cache", "entries",
			"Number of entries currently cached.",
		),
		capacityDesc: desc(
			"cache", "capacity",
			"Maximum number of entries the cache holds.",
		),
		bucketsDesc: desc(
			"index", "buckets",
			"Current bucket count of the cache's hash index.",
		),
		rehashesDesc: desc(
			"index", "rehashes_total",
			"Number of times the hash index rebuilt its buckets.",
		),
		loadDesc: desc(
			"index", "load",
			"Entries per bucket of the hash index.",
		),
	}
}

// Describe sends the descriptors of every metric the collector may export.
//
// NOTE: Part of the prometheus.Collector interface.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hitsDesc
	ch <- c.missesDesc
	ch <- c.evictionsDesc
	ch <- c.entriesDesc
	ch <- c.capacityDesc
	ch <- c.bucketsDesc
	ch <- c.rehashesDesc
	ch <- c.loadDesc
}

// Collect reads the current statistics from the source and sends them as
// metrics. Index metrics are left out for indexes that keep no statistics.
//
// NOTE: Part of the prometheus.Collector interface.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	ch <- prometheus.MustNewConstMetric(
		c.hitsDesc, prometheus.CounterValue, float64(stats.Hits),
	)
	ch <- prometheus.MustNewConstMetric(
		c.missesDesc, prometheus.CounterValue, float64(stats.Misses),
	)
	ch <- prometheus.MustNewConstMetric(
		c.evictionsDesc, prometheus.CounterValue,
		float64(stats.Evictions),
	)
	ch <- prometheus.MustNewConstMetric(
		c.entriesDesc, prometheus.GaugeValue, float64(stats.Len),
	)
	ch <- prometheus.MustNewConstMetric(
		c.capacityDesc, prometheus.GaugeValue, float64(stats.Capacity),
	)

	c.source.IndexStats().WhenSome(func(idx hashindex.Stats) {
		ch <- prometheus.MustNewConstMetric(
			c.bucketsDesc, prometheus.GaugeValue,
			float64(idx.Buckets),
		)
		ch <- prometheus.MustNewConstMetric(
			c.rehashesDesc, prometheus.CounterValue,
			float64(idx.Rehashes),
		)
		ch <- prometheus.MustNewConstMetric(
			c.loadDesc, prometheus.GaugeValue, idx.Load,
		)

		log.TraceS(context.Background(), "Collected index stats",
			"cache", c.name, "buckets", idx.Buckets,
			lnutils.LogLoad("load", idx.Load))
	})
}
