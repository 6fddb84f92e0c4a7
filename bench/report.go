package bench

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lightningnetwork/lnd/cachecore/hashindex"
	"github.com/lightningnetwork/lnd/cachecore/lru"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// Report is the outcome of a workload run.
type Report struct {
	// Workers is the number of goroutines that issued operations.
	Workers int

	// Reads is the number of Get operations.
	Reads int

	// Writes is the number of Set operations drawn by the workload.
	Writes int

	// Loads is the number of reads that missed and stored the key.
	Loads int

	// Started is when the run began, according to the runner's clock.
	Started time.Time

	// Elapsed is how long the run took.
	Elapsed time.Duration

	// Stats are the cache counters at the end of the run.
	Stats lru.Stats

	// IndexInfo holds the hash index statistics at the end of the run.
	IndexInfo fn.Option[hashindex.Stats]

	// RecentEvictions lists the last evicted keys, oldest first.
	RecentEvictions []string
}

// Ops returns the number of operations the workload drew.
func (r *Report) Ops() int {
	return r.Reads + r.Writes
}

// HitRatio returns the share of reads that found their key, or zero if
// there were no reads.
func (r *Report) HitRatio() float64 {
	lookups := r.Stats.Hits + r.Stats.Misses
	if lookups == 0 {
		return 0
	}

	return float64(r.Stats.Hits) / float64(lookups)
}

// Throughput returns the operations per second, or zero if the run took no
// measurable time.
func (r *Report) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}

	return float64(r.Ops()) / r.Elapsed.Seconds()
}

// Render writes the report as a table.
func (r *Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Cache workload")
	t.AppendHeader(table.Row{"Metric", "Value"})

	t.AppendRows([]table.Row{
		{"Workers", r.Workers},
		{"Operations", r.Ops()},
		{"Reads", r.Reads},
		{"Writes", r.Writes},
		{"Loads on miss", r.Loads},
		{"Elapsed", r.Elapsed},
		{"Ops/sec", fmt.Sprintf("%.0f", r.Throughput())},
	})
	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"Hits", r.Stats.Hits},
		{"Misses", r.Stats.Misses},
		{"Hit ratio", fmt.Sprintf("%.2f%%", r.HitRatio()*100)},
		{"Evictions", r.Stats.Evictions},
		{"Entries", fmt.Sprintf("%d/%d", r.Stats.Len,
			r.Stats.Capacity)},
	})

	r.IndexInfo.WhenSome(func(idx hashindex.Stats) {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Buckets", idx.Buckets},
			{"Rehashes", idx.Rehashes},
			{"Longest chain", idx.LongestChain},
			{"Load", fmt.Sprintf("%.3f", idx.Load)},
		})
	})

	if len(r.RecentEvictions) > 0 {
		t.AppendSeparator()
		t.AppendRow(table.Row{
			"Recent evictions",
			strings.Join(r.RecentEvictions, " "),
		})
	}

	t.Render()
}
