// Package perf keeps a bounded in-memory record of request and query timings
// for the /debug/perf page.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Label      string // "GET /02-use-state" or "SELECT kv_entry"
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries.
// When full, the oldest entries are overwritten.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	total   atomic.Int64
}

// NewCollector creates a collector holding at most size entries.
// PRE: none (size <= 0 uses DefaultRingSize)
// POST: returns an empty collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record appends an entry, overwriting the oldest one when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.total.Load()
}

// LabelStat aggregates the timings of one label.
type LabelStat struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MaxMs float64 `json:"max_ms"`
}

// Snapshot is the aggregated view computed on read.
type Snapshot struct {
	TotalRecorded  int64       `json:"total_recorded"`
	RequestP50Ms   float64     `json:"request_p50_ms"`
	RequestP95Ms   float64     `json:"request_p95_ms"`
	SlowestPaths   []LabelStat `json:"slowest_paths"`
	SlowestQueries []LabelStat `json:"slowest_queries"`
}

// Snapshot aggregates entries recorded at or after since.
// PRE: topN > 0
// POST: returns percentiles over requests and the topN labels by average duration
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []float64
	byKind := map[EntryKind]map[string]*LabelStat{
		KindRequest: {},
		KindQuery:   {},
	}
	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		if e.Kind == KindRequest {
			durations = append(durations, e.DurationMs)
		}
		stats := byKind[e.Kind]
		s, ok := stats[e.Label]
		if !ok {
			s = &LabelStat{Label: e.Label}
			stats[e.Label] = s
		}
		s.Count++
		s.AvgMs += e.DurationMs // summed here, divided in topByAvg
		s.MaxMs = math.Max(s.MaxMs, e.DurationMs)
	}

	snap := Snapshot{
		TotalRecorded:  c.TotalRecorded(),
		SlowestPaths:   topByAvg(byKind[KindRequest], topN),
		SlowestQueries: topByAvg(byKind[KindQuery], topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower, upper := int(math.Floor(idx)), int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func topByAvg(stats map[string]*LabelStat, n int) []LabelStat {
	list := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs /= float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Label < list[j].Label
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
