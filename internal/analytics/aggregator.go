package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/mkraev/ranked-search-platform/internal/engine/stats"
	"github.com/mkraev/ranked-search-platform/pkg/kafka"
)

// AggregatedStats is the snapshot served by the analytics API and
// persisted to PostgreSQL.
type AggregatedStats struct {
	TotalSearches    int64        `json:"total_searches"`
	ZeroResultCount  int64        `json:"zero_result_count"`
	NoResultWindow   int          `json:"no_result_window"`
	CacheHits        int64        `json:"cache_hits"`
	CacheMisses      int64        `json:"cache_misses"`
	AvgLatencyMs     float64      `json:"avg_latency_ms"`
	TopQueries       []QueryCount `json:"top_queries"`
	ZeroResultTop    []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute float64      `json:"queries_per_minute"`
	CapturedAt       time.Time    `json:"captured_at"`
}

// QueryCount pairs a query string with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes search events and maintains running statistics,
// including the 1440-tick no-result window over the event stream.
type Aggregator struct {
	mu                sync.Mutex
	totalSearches     int64
	zeroResults       int64
	cacheHits         int64
	cacheMisses       int64
	latencySumMs      int64
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	window            *stats.RequestWindow
	startTime         time.Time

	logger *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		window:            stats.NewRequestWindow(),
		startTime:         time.Now().UTC(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// Handler returns the kafka.MessageHandler feeding this aggregator.
func (a *Aggregator) Handler() kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			a.logger.Error("dropping undecodable analytics event", "error", err)
			return nil
		}
		a.apply(event)
		return nil
	}
}

func (a *Aggregator) apply(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalSearches++
	a.latencySumMs += event.LatencyMs
	a.queryCounts[event.Query]++
	if event.Results == 0 {
		a.zeroResults++
		a.zeroResultQueries[event.Query]++
	}
	if event.Results >= 0 {
		a.window.AddFindRequest(event.Results)
	}
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
}

// Stats returns a snapshot of the aggregated statistics.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := AggregatedStats{
		TotalSearches:   a.totalSearches,
		ZeroResultCount: a.zeroResults,
		NoResultWindow:  a.window.NoResultRequests(),
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		TopQueries:      topN(a.queryCounts, 10),
		ZeroResultTop:   topN(a.zeroResultQueries, 10),
		CapturedAt:      time.Now().UTC(),
	}
	if a.totalSearches > 0 {
		snap.AvgLatencyMs = float64(a.latencySumMs) / float64(a.totalSearches)
	}
	if minutes := time.Since(a.startTime).Minutes(); minutes > 0 {
		snap.QueriesPerMinute = float64(a.totalSearches) / minutes
	}
	return snap
}

func topN(counts map[string]int64, n int) []QueryCount {
	out := make([]QueryCount, 0, len(counts))
	for q, c := range counts {
		out = append(out, QueryCount{Query: q, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
