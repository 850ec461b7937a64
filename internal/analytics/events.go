// Package analytics collects search telemetry over Kafka and serves
// aggregated statistics, including the sliding no-result window.
package analytics

import "time"

// Event types on the analytics stream.
const (
	EventSearch = "search"
)

// SearchEvent describes one executed search.
type SearchEvent struct {
	Type      string    `json:"type"`
	Query     string    `json:"query"`
	Results   int       `json:"results"`
	CacheHit  bool      `json:"cache_hit"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}
