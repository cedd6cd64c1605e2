package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests     atomic.Int64
	IndexQueries       atomic.Int64
	IndexErrors        atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	GeoFiltered        atomic.Int64
	ReviewedStripped   atomic.Int64
	ProtocolViolations atomic.Int64
	TurnsCompleted     atomic.Int64
}

// Incrementors for sub-packages.
func IncrSearchRequests()     { metrics.SearchRequests.Add(1) }
func IncrIndexQueries()       { metrics.IndexQueries.Add(1) }
func IncrIndexErrors()        { metrics.IndexErrors.Add(1) }
func IncrLLMCalls()           { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()          { metrics.LLMErrors.Add(1) }
func IncrProtocolViolations() { metrics.ProtocolViolations.Add(1) }
func IncrTurnsCompleted()     { metrics.TurnsCompleted.Add(1) }

// AddGeoFiltered records how many candidate jobs the isochrone filter removed.
func AddGeoFiltered(n int) { metrics.GeoFiltered.Add(int64(n)) }

// AddReviewedStripped records how many already-reviewed jobs were excluded.
func AddReviewedStripped(n int) { metrics.ReviewedStripped.Add(int64(n)) }

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":     metrics.SearchRequests.Load(),
		"index_queries":       metrics.IndexQueries.Load(),
		"index_errors":        metrics.IndexErrors.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"geo_filtered":        metrics.GeoFiltered.Load(),
		"reviewed_stripped":   metrics.ReviewedStripped.Load(),
		"protocol_violations": metrics.ProtocolViolations.Load(),
		"turns_completed":     metrics.TurnsCompleted.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "index_queries", "index_errors",
		"llm_calls", "llm_errors",
		"geo_filtered", "reviewed_stripped",
		"protocol_violations", "turns_completed",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
