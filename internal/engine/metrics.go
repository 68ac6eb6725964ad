package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters for one run.
type Metrics struct {
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	PagesCreated       atomic.Int64
	PagesFailed        atomic.Int64
	CacheHits          atomic.Int64
	CacheMisses        atomic.Int64
}

var metricKeys = []string{
	"transcript_requests", "transcript_errors",
	"llm_calls", "llm_errors",
	"pages_created", "pages_failed",
	"cache_hits", "cache_misses",
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"transcript_requests": m.TranscriptRequests.Load(),
		"transcript_errors":   m.TranscriptErrors.Load(),
		"llm_calls":           m.LLMCalls.Load(),
		"llm_errors":          m.LLMErrors.Load(),
		"pages_created":       m.PagesCreated.Load(),
		"pages_failed":        m.PagesFailed.Load(),
		"cache_hits":          m.CacheHits.Load(),
		"cache_misses":        m.CacheMisses.Load(),
	}
}

// Format returns metrics as space-separated name=value pairs in a fixed order.
func (m *Metrics) Format() string {
	s := m.Snapshot()
	pairs := make([]string, len(metricKeys))
	for i, k := range metricKeys {
		pairs[i] = fmt.Sprintf("%s=%d", k, s[k])
	}
	return strings.Join(pairs, " ")
}
