package engine

import (
	"strings"
	"testing"
)

func TestMetricsFormat(t *testing.T) {
	var m Metrics
	m.LLMCalls.Add(2)
	m.PagesCreated.Add(1)

	out := m.Format()
	if strings.Contains(out, "\n") {
		t.Fatalf("Format() must be one line, got %q", out)
	}
	fields := strings.Fields(out)
	if len(fields) != len(metricKeys) {
		t.Fatalf("got %d fields, want %d", len(fields), len(metricKeys))
	}
	if fields[0] != "transcript_requests=0" {
		t.Errorf("first field = %q", fields[0])
	}
	for _, want := range []string{"llm_calls=2", "pages_created=1", "cache_misses=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
}
