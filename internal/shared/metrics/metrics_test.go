package metrics

import (
	"strings"
	"testing"
)

func TestRenderIncludesTailorSeries(t *testing.T) {
	IncTailorStarted()
	IncTailorFailed()
	ObserveTailorDurationMs(1200)

	out := Render()
	for _, want := range []string{
		"# TYPE tailor_requests_started_total counter",
		"tailor_requests_failed_total",
		"downloads_completed_total",
		`tailor_duration_ms_bucket{le="2000"}`,
		`tailor_duration_ms_bucket{le="+Inf"}`,
		"tailor_duration_ms_count",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 2 {
		t.Fatalf("unexpected bucket counts %v", snap.counts)
	}
	if snap.sum != 555 {
		t.Fatalf("expected sum 555, got %v", snap.sum)
	}
}
