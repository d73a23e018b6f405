package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	tailorStartedTotal   atomic.Uint64
	tailorCompletedTotal atomic.Uint64
	tailorFailedTotal    atomic.Uint64
	downloadsTotal       atomic.Uint64
	downloadsFailedTotal atomic.Uint64
	loginsTotal          atomic.Uint64

	tailorDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncTailorStarted increments the started counter.
func IncTailorStarted() {
	tailorStartedTotal.Add(1)
}

// IncTailorCompleted increments the completed counter.
func IncTailorCompleted() {
	tailorCompletedTotal.Add(1)
}

// IncTailorFailed increments the failed counter.
func IncTailorFailed() {
	tailorFailedTotal.Add(1)
}

// IncDownload records a finished artifact download.
func IncDownload() {
	downloadsTotal.Add(1)
}

// IncDownloadFailed records a failed artifact download.
func IncDownloadFailed() {
	downloadsFailedTotal.Add(1)
}

// IncLogin records a session marker being written.
func IncLogin() {
	loginsTotal.Add(1)
}

// ObserveTailorDurationMs records a tailor round trip in milliseconds.
func ObserveTailorDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	tailorDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "tailor_requests_started_total", "Total tailor requests sent to the backend", tailorStartedTotal.Load())
	writeCounter(&buf, "tailor_requests_completed_total", "Total tailor requests that produced results", tailorCompletedTotal.Load())
	writeCounter(&buf, "tailor_requests_failed_total", "Total tailor requests that failed", tailorFailedTotal.Load())
	writeCounter(&buf, "downloads_completed_total", "Total artifact downloads streamed", downloadsTotal.Load())
	writeCounter(&buf, "downloads_failed_total", "Total artifact downloads that failed", downloadsFailedTotal.Load())
	writeCounter(&buf, "logins_total", "Total session markers written", loginsTotal.Load())
	writeHistogram(&buf, "tailor_duration_ms", "Tailor round trip in milliseconds", tailorDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	// Observe already counts every bucket whose bound covers the value.
	for i, bound := range snap.buckets {
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), snap.counts[i])
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
