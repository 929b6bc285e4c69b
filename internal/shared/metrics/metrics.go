package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysisStartedTotal   atomic.Uint64
	analysisCompletedTotal atomic.Uint64
	analysisFailedTotal    atomic.Uint64

	failoverTotal          atomic.Uint64
	repairTotal            atomic.Uint64
	trendPublishFailures   atomic.Uint64

	providerAttempts = newLabeledCounter()

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() {
	analysisStartedTotal.Add(1)
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() {
	analysisCompletedTotal.Add(1)
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysisFailedTotal.Add(1)
}

// IncProviderAttempt counts one provider call by provider and outcome ("ok" or a failure kind).
func IncProviderAttempt(provider, outcome string) {
	providerAttempts.Inc(provider, outcome)
}

// IncFailover counts a switch to the next configured provider.
func IncFailover() {
	failoverTotal.Add(1)
}

// AddRepairs counts field substitutions made while reconciling a result.
func AddRepairs(n int) {
	if n > 0 {
		repairTotal.Add(uint64(n))
	}
}

// IncTrendPublishFailed counts trend points that could not be stored or published.
func IncTrendPublishFailed() {
	trendPublishFailures.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
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
	writeCounter(&buf, "analysis_started_total", "Total analyses started", analysisStartedTotal.Load())
	writeCounter(&buf, "analysis_completed_total", "Total analyses completed", analysisCompletedTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Total analyses failed", analysisFailedTotal.Load())
	writeCounter(&buf, "provider_failover_total", "Total switches to a fallback provider", failoverTotal.Load())
	writeCounter(&buf, "analysis_repairs_total", "Total result fields repaired with defaults", repairTotal.Load())
	writeCounter(&buf, "trend_publish_failed_total", "Total trend points dropped", trendPublishFailures.Load())
	writeLabeledCounter(&buf, "provider_attempts_total", "Provider calls by outcome", providerAttempts.Snapshot())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type labelPair struct {
	provider string
	outcome  string
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[labelPair]uint64
}

type labeledValue struct {
	labels labelPair
	value  uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[labelPair]uint64)}
}

func (c *labeledCounter) Inc(provider, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[labelPair{provider: provider, outcome: outcome}]++
}

func (c *labeledCounter) Snapshot() []labeledValue {
	c.mu.Lock()
	out := make([]labeledValue, 0, len(c.values))
	for k, v := range c.values {
		out = append(out, labeledValue{labels: k, value: v})
	}
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].labels.provider != out[j].labels.provider {
			return out[i].labels.provider < out[j].labels.provider
		}
		return out[i].labels.outcome < out[j].labels.outcome
	})
	return out
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

func writeLabeledCounter(buf *bytes.Buffer, name, help string, values []labeledValue) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	for _, v := range values {
		fmt.Fprintf(buf, "%s{provider=%q,outcome=%q} %d\n", name, v.labels.provider, v.labels.outcome, v.value)
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	// Observe already counts a value in every bucket whose bound it fits under.
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
