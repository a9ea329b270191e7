package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. Each instance owns its
// registry so tests and multiple servers in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	scoringRuns      *prometheus.CounterVec
	scoringDuration  prometheus.Histogram
	criterionPoints  *prometheus.HistogramVec
	externalCalls    *prometheus.CounterVec
	externalDuration *prometheus.HistogramVec
	embeddingCache   *prometheus.CounterVec
	rateLimitBlocks  prometheus.Counter
	rateLimitSource  *prometheus.CounterVec

	StartTime time.Time
}

// NewMetrics creates and registers all collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		scoringRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoring_runs_total",
			Help: "Transcript scoring runs by outcome",
		}, []string{"outcome"}),
		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoring_duration_seconds",
			Help:    "End-to-end scoring latency including provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		criterionPoints: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "criterion_points",
			Help:    "Points awarded per rubric criterion",
			Buckets: []float64{0, 5, 10, 15, 20, 30, 40, 50},
		}, []string{"criterion"}),
		externalCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "external_calls_total",
			Help: "Provider calls by service and outcome",
		}, []string{"service", "outcome"}),
		externalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "external_call_duration_seconds",
			Help:    "Provider call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		embeddingCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "embedding_cache_total",
			Help: "Embedding cache lookups by result",
		}, []string{"result"}),
		rateLimitBlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ratelimit_blocks_total",
			Help: "Requests rejected by the per-IP rate limiter",
		}),
		rateLimitSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_checks_total",
			Help: "Rate limit checks by backing store",
		}, []string{"store"}),
		StartTime: time.Now(),
	}

	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.scoringRuns, m.scoringDuration, m.criterionPoints,
		m.externalCalls, m.externalDuration,
		m.embeddingCache,
		m.rateLimitBlocks, m.rateLimitSource,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one served HTTP request
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordScoring records a scoring run. outcome is "ok", "invalid" or "error".
func (m *Metrics) RecordScoring(outcome string, duration time.Duration) {
	m.scoringRuns.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.scoringDuration.Observe(duration.Seconds())
	}
}

// RecordCriterion observes the points a criterion earned
func (m *Metrics) RecordCriterion(criterion string, points float64) {
	m.criterionPoints.WithLabelValues(criterion).Observe(points)
}

// RecordExternalCall records a provider call. outcome is "ok", "error" or "fallback".
func (m *Metrics) RecordExternalCall(service, outcome string, duration time.Duration) {
	m.externalCalls.WithLabelValues(service, outcome).Inc()
	m.externalDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// IncrementCacheHit increments embedding cache hits
func (m *Metrics) IncrementCacheHit() {
	m.embeddingCache.WithLabelValues("hit").Inc()
}

// IncrementCacheMiss increments embedding cache misses
func (m *Metrics) IncrementCacheMiss() {
	m.embeddingCache.WithLabelValues("miss").Inc()
}

// IncrementRateLimitBlock counts a rejected request
func (m *Metrics) IncrementRateLimitBlock() {
	m.rateLimitBlocks.Inc()
}

// IncrementRateLimitCheck counts a check served by "redis" or "memory"
func (m *Metrics) IncrementRateLimitCheck(store string) {
	m.rateLimitSource.WithLabelValues(store).Inc()
}

// GetStats returns a small summary for the health endpoint
func (m *Metrics) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"uptime_seconds": time.Since(m.StartTime).Seconds(),
		"start_time":     m.StartTime.Format(time.RFC3339),
	}
}

// RateLimitChecks exposes the check counter for one store
func (m *Metrics) RateLimitChecks(store string) prometheus.Counter {
	return m.rateLimitSource.WithLabelValues(store)
}

// RateLimitBlocks exposes the rejected-request counter
func (m *Metrics) RateLimitBlocks() prometheus.Counter {
	return m.rateLimitBlocks
}

// ExternalCalls exposes the provider call counter for one service and outcome
func (m *Metrics) ExternalCalls(service, outcome string) prometheus.Counter {
	return m.externalCalls.WithLabelValues(service, outcome)
}

// CacheLookups exposes the embedding cache counter for "hit" or "miss"
func (m *Metrics) CacheLookups(result string) prometheus.Counter {
	return m.embeddingCache.WithLabelValues(result)
}
