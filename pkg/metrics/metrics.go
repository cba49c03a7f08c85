// Package metrics provides Prometheus metrics for the prode service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Standings scopes used as label values.
const (
	ScopeGlobal = "global"
	ScopePool   = "pool"
)

// Manager manages all Prometheus metrics for the prode service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core business metrics
	predictionsUpserted prometheus.Counter
	resultsRecorded     prometheus.Counter
	standingsRequests   *prometheus.CounterVec
	poolsCreated        prometheus.Counter
	poolsJoined         prometheus.Counter

	// Stored-record totals
	usersTotal       prometheus.Gauge
	matchesTotal     prometheus.Gauge
	predictionsTotal prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "prode",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.predictionsUpserted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_upserted_total",
		Help:      "Total number of prediction upserts accepted.",
	})
	m.resultsRecorded = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_recorded_total",
		Help:      "Total number of final scores recorded by admins.",
	})
	m.standingsRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "standings_requests_total",
		Help:      "Total number of standings computations by scope.",
	}, []string{"scope"})
	m.poolsCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pools_created_total",
		Help:      "Total number of pools created.",
	})
	m.poolsJoined = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pools_joined_total",
		Help:      "Total number of successful pool joins.",
	})

	m.usersTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "users_total",
		Help:      "Number of registered users.",
	})
	m.matchesTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_total",
		Help:      "Number of fixture matches.",
	})
	m.predictionsTotal = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Number of stored predictions.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines.",
	})
}

// Business metrics functions.

// RecordPredictionUpserted counts an accepted prediction upsert.
func RecordPredictionUpserted() { globalManager.predictionsUpserted.Inc() }

// RecordResultRecorded counts a final score entry.
func RecordResultRecorded() { globalManager.resultsRecorded.Inc() }

// RecordStandingsRequest counts a standings computation for a scope.
func RecordStandingsRequest(scope string) {
	globalManager.standingsRequests.WithLabelValues(scope).Inc()
}

// RecordPoolCreated counts a pool creation.
func RecordPoolCreated() { globalManager.poolsCreated.Inc() }

// RecordPoolJoined counts a successful pool join.
func RecordPoolJoined() { globalManager.poolsJoined.Inc() }

// UpdateTotals sets the stored-record gauges.
func UpdateTotals(users, matches, predictions int) {
	globalManager.usersTotal.Set(float64(users))
	globalManager.matchesTotal.Set(float64(matches))
	globalManager.predictionsTotal.Set(float64(predictions))
}

// HTTP metrics functions.

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// System metrics functions.

// UpdateSystemMemoryUsage sets the heap allocation gauge in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
