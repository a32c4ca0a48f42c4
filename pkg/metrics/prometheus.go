// Package metrics provides Prometheus metrics for the allocation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the allocation engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Planning metrics
	plansComputed       prometheus.Counter
	planEntries         prometheus.Histogram
	planFulfillmentPct  prometheus.Histogram
	planWarnings        prometheus.Counter
	planDuration        prometheus.Histogram
	unfulfillableReqs   prometheus.Counter
	overallocatedPlaced prometheus.Counter

	// Apply metrics
	plansApplied      prometheus.Counter
	allocationsUpsert prometheus.Counter
	applyFailures     prometheus.Counter
	applyDuration     prometheus.Histogram

	// Validation metrics
	validationsRun      prometheus.Counter
	validationConflicts *prometheus.CounterVec

	// Store metrics
	storeQueryLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pmprg",
		subsystem:        "allocation",
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
	auto := promauto.With(m.registry)

	m.plansComputed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plans_computed_total",
		Help:      "Total number of allocation plans computed",
	})

	m.planEntries = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_entries",
		Help:      "Number of entries per computed plan",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	m.planFulfillmentPct = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_fulfillment_percentage",
		Help:      "Fulfillment percentage per computed plan",
		Buckets:   []float64{0, 10, 25, 50, 75, 90, 99, 100},
	})

	m.planWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_warnings_total",
		Help:      "Total number of warnings emitted by plans",
	})

	m.planDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plan_duration_milliseconds",
		Help:      "Time to compute an allocation plan in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.unfulfillableReqs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unfulfillable_requirements_total",
		Help:      "Total number of skill requirements with no viable match",
	})

	m.overallocatedPlaced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overallocated_entries_total",
		Help:      "Total number of plan entries flagged as overallocated",
	})

	m.plansApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plans_applied_total",
		Help:      "Total number of plans persisted to the store",
	})

	m.allocationsUpsert = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocations_upserted_total",
		Help:      "Total number of allocation rows inserted or updated",
	})

	m.applyFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "apply_failures_total",
		Help:      "Total number of plan applies rolled back",
	})

	m.applyDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "apply_duration_milliseconds",
		Help:      "Time to apply a plan in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.validationsRun = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validations_total",
		Help:      "Total number of capacity validations run",
	})

	m.validationConflicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_conflicts_total",
		Help:      "Capacity conflicts detected, by type and severity",
	}, []string{"type", "severity"})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordPlanComputed records a completed planning pass.
func RecordPlanComputed(entries int, fulfillmentPct float64, durationMs float64) {
	globalManager.plansComputed.Inc()
	globalManager.planEntries.Observe(float64(entries))
	globalManager.planFulfillmentPct.Observe(fulfillmentPct)
	globalManager.planDuration.Observe(durationMs)
}

// RecordPlanWarnings adds to the plan warning counter.
func RecordPlanWarnings(count int) {
	globalManager.planWarnings.Add(float64(count))
}

// RecordUnfulfillableRequirement increments the unfulfillable requirement counter.
func RecordUnfulfillableRequirement() {
	globalManager.unfulfillableReqs.Inc()
}

// RecordOverallocatedEntries adds to the overallocated entry counter.
func RecordOverallocatedEntries(count int) {
	globalManager.overallocatedPlaced.Add(float64(count))
}

// RecordPlanApplied records a successful apply of n allocation rows.
func RecordPlanApplied(rows int, durationMs float64) {
	globalManager.plansApplied.Inc()
	globalManager.allocationsUpsert.Add(float64(rows))
	globalManager.applyDuration.Observe(durationMs)
}

// RecordApplyFailure increments the apply failure counter.
func RecordApplyFailure() {
	globalManager.applyFailures.Inc()
}

// RecordValidationRun increments the validation counter.
func RecordValidationRun() {
	globalManager.validationsRun.Inc()
}

// RecordValidationConflict records a detected conflict by type and severity.
func RecordValidationConflict(conflictType, severity string) {
	globalManager.validationConflicts.WithLabelValues(conflictType, severity).Inc()
}

// RecordStoreQueryLatency records store query latency in milliseconds.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
