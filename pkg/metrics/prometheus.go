// Package metrics provides Prometheus metrics for recruitment analytics runs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages observed by the stage duration histogram.
const (
	StageIngest      = "ingest"
	StageDedupe      = "dedupe"
	StagePercentile  = "percentile"
	StageScoring     = "scoring"
	StageLong        = "percentile_long"
	StageComparables = "comparables"
	StageShortlist   = "shortlist"
	StagePersist     = "persist"
	StageExport      = "export"
)

var stages = map[string]bool{ //nolint:gochecknoglobals // fixed stage set
	StageIngest: true, StageDedupe: true, StagePercentile: true, StageScoring: true, StageLong: true,
	StageComparables: true, StageShortlist: true, StagePersist: true, StageExport: true,
}

// Manager owns every collector for a batch run and the read API.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Run metrics
	runsTotal     *prometheus.CounterVec
	rowsIngested  prometheus.Counter
	rowsDuplicate prometheus.Counter
	stageDuration *prometheus.HistogramVec

	// Per-role metrics
	rolePool         *prometheus.GaugeVec
	roleScored       *prometheus.GaugeVec
	roleSkipped      *prometheus.CounterVec
	roleDegraded     *prometheus.CounterVec
	comparablesEdges *prometheus.CounterVec
	shortlistEntries *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scout",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(m.counterOpts("runs_total", "Pipeline runs by outcome"), []string{"outcome"})
	m.rowsIngested = auto.NewCounter(m.counterOpts("rows_ingested_total", "Metric rows read from the input table"))
	m.rowsDuplicate = auto.NewCounter(m.counterOpts("rows_duplicate_total", "Input rows dropped for repeating a grain key"))
	m.stageDuration = auto.NewHistogramVec(m.histogramOpts("stage_duration_seconds", "Pipeline stage duration in seconds"), []string{"stage"})

	m.rolePool = auto.NewGaugeVec(m.gaugeOpts("role_eligible_rows", "Rows passing a role's eligibility gates in the last run"), []string{"role"})
	m.roleScored = auto.NewGaugeVec(m.gaugeOpts("role_scored_rows", "Rows with a non-null role score in the last run"), []string{"role"})
	m.roleSkipped = auto.NewCounterVec(m.counterOpts("role_skipped_features_total", "Weight features skipped for a missing percentile column"), []string{"role"})
	m.roleDegraded = auto.NewCounterVec(m.counterOpts("role_degraded_total", "Roles left with no usable weight"), []string{"role"})
	m.comparablesEdges = auto.NewCounterVec(m.counterOpts("comparables_edges_total", "Comparable edges emitted"), []string{"role"})
	m.shortlistEntries = auto.NewCounterVec(m.counterOpts("shortlist_entries_total", "Shortlist entries emitted"), []string{"role"})

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
}

// RecordRun counts a finished run; outcome is "ok" or "error".
func RecordRun(outcome string) {
	globalManager.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordRowsIngested adds n to the ingested row counter.
func RecordRowsIngested(n int) {
	globalManager.rowsIngested.Add(float64(n))
}

// RecordRowsDuplicate adds n to the duplicate row counter.
func RecordRowsDuplicate(n int) {
	globalManager.rowsDuplicate.Add(float64(n))
}

// RecordStageDuration observes a stage duration in seconds.
func RecordStageDuration(stage string, seconds float64) error {
	if !stages[stage] {
		return fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
	return nil
}

// UpdateRolePool sets the eligible and scored row gauges for role.
func UpdateRolePool(role string, eligible, scored int) {
	globalManager.rolePool.WithLabelValues(role).Set(float64(eligible))
	globalManager.roleScored.WithLabelValues(role).Set(float64(scored))
}

// RecordRoleSkipped adds n skipped weight features for role.
func RecordRoleSkipped(role string, n int) {
	globalManager.roleSkipped.WithLabelValues(role).Add(float64(n))
}

// RecordRoleDegraded counts a role scored with no usable weight.
func RecordRoleDegraded(role string) {
	globalManager.roleDegraded.WithLabelValues(role).Inc()
}

// RecordComparables adds n comparable edges for role.
func RecordComparables(role string, n int) {
	globalManager.comparablesEdges.WithLabelValues(role).Add(float64(n))
}

// RecordShortlist adds n shortlist entries for role.
func RecordShortlist(role string, n int) {
	globalManager.shortlistEntries.WithLabelValues(role).Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
