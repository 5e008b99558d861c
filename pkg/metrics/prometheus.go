package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds every Prometheus collector of the matchboard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Dataset metrics
	attendeesTotal       prometheus.Gauge
	matchesTotal         prometheus.Gauge
	outcomesTotal        prometheus.Gauge
	datasetRegenerations prometheus.Counter
	generationLatency    prometheus.Histogram
	matchAdvances        *prometheus.CounterVec

	// Funnel metrics
	funnelStage    *prometheus.GaugeVec
	conversionRate *prometheus.GaugeVec

	// Advisory metrics
	advisoryCalls      *prometheus.CounterVec
	advisoryFallbacks  *prometheus.CounterVec
	advisoryLatency    *prometheus.HistogramVec
	advisorySuperseded *prometheus.CounterVec

	// Live updates
	sseSubscribers prometheus.Gauge
	sseEvents      *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchboard",
		subsystem:        "organizer",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	// Dataset
	m.attendeesTotal = m.gauge("attendees_total", "Attendees in the current dataset")
	m.matchesTotal = m.gauge("matches_total", "Matches in the current dataset")
	m.outcomesTotal = m.gauge("outcomes_total", "Outcomes in the current dataset")
	m.datasetRegenerations = m.counter("dataset_generations_total", "Datasets generated since start")
	m.generationLatency = m.histogram("dataset_generation_milliseconds",
		"Time spent generating a dataset in milliseconds", m.histogramBuckets)
	m.matchAdvances = m.counterVec("match_advances_total", "Matches moved forward by target status", "status")

	// Funnel
	m.funnelStage = m.gaugeVec("funnel_stage_count", "Matches that reached each funnel stage", "stage")
	m.conversionRate = m.gaugeVec("conversion_rate_percent", "Stage-to-stage conversion percentages", "rate")

	// Advisory
	m.advisoryCalls = m.counterVec("advisory_calls_total", "Advisory operations invoked", "operation")
	m.advisoryFallbacks = m.counterVec("advisory_fallbacks_total",
		"Advisory operations answered with the deterministic fallback", "operation", "reason")
	m.advisoryLatency = m.histogramVec("advisory_latency_milliseconds",
		"Latency of external advisory calls in milliseconds", "operation")
	m.advisorySuperseded = m.counterVec("advisory_superseded_total",
		"Advisory results discarded because a newer request took the slot", "operation")

	// Live updates
	m.sseSubscribers = m.gauge("sse_subscribers", "Connected server-sent event subscribers")
	m.sseEvents = m.counterVec("sse_events_total", "Server-sent events published by type", "type")

	// HTTP
	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	// Errors
	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	// System
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Dataset Metrics Functions.

// UpdateDatasetSize sets the attendee, match and outcome gauges.
func UpdateDatasetSize(attendees, matches, outcomes int) {
	globalManager.attendeesTotal.Set(float64(attendees))
	globalManager.matchesTotal.Set(float64(matches))
	globalManager.outcomesTotal.Set(float64(outcomes))
}

// RecordDatasetGenerated counts a generation run and its latency.
func RecordDatasetGenerated(latencyMs float64) {
	globalManager.datasetRegenerations.Inc()
	globalManager.generationLatency.Observe(latencyMs)
}

// RecordMatchAdvanced counts a match moved to status.
func RecordMatchAdvanced(status string) {
	globalManager.matchAdvances.WithLabelValues(status).Inc()
}

// Funnel Metrics Functions.

// UpdateFunnelStage sets the count of matches that reached stage.
func UpdateFunnelStage(stage string, count int) {
	globalManager.funnelStage.WithLabelValues(stage).Set(float64(count))
}

// UpdateConversionRate sets a conversion percentage.
func UpdateConversionRate(rate string, percent int) {
	globalManager.conversionRate.WithLabelValues(rate).Set(float64(percent))
}

// Advisory Metrics Functions.

// RecordAdvisoryCall counts an advisory operation.
func RecordAdvisoryCall(operation string) {
	globalManager.advisoryCalls.WithLabelValues(operation).Inc()
}

// RecordAdvisoryFallback counts a fallback answer and why it was used.
func RecordAdvisoryFallback(operation, reason string) {
	globalManager.advisoryFallbacks.WithLabelValues(operation, reason).Inc()
}

// RecordAdvisoryLatency records the latency of one external call.
func RecordAdvisoryLatency(operation string, latencyMs float64) {
	globalManager.advisoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordAdvisorySuperseded counts a discarded stale result.
func RecordAdvisorySuperseded(operation string) {
	globalManager.advisorySuperseded.WithLabelValues(operation).Inc()
}

// Live Update Metrics Functions.

// UpdateSSESubscribers sets the number of connected subscribers.
func UpdateSSESubscribers(count int) {
	globalManager.sseSubscribers.Set(float64(count))
}

// RecordSSEEvent counts a published event.
func RecordSSEEvent(eventType string) {
	globalManager.sseEvents.WithLabelValues(eventType).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
