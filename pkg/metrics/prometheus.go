package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
	nsPerMs                = 1e6
)

// Buckets for the tasks-per-request histogram.
var taskCountBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // fixed buckets

// Manager manages all Prometheus metrics for the taskrank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Ranking
	analyses            *prometheus.CounterVec
	tasksScored         prometheus.Counter
	tasksPerRequest     prometheus.Histogram
	cyclesDetected      prometheus.Counter
	scoringLatency      prometheus.Histogram
	suggestionsReturned prometheus.Counter

	// Task archive
	storeUpserts prometheus.Counter
	storeErrors  prometheus.Counter
	storedTasks  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram

	lastNumGC uint32
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the global manager with opts on a fresh registry and
// returns that registry. It is not safe to call while metrics are being
// recorded or scraped; call it once at startup before handlers capture
// GetRegistry.
func Configure(opts ...Option) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)
	customRegistry = reg
	return reg
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "taskrank",
		subsystem:        "api",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
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
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics on the configured registry.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.analyses = auto.NewCounterVec(
		m.counterOpts("analyses_total", "Ranking requests completed, by operation and requested strategy"),
		[]string{"operation", "strategy"},
	)
	m.tasksScored = auto.NewCounter(m.counterOpts("tasks_scored_total", "Tasks scored across all requests"))
	m.tasksPerRequest = auto.NewHistogram(
		m.histogramOpts("tasks_per_request", "Number of tasks in one ranking request", taskCountBuckets),
	)
	m.cyclesDetected = auto.NewCounter(m.counterOpts("cycles_detected_total", "Dependency cycles reported"))
	m.scoringLatency = auto.NewHistogram(
		m.histogramOpts("scoring_latency_milliseconds", "Time to rank one task list in milliseconds", m.histogramBuckets),
	)
	m.suggestionsReturned = auto.NewCounter(m.counterOpts("suggestions_returned_total", "Suggestions returned to callers"))

	m.storeUpserts = auto.NewCounter(m.counterOpts("store_upserts_total", "Task records written to the archive"))
	m.storeErrors = auto.NewCounter(m.counterOpts("store_errors_total", "Failed archive operations"))
	m.storedTasks = auto.NewGauge(m.gaugeOpts("stored_tasks", "Task records currently in the archive"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Most recent GC pause in milliseconds", m.histogramBuckets),
	)
}

// RefreshInterval is how often the process should call UpdateSystemMetrics.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// RecordAnalysis records one completed analyze or suggest call.
func RecordAnalysis(operation, strategy string, tasks, cycles int, latency time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.analyses.WithLabelValues(operation, strategy).Inc()
	globalManager.tasksScored.Add(float64(tasks))
	globalManager.tasksPerRequest.Observe(float64(tasks))
	globalManager.cyclesDetected.Add(float64(cycles))
	globalManager.scoringLatency.Observe(float64(latency.Nanoseconds()) / nsPerMs)
}

// RecordSuggestions adds to the count of suggestions returned.
func RecordSuggestions(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.suggestionsReturned.Add(float64(n))
}

// RecordStoreUpserts adds to the count of archived records.
func RecordStoreUpserts(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeUpserts.Add(float64(n))
}

// RecordStoreError increments the archive error counter.
func RecordStoreError() {
	if !globalManager.enabled {
		return
	}
	globalManager.storeErrors.Inc()
}

// UpdateStoredTasks sets the archive size gauge.
func UpdateStoredTasks(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.storedTasks.Set(float64(count))
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMetrics samples memory, goroutines and the latest GC pause. It
// is meant to be called from a single refresh goroutine.
func UpdateSystemMetrics() {
	if !globalManager.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > globalManager.lastNumGC {
		globalManager.lastNumGC = ms.NumGC
		pause := ms.PauseNs[(ms.NumGC+255)%256]
		globalManager.systemGCPauseTime.Observe(float64(pause) / nsPerMs)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
