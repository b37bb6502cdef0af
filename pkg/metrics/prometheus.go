// Package metrics provides Prometheus metrics for the squad pool service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Squad building
	rosterOps    *prometheus.CounterVec
	namesMatched prometheus.Counter
	namesMissed  prometheus.Counter
	activeSess   prometheus.Gauge

	// Screenshot extraction
	extractionLatency  prometheus.Histogram
	extractionFallback prometheus.Counter
	recognitionErrors  prometheus.Counter
	breakerState       prometheus.Gauge
	jobsDuplicate      prometheus.Counter
	jobsByStatus       *prometheus.CounterVec

	// Submissions and aggregation
	submissions        prometheus.Counter
	submissionsReject  *prometheus.CounterVec
	submissionsTotal   prometheus.Gauge
	aggregationLatency prometheus.Histogram
	flagStoreErrors    prometheus.Counter
	liveClients        prometheus.Gauge

	// Queue
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueError prometheus.Counter

	// Workers
	workerCount      prometheus.Gauge
	workerActive     prometheus.Gauge
	workerLatency    prometheus.Histogram
	workerErrorTotal prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fplpicks",
		subsystem:        "pool",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

//nolint:funlen // one place for every collector
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	latency := []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

	m.rosterOps = auto.NewCounterVec(m.counter("roster_operations_total", "Squad add/remove operations by outcome"), []string{"op", "result"})
	m.namesMatched = auto.NewCounter(m.counter("names_matched_total", "Extracted names resolved to catalog players"))
	m.namesMissed = auto.NewCounter(m.counter("names_unmatched_total", "Extracted names with no catalog player"))
	m.activeSess = auto.NewGauge(m.gauge("active_sessions", "Sessions currently held in memory"))

	m.extractionLatency = auto.NewHistogram(m.histogram("extraction_latency_milliseconds", "End to end screenshot extraction time", latency))
	m.extractionFallback = auto.NewCounter(m.counter("extraction_fallback_total", "Extractions that returned the fallback name list"))
	m.recognitionErrors = auto.NewCounter(m.counter("recognition_errors_total", "Failed calls to the text recognizer"))
	m.breakerState = auto.NewGauge(m.gauge("recognizer_breaker_state", "Recognizer circuit breaker state (0 closed, 1 half-open, 2 open)"))
	m.jobsDuplicate = auto.NewCounter(m.counter("extraction_jobs_duplicate_total", "Uploads refused because an identical job was pending"))
	m.jobsByStatus = auto.NewCounterVec(m.counter("extraction_jobs_total", "Extraction jobs by final status"), []string{"status"})

	m.submissions = auto.NewCounter(m.counter("submissions_total", "Accepted squad submissions"))
	m.submissionsReject = auto.NewCounterVec(m.counter("submissions_rejected_total", "Refused submissions by reason"), []string{"reason"})
	m.submissionsTotal = auto.NewGauge(m.gauge("submissions_stored", "Submissions held for the current period"))
	m.aggregationLatency = auto.NewHistogram(m.histogram("aggregation_latency_milliseconds", "Time to compute community statistics", nil))
	m.flagStoreErrors = auto.NewCounter(m.counter("flag_store_errors_total", "Failed reads or writes of submission flags"))
	m.liveClients = auto.NewGauge(m.gauge("live_clients", "Connected live feed clients"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Extraction jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gauge("queue_utilization_percent", "Queue utilization percentage"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueue_total", "Jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeue_total", "Jobs dequeued"))
	m.queueEnqueueError = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Enqueue failures"))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Configured extraction workers"))
	m.workerActive = auto.NewGauge(m.gauge("worker_active_count", "Workers currently processing a job"))
	m.workerLatency = auto.NewHistogram(m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job", latency))
	m.workerErrorTotal = auto.NewCounter(m.counter("worker_errors_total", "Jobs that ended in error"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil), []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counter("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
}

// RecordRosterOperation counts a squad add or remove with its outcome.
func RecordRosterOperation(op, result string) {
	globalManager.rosterOps.WithLabelValues(op, result).Inc()
}

// RecordNameMatches counts resolved and unresolved names of one import.
func RecordNameMatches(matched, unmatched int) {
	globalManager.namesMatched.Add(float64(matched))
	globalManager.namesMissed.Add(float64(unmatched))
}

// UpdateActiveSessions sets the live session count.
func UpdateActiveSessions(n int) {
	globalManager.activeSess.Set(float64(n))
}

// RecordExtractionLatency records one extraction run in milliseconds.
func RecordExtractionLatency(latencyMs float64) {
	globalManager.extractionLatency.Observe(latencyMs)
}

// RecordExtractionFallback counts extractions that fell back to the default names.
func RecordExtractionFallback() {
	globalManager.extractionFallback.Inc()
}

// RecordRecognitionError counts a failed recognizer call.
func RecordRecognitionError() {
	globalManager.recognitionErrors.Inc()
}

// UpdateBreakerState sets the recognizer breaker gauge.
func UpdateBreakerState(state int) {
	globalManager.breakerState.Set(float64(state))
}

// RecordJobDuplicate counts an upload refused as a duplicate pending job.
func RecordJobDuplicate() {
	globalManager.jobsDuplicate.Inc()
}

// RecordJobFinished counts a job by its terminal status.
func RecordJobFinished(status string) {
	globalManager.jobsByStatus.WithLabelValues(status).Inc()
}

// RecordSubmission counts an accepted submission.
func RecordSubmission() {
	globalManager.submissions.Inc()
}

// RecordSubmissionRejected counts a refused submission.
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsReject.WithLabelValues(reason).Inc()
}

// UpdateSubmissionsStored sets the number of stored submissions.
func UpdateSubmissionsStored(n int) {
	globalManager.submissionsTotal.Set(float64(n))
}

// RecordAggregationLatency records one aggregation in milliseconds.
func RecordAggregationLatency(latencyMs float64) {
	globalManager.aggregationLatency.Observe(latencyMs)
}

// RecordFlagStoreError counts a failed flag store call.
func RecordFlagStoreError() {
	globalManager.flagStoreErrors.Inc()
}

// UpdateLiveClients sets the number of live feed clients.
func UpdateLiveClients(n int) {
	globalManager.liveClients.Set(float64(n))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization percentage.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueError.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordWorkerProcessingLatency records time spent on one job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError counts a job that ended in error.
func RecordWorkerError() {
	globalManager.workerErrorTotal.Inc()
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

// UpdateSystemMemoryUsage sets the heap usage in bytes.
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
