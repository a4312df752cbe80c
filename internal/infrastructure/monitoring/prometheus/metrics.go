package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestSize     HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Pricing Layer
	EvaluationsTotal        CounterVec
	EvaluationFailuresTotal CounterVec
	PreviewCacheTotal       CounterVec
	DuplicateRulesTotal     CounterVec
	QuoteDuration           HistogramVec

	// Infrastructure Layer
	RuleCacheTotal         CounterVec
	DBQueryDuration        HistogramVec
	DBQueryErrorsTotal     CounterVec
	MessagesTotal          CounterVec
	MessageProcessDuration HistogramVec
	SnapshotsTotal         CounterVec

	// System Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultQuoteDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1}
	DefaultSizeBuckets          = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestSize = collector.RegisterHistogram("http_request_size_bytes", "HTTP request size", DefaultSizeBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	// Pricing
	m.EvaluationsTotal = collector.RegisterCounter("pricing_evaluations_total", "Pricing evaluations", "kind")
	m.EvaluationFailuresTotal = collector.RegisterCounter("pricing_evaluation_failures_total", "Pricing evaluations that recovered to zero", "kind")
	m.PreviewCacheTotal = collector.RegisterCounter("pricing_preview_cache_total", "Preview cache lookups", "result")
	m.DuplicateRulesTotal = collector.RegisterCounter("pricing_duplicate_rules_total", "Rules shadowed by a later rule with the same identity", "service_id")
	m.QuoteDuration = collector.RegisterHistogram("pricing_quote_duration_seconds", "Quote computation duration", DefaultQuoteDurationBuckets, "kind")

	// Infrastructure
	m.RuleCacheTotal = collector.RegisterCounter("rule_cache_total", "Rule cache lookups", "result")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.DBQueryErrorsTotal = collector.RegisterCounter("db_query_errors_total", "Failed database queries", "operation")
	m.MessagesTotal = collector.RegisterCounter("mq_messages_total", "Rule change messages", "topic", "direction", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Rule change message handling duration", DefaultDBDurationBuckets, "topic")
	m.SnapshotsTotal = collector.RegisterCounter("quote_snapshots_total", "Quote snapshot writes", "status")

	// Health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1 up, 0 down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, reqSize, respSize int64) {
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	if reqSize > 0 {
		metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	}
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordDBQuery records a query's duration and, when err is non-nil, a failure.
func RecordDBQuery(metrics *AppMetrics, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		metrics.DBQueryErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// RecordMessage records a produced or consumed rule change message.
func RecordMessage(metrics *AppMetrics, topic, direction string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.MessagesTotal.WithLabelValues(topic, direction, status).Inc()
	if duration > 0 {
		metrics.MessageProcessDuration.WithLabelValues(topic).Observe(duration.Seconds())
	}
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

// SetHealth publishes a component's health as 1 or 0.
func SetHealth(metrics *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}

// RecordEvaluation satisfies the pricing engine's metrics port.
func (m *AppMetrics) RecordEvaluation(kind string, failed bool) {
	m.EvaluationsTotal.WithLabelValues(kind).Inc()
	if failed {
		m.EvaluationFailuresTotal.WithLabelValues(kind).Inc()
	}
}

func (m *AppMetrics) RecordPreviewCache(hit bool) {
	m.PreviewCacheTotal.WithLabelValues(hitLabel(hit)).Inc()
}

func (m *AppMetrics) RecordDuplicateRules(serviceID string, count int) {
	if count <= 0 {
		return
	}
	m.DuplicateRulesTotal.WithLabelValues(serviceID).Add(float64(count))
}

func (m *AppMetrics) RecordQuoteDuration(kind string, seconds float64) {
	m.QuoteDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordRuleCache counts a Redis rule-set lookup.
func (m *AppMetrics) RecordRuleCache(hit bool) {
	m.RuleCacheTotal.WithLabelValues(hitLabel(hit)).Inc()
}

// ObserveQuery adapts RecordDBQuery to the repository observer hook.
func (m *AppMetrics) ObserveQuery(operation string, d time.Duration, err error) {
	RecordDBQuery(m, operation, d, err)
}

// ObserveMessage adapts RecordMessage to the messaging observer hook.
func (m *AppMetrics) ObserveMessage(topic, direction string, d time.Duration, err error) {
	RecordMessage(m, topic, direction, err, d)
}

// RecordSnapshot counts a quote snapshot write.
func (m *AppMetrics) RecordSnapshot(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SnapshotsTotal.WithLabelValues(status).Inc()
}

func hitLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

//Personal.AI order the ending
