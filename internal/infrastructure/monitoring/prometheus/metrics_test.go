package prometheus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppricing "github.com/turtacn/KeyIP-Pricing/internal/application/pricing"
)

var _ apppricing.Metrics = (*AppMetrics)(nil)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)
	return m, c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.EvaluationsTotal)
	assert.NotNil(t, m.EvaluationFailuresTotal)
	assert.NotNil(t, m.PreviewCacheTotal)
	assert.NotNil(t, m.DuplicateRulesTotal)
	assert.NotNil(t, m.QuoteDuration)
	assert.NotNil(t, m.RuleCacheTotal)
	assert.NotNil(t, m.SnapshotsTotal)
}

func TestRecordHTTPRequest_AllMetricsUpdated(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "POST", "/api/v1/quotes", 200, 100*time.Millisecond, 1024, 2048)

	output := scrape(t, c)
	assert.Contains(t, output, `test_unit_http_requests_total{method="POST",path="/api/v1/quotes",status_code="200"} 1`)
	assert.Contains(t, output, `test_unit_http_request_duration_seconds_count{method="POST",path="/api/v1/quotes"} 1`)
	assert.Contains(t, output, `test_unit_http_response_size_bytes_sum{method="POST",path="/api/v1/quotes"} 2048`)
}

func TestRecordEvaluation(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordEvaluation("patentability_search", false)
	m.RecordEvaluation("patentability_search", true)

	output := scrape(t, c)
	assert.Contains(t, output, `test_unit_pricing_evaluations_total{kind="patentability_search"} 2`)
	assert.Contains(t, output, `test_unit_pricing_evaluation_failures_total{kind="patentability_search"} 1`)
}

func TestRecordPreviewCache(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordPreviewCache(true)
	m.RecordPreviewCache(false)
	m.RecordPreviewCache(false)

	output := scrape(t, c)
	assert.Contains(t, output, `test_unit_pricing_preview_cache_total{result="hit"} 1`)
	assert.Contains(t, output, `test_unit_pricing_preview_cache_total{result="miss"} 2`)
}

func TestRecordDuplicateRules_IgnoresZero(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordDuplicateRules("svc-1", 0)
	m.RecordDuplicateRules("svc-2", 3)

	output := scrape(t, c)
	assert.NotContains(t, output, `service_id="svc-1"`)
	assert.Contains(t, output, `test_unit_pricing_duplicate_rules_total{service_id="svc-2"} 3`)
}

func TestRecordQuoteDuration(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.RecordQuoteDuration("filing", 0.002)

	output := scrape(t, c)
	assert.Contains(t, output, `test_unit_pricing_quote_duration_seconds_count{kind="filing"} 1`)
}

func TestRecordDBQuery_Error(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDBQuery(m, "list_rules", 5*time.Millisecond, nil)
	RecordDBQuery(m, "list_rules", 5*time.Millisecond, errors.New("conn reset"))

	output := scrape(t, c)
	assert.Contains(t, output, `test_unit_db_query_duration_seconds_count{operation="list_rules"} 2`)
	assert.Contains(t, output, `test_unit_db_query_errors_total{operation="list_rules"} 1`)
}

func TestRecordRuleCacheAndSnapshot(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordRuleCache(true)
	m.RecordRuleCache(false)
	m.RecordSnapshot(nil)
	m.RecordSnapshot(errors.New("bucket missing"))

	output := scrape(t, c)
	assert.Contains(t, output, `test_unit_rule_cache_total{result="hit"} 1`)
	assert.Contains(t, output, `test_unit_rule_cache_total{result="miss"} 1`)
	assert.Contains(t, output, `test_unit_quote_snapshots_total{status="error"} 1`)
	assert.Contains(t, output, `test_unit_quote_snapshots_total{status="ok"} 1`)
}

func TestRecordMessage(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordMessage(m, "pricing.rules.updated", "consume", nil, 3*time.Millisecond)
	RecordMessage(m, "pricing.rules.updated", "produce", errors.New("broker down"), 0)

	output := scrape(t, c)
	assert.Contains(t, output, `test_unit_mq_messages_total{direction="consume",status="ok",topic="pricing.rules.updated"} 1`)
	assert.Contains(t, output, `test_unit_mq_messages_total{direction="produce",status="error",topic="pricing.rules.updated"} 1`)
	assert.Contains(t, output, `test_unit_mq_process_duration_seconds_count{topic="pricing.rules.updated"} 1`)
}

func TestHealthAndErrors(t *testing.T) {
	m, c := newTestAppMetrics(t)

	SetHealth(m, "postgres", true)
	SetHealth(m, "redis", false)
	RecordError(m, "http", "PRC_002")

	output := scrape(t, c)
	assert.Contains(t, output, `test_unit_health_check_status{component="postgres"} 1`)
	assert.Contains(t, output, `test_unit_health_check_status{component="redis"} 0`)
	assert.Contains(t, output, `test_unit_errors_total{code="PRC_002",component="http"} 1`)
}

func TestDefaultBuckets(t *testing.T) {
	assert.NotEmpty(t, DefaultHTTPDurationBuckets)
	assert.NotEmpty(t, DefaultQuoteDurationBuckets)
	assert.NotEmpty(t, DefaultDBDurationBuckets)
}

func TestConcurrentMetricRecording(t *testing.T) {
	m, c := newTestAppMetrics(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordEvaluation("drafting", false)
			}
		}()
	}
	wg.Wait()

	assert.Contains(t, scrape(t, c), `test_unit_pricing_evaluations_total{kind="drafting"} 1000`)
}

//Personal.AI order the ending
