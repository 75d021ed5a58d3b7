package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getTestMetrics() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	return NewWithRegistry(registry, zap.NewNop()), registry
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gauge.Write(metric))
	return metric.Gauge.GetValue()
}

// All registered metrics use the agileflow namespace, snake_case names and carry help text
func TestMetricNamingAndHelp(t *testing.T) {
	m, registry := getTestMetrics()

	// vectors are only gathered once a child exists
	m.RecordHTTPRequest("GET", "/sessions", 200, time.Millisecond)
	m.RecordExternalAPICall("/v1beta/models/gemini-2.0-flash:generateContent", "POST", 500, time.Second, nil)
	m.RecordTaskOperation("move_task", nil)

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	for _, mf := range families {
		name := mf.GetName()
		assert.True(t, strings.HasPrefix(name, namespace+"_"), name)
		assert.Equal(t, strings.ToLower(name), name)
		assert.NotContains(t, name, "-")
		assert.NotEmpty(t, mf.GetHelp(), name)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	m, _ := getTestMetrics()

	m.RecordHTTPRequest("POST", "/api/agileflow/sessions", 201, 20*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/agileflow/sessions", 503, 20*time.Millisecond)

	assert.Equal(t, float64(1), getCounterValue(t, m.HTTPRequestsTotal.WithLabelValues("POST", "/api/agileflow/sessions", "2xx")))
	assert.Equal(t, float64(1), getCounterValue(t, m.HTTPRequestsTotal.WithLabelValues("POST", "/api/agileflow/sessions", "5xx")))
}

func TestShouldSkipEndpoint(t *testing.T) {
	assert.True(t, ShouldSkipEndpoint("/metrics"))
	assert.True(t, ShouldSkipEndpoint("/health"))
	assert.True(t, ShouldSkipEndpoint("/ready"))
	assert.True(t, ShouldSkipEndpoint("/api/agileflow/sessions/:sessionId/ws"))
	assert.False(t, ShouldSkipEndpoint("/api/agileflow/sessions/:sessionId/board"))
}

func TestRecordExternalAPICall(t *testing.T) {
	m, _ := getTestMetrics()
	endpoint := "/v1beta/models/gemini-2.0-flash:generateContent"
	normalized := "/v1beta/models/{model}:generateContent"

	m.RecordExternalAPICall(endpoint, "POST", 200, time.Second, nil)
	m.RecordExternalAPICall(endpoint, "POST", 429, time.Second, nil)
	m.RecordExternalAPICall(endpoint, "POST", 0, time.Second, context.DeadlineExceeded)

	assert.Equal(t, float64(1), getCounterValue(t, m.ExternalAPIRequestsTotal.WithLabelValues(normalized, "POST", "200")))
	assert.Equal(t, float64(1), getCounterValue(t, m.ExternalAPIErrors.WithLabelValues(normalized, "too_many_requests")))
	assert.Equal(t, float64(1), getCounterValue(t, m.ExternalAPIErrors.WithLabelValues(normalized, "timeout")))
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		err        error
		want       string
	}{
		{"bad request", 400, nil, "bad_request"},
		{"unauthorized", 401, nil, "unauthorized"},
		{"rate limited", 429, nil, "too_many_requests"},
		{"other client error", 418, nil, "client_error"},
		{"service unavailable", 503, nil, "service_unavailable"},
		{"other server error", 599, nil, "server_error"},
		{"connection refused", 0, errors.New("dial tcp: connection refused"), "connection_refused"},
		{"dns", 0, errors.New("lookup x: no such host"), "dns_error"},
		{"deadline", 0, context.DeadlineExceeded, "timeout"},
		{"eof", 0, errors.New("unexpected EOF"), "connection_reset"},
		{"malformed", 0, errors.New("invalid character 'x' looking for beginning of value"), "malformed_response"},
		{"other", 0, errors.New("boom"), "network_error"},
		{"nothing", 200, nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getErrorType(tt.statusCode, tt.err))
		})
	}
}

func TestBusinessMetrics(t *testing.T) {
	m, _ := getTestMetrics()

	m.IncrementBoardsGenerated()
	m.AddStoriesSuggested(4)
	m.IncrementTipsServed()
	m.SetSessionsActive(7)
	m.AddSessionsExpired(2)
	m.RecordTaskOperation("add_task", nil)
	m.RecordTaskOperation("add_task", errors.New("bad"))

	assert.Equal(t, float64(1), getCounterValue(t, m.BoardsGeneratedTotal))
	assert.Equal(t, float64(4), getCounterValue(t, m.StoriesSuggestedTotal))
	assert.Equal(t, float64(1), getCounterValue(t, m.TipsServedTotal))
	assert.Equal(t, float64(7), getGaugeValue(t, m.SessionsActive))
	assert.Equal(t, float64(2), getCounterValue(t, m.SessionsExpiredTotal))
	assert.Equal(t, float64(1), getCounterValue(t, m.TaskOperationsTotal.WithLabelValues("add_task", ResultSuccess)))
	assert.Equal(t, float64(1), getCounterValue(t, m.TaskOperationsTotal.WithLabelValues("add_task", ResultError)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementBoardsGenerated()
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordTaskOperation("move_task", nil)
	})
}

type stubCounter struct {
	count int64
	err   error
}

func (s stubCounter) Count(ctx context.Context) (int64, error) {
	return s.count, s.err
}

func TestBusinessMetricsCollector(t *testing.T) {
	m, _ := getTestMetrics()

	collector := NewBusinessMetricsCollector(stubCounter{count: 3}, m, zap.NewNop(), time.Hour)
	collector.collect()
	assert.Equal(t, float64(3), getGaugeValue(t, m.SessionsActive))

	failing := NewBusinessMetricsCollector(stubCounter{count: 9, err: errors.New("redis down")}, m, zap.NewNop(), time.Hour)
	failing.collect()
	assert.Equal(t, float64(3), getGaugeValue(t, m.SessionsActive), "gauge keeps the last good value")

	collector.Start()
	collector.Stop()
	failing.ticker.Stop()
}
