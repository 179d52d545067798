package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum data for %s", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestHTTPMetrics_RecordsRequestInstruments(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	bm, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	handler := middleware.NewHTTPMetrics(bm).Handler(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/overview", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	metrics := collectMetrics(t, reader)

	requests, ok := metrics["http_requests_total"]
	require.True(t, ok, "request counter never recorded")
	assert.EqualValues(t, 3, sumInt64(t, requests))

	reqSum := requests.Data.(metricdata.Sum[int64])
	require.NotEmpty(t, reqSum.DataPoints)
	status, found := reqSum.DataPoints[0].Attributes.Value("status_code")
	require.True(t, found)
	assert.EqualValues(t, http.StatusTeapot, status.AsInt64())

	duration, ok := metrics["http_request_duration_seconds"]
	require.True(t, ok, "duration histogram never recorded")
	hist, isHist := duration.Data.(metricdata.Histogram[float64])
	require.True(t, isHist)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.EqualValues(t, 3, count)

	active, ok := metrics["http_active_requests"]
	require.True(t, ok, "active-request gauge never recorded")
	assert.Zero(t, sumInt64(t, active), "gauge returns to zero once requests finish")
}

func TestHTTPMetrics_NilMetricsPassesThrough(t *testing.T) {
	handler := middleware.NewHTTPMetrics(nil).Handler(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
