package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/middleware"
	"salespulse/internal/shared/testutil"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetReqID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	middleware.RequestID(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_KeepsIncomingHeader(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "client-supplied", middleware.GetReqID(r.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec := httptest.NewRecorder()
	middleware.RequestID(inner).ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied", rec.Header().Get("X-Request-ID"))
}

func TestStructuredLogger_LogsStartAndCompletion(t *testing.T) {
	logger, captured := testutil.NewCaptureLogger()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	middleware.StructuredLogger(logger)(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.True(t, captured.HasMessage("request started"))
	assert.True(t, captured.HasMessage("request completed"))

	var status any
	for _, r := range captured.Records() {
		if r.Message == "request completed" {
			status = r.Attrs["status"]
		}
	}
	assert.EqualValues(t, http.StatusTeapot, status)
}

func TestRecoverer_Returns500Problem(t *testing.T) {
	logger, captured := testutil.NewCaptureLogger()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	middleware.Recoverer(logger)(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.True(t, captured.HasMessage("panic recovered"))
}

func TestRateLimiter_RejectsBeyondBurst(t *testing.T) {
	logger, _ := testutil.NewCaptureLogger()
	// 1 rps with burst 2: the third immediate request must be rejected.
	limiter := middleware.NewRateLimiter(1, 2, logger)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := limiter.Handler(inner)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_SetsRetryAfter(t *testing.T) {
	logger, _ := testutil.NewCaptureLogger()
	limiter := middleware.NewRateLimiter(0.0001, 1, logger)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	// Exhaust the single burst token, then expect a 429 with Retry-After.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
