package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"salespulse/internal/infrastructure"
)

// HTTPMetrics records the request counter, duration histogram and
// active-request gauge for every request passing through it.
type HTTPMetrics struct {
	metrics *infrastructure.BusinessMetrics
}

// NewHTTPMetrics creates the metrics middleware. A nil BusinessMetrics
// disables recording.
func NewHTTPMetrics(metrics *infrastructure.BusinessMetrics) *HTTPMetrics {
	return &HTTPMetrics{metrics: metrics}
}

// Handler instruments the wrapped handler. Attributes use the chi route
// pattern, not the raw path, so per-store and per-state requests share a
// series instead of exploding cardinality.
func (m *HTTPMetrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()

		m.metrics.HTTPActiveRequests.Add(ctx, 1)
		defer m.metrics.HTTPActiveRequests.Add(ctx, -1)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("route", routePattern(r)),
			attribute.Int("status_code", ww.Status()),
		)
		m.metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
		m.metrics.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	})
}

// routePattern resolves the matched chi pattern, falling back to the raw
// path for unrouted requests.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}
