package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ctxKey string

const routeLabelKey ctxKey = "metrics_route"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcardedit_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcardedit_http_errors_total",
		Help: "Total number of HTTP requests resulting in server errors.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vcardedit_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	storeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vcardedit_store_latency_seconds",
		Help:    "Histogram of session store operation latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "route"})

	documentsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcardedit_documents_loaded_total",
		Help: "Document loads by outcome.",
	}, []string{"outcome"})

	entitiesLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vcardedit_entities_loaded_total",
		Help: "Total number of vCard entities parsed from loaded documents.",
	})

	keysRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vcardedit_keys_rejected_total",
		Help: "Total number of property keys rejected by the key grammar.",
	})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcardedit_exports_total",
		Help: "Exports by target version and outcome.",
	}, []string{"version", "outcome"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vcardedit_sessions_active",
		Help: "Number of editing sessions held in memory.",
	})
)

// Middleware records request metrics and labels the context for store latency.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), routeLabelKey, r.URL.Path)

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			// chi fills in the pattern while routing, so read it afterwards
			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			method := r.Method
			duration := time.Since(start).Seconds()
			statusCode := strconv.Itoa(status)

			httpRequestsTotal.WithLabelValues(method, route).Inc()
			httpRequestDuration.WithLabelValues(method, route, statusCode).Observe(duration)
			if status >= http.StatusInternalServerError {
				httpErrorsTotal.WithLabelValues(method, route, statusCode).Inc()
			}
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveStoreLatency records session store latency for a given operation.
func ObserveStoreLatency(ctx context.Context, operation string, start time.Time) {
	route := routeFromContext(ctx)
	storeLatency.WithLabelValues(operation, route).Observe(time.Since(start).Seconds())
}

// RecordLoad counts a document load. outcome is "ok" or a failure reason.
func RecordLoad(outcome string, entities, rejected int) {
	documentsLoaded.WithLabelValues(outcome).Inc()
	entitiesLoaded.Add(float64(entities))
	keysRejected.Add(float64(rejected))
}

// RecordExport counts an export attempt.
func RecordExport(version, outcome string) {
	exportsTotal.WithLabelValues(version, outcome).Inc()
}

// SetActiveSessions publishes the number of sessions currently held.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

func routeFromContext(ctx context.Context) string {
	if route, ok := ctx.Value(routeLabelKey).(string); ok && route != "" {
		return route
	}
	return "unknown"
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
