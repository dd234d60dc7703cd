// Package telemetry exposes prometheus metrics for the SDK and the dev
// server. Counters can be incremented before Init is called; nothing is
// exported until a caller registers them.
package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeatureEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobucket_feature_evaluations_total",
			Help: "Feature evaluations by result source",
		},
		[]string{"source"},
	)
	ExperimentEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gobucket_experiment_evaluations_total",
			Help: "Experiment evaluations by in/out result",
		},
		[]string{"result"},
	)
	TrackingCalls = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gobucket_tracking_calls_total",
		Help: "Exposure tracking callbacks fired",
	})
	DefinitionUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gobucket_definition_updates_total",
		Help: "Definition snapshot replacements applied",
	})

	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	SSEClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sse_clients",
		Help: "Number of currently connected SSE clients",
	})
)

func Init() {
	prometheus.MustRegister(
		FeatureEvaluations, ExperimentEvaluations, TrackingCalls,
		DefinitionUpdates, httpReqs, httpDur, SSEClients,
	)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
