package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_received_total",
			Help: "Total number of leads stored, by source and qualification",
		},
		[]string{"source", "qualification"},
	)

	crmPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_push_total",
			Help: "Zoho push attempts by outcome",
		},
		[]string{"outcome"},
	)

	leadScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_score",
			Help:    "Distribution of computed lead scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern keeps ids out of the label set.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordLeadReceived(source, qualification string, score int) {
	if source == "" {
		source = "unknown"
	}
	leadsReceived.WithLabelValues(source, qualification).Inc()
	leadScore.Observe(float64(score))
}

// RecordCRMPush counts one push outcome: pushed, failed, retried, dead.
func RecordCRMPush(outcome string, n int) {
	if n <= 0 {
		return
	}
	crmPushes.WithLabelValues(outcome).Add(float64(n))
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
