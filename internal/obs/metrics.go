package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics for the control plane.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Bot metrics.
var (
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_active_sessions",
		Help: "Number of live account sessions.",
	})

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_logins_total",
			Help: "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	SessionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_session_errors_total",
			Help: "Session stream errors by classified severity.",
		},
		[]string{"kind"},
	)

	SessionsEvictedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_sessions_evicted_total",
		Help: "Sessions evicted due to critical or repeated faults.",
	})

	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Dispatched commands by name and outcome.",
		},
		[]string{"command", "outcome"},
	)

	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_events_total",
			Help: "Inbound stream events by type.",
		},
		[]string{"type"},
	)

	CredentialsQuarantinedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_credentials_quarantined_total",
		Help: "Credential files moved into quarantine.",
	})
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		ActiveSessions, LoginsTotal, SessionErrorsTotal, SessionsEvictedTotal,
		CommandsTotal, EventsTotal, CredentialsQuarantinedTotal,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps an http.Handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for instrumentation.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
