package metrics

import (
	"net/http"

	"github.com/ErlanBelekov/notekeeper/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notekeeper",
		Name:      "auth_attempts_total",
		Help:      "Registration and login attempts, by outcome.",
	}, []string{"action", "outcome"})

	SessionsReapedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "notekeeper",
		Name:      "sessions_reaped_total",
		Help:      "Expired sessions deleted by the reaper.",
	})

	ReaperCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "notekeeper",
		Name:      "reaper_cycle_duration_seconds",
		Help:      "Time taken for one session reaper cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// Note metrics

	NoteOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notekeeper",
		Name:      "note_operations_total",
		Help:      "Note mutations, by operation and outcome.",
	}, []string{"op", "outcome"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "notekeeper",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notekeeper",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		AuthAttemptsTotal,
		SessionsReapedTotal,
		ReaperCycleDuration,
		NoteOperationsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", checker.LivenessHandler)
	mux.HandleFunc("/readyz", checker.ReadinessHandler)
	return &http.Server{Addr: addr, Handler: mux}
}
