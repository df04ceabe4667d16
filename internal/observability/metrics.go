package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	generationResults     *prometheus.CounterVec
	generationFallbacks   *prometheus.CounterVec
	generationLatency     *prometheus.HistogramVec
	planListRequestsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of learning API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for learning API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by learning endpoints.",
		}, []string{"method", "route", "status"})

		generationResults = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "generation",
			Name:      "results_total",
			Help:      "Generated results by kind and the recovery stage that produced them.",
		}, []string{"kind", "source", "schema"})

		generationFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "generation",
			Name:      "fallbacks_total",
			Help:      "Generations answered with local fallback content.",
		}, []string{"kind", "reason"})

		generationLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gema",
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "End to end duration of generation calls including recovery.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"kind"})

		planListRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "plans",
			Name:      "list_requests_total",
			Help:      "Plan list requests by cache outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			generationResults, generationFallbacks, generationLatency,
			planListRequestsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GenerationResults counts generated results by kind, recovery source and
// schema conformance.
func GenerationResults() *prometheus.CounterVec {
	RegisterMetrics()
	return generationResults
}

// GenerationFallbacks counts local fallbacks by kind and reason.
func GenerationFallbacks() *prometheus.CounterVec {
	RegisterMetrics()
	return generationFallbacks
}

// GenerationLatency observes generation durations.
func GenerationLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return generationLatency
}

// PlanListRequests counts plan list requests by cache outcome.
func PlanListRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return planListRequestsTotal
}
