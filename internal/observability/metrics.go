package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	evalMutationsTotal    *prometheus.CounterVec
	autoGradesTotal       prometheus.Counter
	gradebookCacheLookups *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hweval_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hweval_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hweval_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		evalMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hweval_evaluation_mutations_total",
			Help: "Committed evaluation mutations by action.",
		}, []string{"action"})

		autoGradesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hweval_autogrades_total",
			Help: "Grader evaluations produced automatically from boolean answers.",
		})

		gradebookCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hweval_gradebook_cache_lookups_total",
			Help: "Gradebook cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			evalMutationsTotal,
			autoGradesTotal,
			gradebookCacheLookups,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// EvaluationMutations exposes the committed mutation counter.
func EvaluationMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return evalMutationsTotal
}

// AutoGrades exposes the auto-grade counter.
func AutoGrades() prometheus.Counter {
	RegisterMetrics()
	return autoGradesTotal
}

// GradebookCacheLookups exposes the gradebook cache hit/miss counter.
func GradebookCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return gradebookCacheLookups
}
