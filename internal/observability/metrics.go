package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderlens_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderlens_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	generationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderlens_sql_generation_attempts_total",
			Help: "SQL generation attempts by result (ok, empty, error).",
		},
		[]string{"result"},
	)
	generationRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orderlens_sql_generation_retries_total",
			Help: "Questions that needed the second generation attempt.",
		},
	)
	questionOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderlens_question_outcomes_total",
			Help: "Answered questions by outcome kind.",
		},
		[]string{"kind"},
	)
	sqlExecutionSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderlens_sql_execution_seconds",
			Help:    "Generated SQL execution latency by result.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"result"},
	)
	batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orderlens_batch_questions",
			Help:    "Number of questions per batch request.",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		generationAttemptsTotal,
		generationRetriesTotal,
		questionOutcomesTotal,
		sqlExecutionSeconds,
		batchSize,
	)
}

func ObserveGenerationAttempt(result string) {
	generationAttemptsTotal.WithLabelValues(result).Inc()
}

func IncrementGenerationRetry() {
	generationRetriesTotal.Inc()
}

func ObserveQuestionOutcome(kind string) {
	questionOutcomesTotal.WithLabelValues(kind).Inc()
}

func ObserveSQLExecution(result string, elapsed time.Duration) {
	sqlExecutionSeconds.WithLabelValues(result).Observe(elapsed.Seconds())
}

func ObserveBatchSize(questions int) {
	batchSize.Observe(float64(questions))
}
