package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	JobsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showoff_jobs_processed_total",
			Help: "Total number of evaluation jobs that wrote a result",
		},
	)

	JobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showoff_jobs_failed_total",
			Help: "Total number of evaluation jobs aborted without a result",
		},
		[]string{"stage"},
	)

	JobsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showoff_jobs_dropped_total",
			Help: "Total number of malformed queue payloads dropped",
		},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showoff_job_duration_seconds",
			Help:    "Duration of evaluation job processing in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 9),
		},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "showoff_jobs_active",
			Help: "Number of evaluation jobs in progress",
		},
	)

	AxisScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showoff_axis_score",
			Help:    "Distribution of per-axis scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"axis", "strategy"},
	)

	JudgeCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showoff_judge_calls_total",
			Help: "Total number of rubric judge calls by outcome",
		},
		[]string{"provider", "variant", "outcome"},
	)
)
