// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// source is one of keyword, vote, default, context.
	ReportCommandsRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_commands_routed_total",
			Help: "Report commands resolved, by report type and resolution source",
		},
		[]string{"report_type", "source"},
	)

	ReportContextMerges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_context_merges_total",
			Help: "Partial commands merged into conversation context, by strategy",
		},
		[]string{"strategy"},
	)

	// outcome is one of accepted, unavailable, rejected.
	ReportClassifierVotes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_classifier_votes_total",
			Help: "External classifier calls by outcome",
		},
		[]string{"outcome"},
	)

	ReportAlertsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_alerts_scheduled_total",
			Help: "Report alerts persisted, by alert type",
		},
		[]string{"alert_type"},
	)
)
