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

	DocumentsValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_validated_total",
			Help: "Total number of documents run through heuristic validation",
		},
		[]string{"status", "category"},
	)

	ChecklistsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklists_resolved_total",
			Help: "Total number of document checklists resolved per category",
		},
		[]string{"category"},
	)

	ChecklistSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checklist_syncs_total",
			Help: "Checklist syncs from status payloads by outcome",
		},
		[]string{"outcome"},
	)
)
