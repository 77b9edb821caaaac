package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	progressUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_progress_upserts_total",
			Help: "Total number of progress upserts by status.",
		},
		[]string{"status"},
	)

	questCompletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_quest_completions_total",
			Help: "Total number of recorded quest completion reports by outcome.",
		},
		[]string{"completed"},
	)

	projectionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_progress_projection_failures_total",
			Help: "Total number of failed best-effort progress projections by projector.",
		},
		[]string{"projector"},
	)

	sectionStoreWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_section_store_writes_total",
			Help: "Section archival writes per store, operation and result (ok, healed, failed).",
		},
		[]string{"store", "operation", "result"},
	)

	schemaHealsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edu_schema_heals_total",
			Help: "Missing columns or tables created on demand, by store.",
		},
		[]string{"store"},
	)
)
