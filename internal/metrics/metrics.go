// Package metrics exposes Prometheus instrumentation for the query and
// evaluation paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shopgraph",
		Name:      "queries_total",
		Help:      "Answered queries, labeled by retrieval mode.",
	}, []string{"mode"})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shopgraph",
		Name:      "query_duration_seconds",
		Help:      "End-to-end query latency including generation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})

	EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shopgraph",
		Name:      "evaluation_runs_total",
		Help:      "Benchmark evaluation jobs started.",
	})

	IngestedProducts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shopgraph",
		Name:      "ingested_products_total",
		Help:      "Product records accepted by the ingestion endpoint.",
	})
)
