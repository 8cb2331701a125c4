package indexer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueryDurationSeconds tracks subgraph query latency by query type.
	QueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyedge_indexer_query_duration_seconds",
			Help:    "Duration of indexer GraphQL queries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	// QueryErrorsTotal counts failed subgraph queries by query type.
	QueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_indexer_query_errors_total",
			Help: "Total number of failed indexer queries",
		},
		[]string{"query"},
	)
)
