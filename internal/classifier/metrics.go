package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarketsAdmittedTotal counts markets passing the filter, by category.
	MarketsAdmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_markets_admitted_total",
			Help: "Total number of markets admitted for pricing",
		},
		[]string{"category"},
	)

	// MarketsFilteredTotal counts markets rejected by the filter, by reason.
	MarketsFilteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_markets_filtered_total",
			Help: "Total number of markets rejected by the admission filter",
		},
		[]string{"reason"},
	)
)
