package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarketsFetchedTotal counts markets fetched from the feed.
	MarketsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyedge_feed_markets_fetched_total",
		Help: "Total number of markets fetched from the feed",
	})

	// MarketsDroppedTotal counts malformed feed records dropped.
	MarketsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyedge_feed_markets_dropped_total",
		Help: "Total number of malformed feed records dropped",
	})

	// FetchDurationSeconds tracks feed page fetch latency.
	FetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polyedge_feed_fetch_duration_seconds",
		Help:    "Duration of feed page fetches",
		Buckets: prometheus.DefBuckets,
	})
)
