package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChecksTotal counts risk checks by outcome ("allowed" or refusal reason).
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_risk_checks_total",
			Help: "Total number of risk checks by outcome",
		},
		[]string{"outcome"},
	)

	// PositionsOpenedTotal counts positions opened.
	PositionsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyedge_positions_opened_total",
		Help: "Total number of positions opened",
	})

	// PositionsClosedTotal counts positions closed, by win/loss.
	PositionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_positions_closed_total",
			Help: "Total number of positions closed",
		},
		[]string{"outcome"},
	)

	// RealizedPnLTotal accumulates realized pnl in USD. A gauge because
	// losses move it down.
	RealizedPnLTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polyedge_realized_pnl_usd_total",
		Help: "Cumulative realized pnl in USD",
	})

	// TotalExposureGauge is the current total committed exposure.
	TotalExposureGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polyedge_total_exposure_usd",
		Help: "Current total committed exposure in USD",
	})

	// BucketExposureGauge is the committed exposure per category bucket.
	BucketExposureGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "polyedge_bucket_exposure_usd",
			Help: "Current committed exposure per category bucket in USD",
		},
		[]string{"bucket"},
	)

	// DailyPnLGauge is the running daily realized pnl.
	DailyPnLGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polyedge_daily_pnl_usd",
		Help: "Running daily realized pnl in USD",
	})

	// OpenPositionsGauge is the current open position count.
	OpenPositionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polyedge_open_positions",
		Help: "Current number of open positions",
	})

	// CircuitBreakerTrips counts daily-loss circuit breaker activations.
	CircuitBreakerTrips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polyedge_circuit_breaker_trips_total",
		Help: "Total number of daily-loss circuit breaker activations",
	})

	// PositionsAdjustedTotal counts partial adds and reductions.
	PositionsAdjustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyedge_positions_adjusted_total",
			Help: "Total number of partial position adjustments by direction",
		},
		[]string{"direction"},
	)
)
