package pricing

import (
	"context"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"go.uber.org/zap"
)

// ForecastProvider resolves a place and date to a forecast daily high
// in degrees Fahrenheit.
type ForecastProvider interface {
	DailyHigh(ctx context.Context, place string, date time.Time) (float64, error)
}

// FillSource returns recent trade fills for a token, newest first.
type FillSource interface {
	RecentFills(ctx context.Context, tokenID string, since time.Time, limit int) ([]types.Fill, error)
}

// Thresholds are the minimum edge and confidence a result must clear
// to survive evaluation.
type Thresholds struct {
	MinEdge       float64
	MinConfidence float64
}

// Config wires the pricing engine.
type Config struct {
	MinEdge          float64
	MinConfidence    float64
	NoArbBand        float64
	TakerFee         float64
	NarrowBandWidth  float64
	MinSideLiquidity float64
	WhaleMinFillUSD  float64
	WhaleLookback    time.Duration

	// CategoryOverrides replaces the default thresholds for specific
	// categories. Crypto arbitrage markets typically run with a lower
	// bar since the edge is structural rather than model-driven.
	CategoryOverrides map[types.Category]Thresholds

	Logger *zap.Logger
}

// Engine evaluates partitioned market records through per-category
// pricing models and returns results that clear the configured
// thresholds.
type Engine struct {
	cfg       Config
	forecasts ForecastProvider
	fills     FillSource
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine constructs a pricing engine.
func NewEngine(cfg Config, forecasts ForecastProvider, fills FillSource) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		forecasts: forecasts,
		fills:     fills,
		logger:    logger,
		now:       time.Now,
	}
}

// Evaluate runs every admitted market through the model matching its
// category and returns the surviving results. A model failure on one
// market never aborts the cycle.
func (e *Engine) Evaluate(ctx context.Context, partition map[types.Category][]types.MarketRecord) []types.PricingResult {
	start := e.now()
	var results []types.PricingResult

	for category, records := range partition {
		switch category {
		case types.CategoryWeather:
			for i := range records {
				if r := e.priceWeather(ctx, &records[i]); r != nil {
					results = e.admit(ctx, category, r, results)
				}
			}
		case types.CategoryCryptoBinary:
			for i := range records {
				for _, leg := range e.priceArbitrage(&records[i]) {
					results = e.admit(ctx, category, &leg, results)
				}
			}
		case types.CategoryGrouped:
			for groupID, members := range groupByID(records) {
				if r := e.priceGroup(groupID, members); r != nil {
					results = e.admit(ctx, category, r, results)
				}
			}
		case types.CategorySponsored:
			for i := range records {
				if r := e.priceSponsored(&records[i]); r != nil {
					results = e.admit(ctx, category, r, results)
				}
			}
		default:
			// No model for this category yet.
		}
	}

	EvaluateDurationSeconds.Observe(e.now().Sub(start).Seconds())
	e.logger.Info("evaluation-complete",
		zap.Int("results", len(results)),
		zap.Duration("elapsed", e.now().Sub(start)))
	return results
}

// admit applies the whale boost and threshold filter before keeping a
// result.
func (e *Engine) admit(ctx context.Context, category types.Category, r *types.PricingResult, results []types.PricingResult) []types.PricingResult {
	e.applyWhaleBoost(ctx, r)

	th := Thresholds{MinEdge: e.cfg.MinEdge, MinConfidence: e.cfg.MinConfidence}
	if override, ok := e.cfg.CategoryOverrides[category]; ok {
		th = override
	}

	if r.Edge() < th.MinEdge {
		ResultsRejectedTotal.WithLabelValues(r.Model, "edge_below_min").Inc()
		return results
	}
	if r.Confidence < th.MinConfidence {
		ResultsRejectedTotal.WithLabelValues(r.Model, "confidence_below_min").Inc()
		return results
	}

	ResultsProducedTotal.WithLabelValues(r.Model).Inc()
	return append(results, *r)
}

func groupByID(records []types.MarketRecord) map[string][]types.MarketRecord {
	groups := make(map[string][]types.MarketRecord)
	for i := range records {
		if records[i].GroupID == "" {
			continue
		}
		groups[records[i].GroupID] = append(groups[records[i].GroupID], records[i])
	}
	return groups
}
