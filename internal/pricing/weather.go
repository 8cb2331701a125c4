package pricing

import (
	"context"
	"fmt"
	"math"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"go.uber.org/zap"
)

// baseSigmaF is the day-of forecast error for a daily high, in °F.
const baseSigmaF = 2.5

// sigmaMultiplier widens forecast uncertainty with lead time, in
// discrete tiers.
func sigmaMultiplier(leadDays float64) float64 {
	switch {
	case leadDays <= 1:
		return 0.6
	case leadDays <= 3:
		return 1.0
	case leadDays <= 5:
		return 1.4
	default:
		return 1.8
	}
}

// tierConfidence is the base confidence per lead-time tier.
func tierConfidence(leadDays float64) float64 {
	switch {
	case leadDays <= 1:
		return 90
	case leadDays <= 3:
		return 80
	case leadDays <= 5:
		return 70
	default:
		return 60
	}
}

// narrowBandPenalty is subtracted from confidence when the threshold
// band is narrower than the configured width. Mis-resolution risk near
// band edges is a confidence problem, not a sigma problem.
const narrowBandPenalty = 15

// priceWeather prices a weather threshold market against the forecast.
// Returns nil when the question cannot be parsed, the place cannot be
// resolved, no forecast covers the date, or the chosen side is too thin
// to trade.
func (e *Engine) priceWeather(ctx context.Context, m *types.MarketRecord) *types.PricingResult {
	q, ok := parseWeatherQuestion(m.Question, m.EndDate)
	if !ok {
		ResultsRejectedTotal.WithLabelValues(types.ModelWeather, "unparsed_question").Inc()
		e.logger.Debug("weather-question-unparsed", zap.String("market-id", m.ID))
		return nil
	}

	forecast, err := e.forecasts.DailyHigh(ctx, q.Place, q.Date)
	if err != nil {
		ResultsRejectedTotal.WithLabelValues(types.ModelWeather, "forecast_miss").Inc()
		e.logger.Debug("weather-forecast-miss",
			zap.String("market-id", m.ID),
			zap.String("place", q.Place),
			zap.Error(err))
		return nil
	}

	leadDays := q.Date.Sub(e.now()).Hours() / 24
	sigma := baseSigmaF * sigmaMultiplier(leadDays)

	var fair float64
	switch q.Op {
	case opAbove:
		fair = 1 - normalCDF(q.Low, forecast, sigma)
	case opBelow:
		fair = normalCDF(q.Low, forecast, sigma)
	case opRange:
		fair = normalCDF(q.High, forecast, sigma) - normalCDF(q.Low, forecast, sigma)
	case opExact:
		fair = normalCDF(q.Low+0.5, forecast, sigma) - normalCDF(q.Low-0.5, forecast, sigma)
	}

	confidence := tierConfidence(leadDays)
	if width, bounded := q.BandWidth(); bounded && width < e.cfg.NarrowBandWidth {
		confidence -= narrowBandPenalty
	}

	// Trade whichever side the model thinks is cheap. When neither
	// side trades below its fair value there is nothing to buy.
	yes := m.Tokens[0]
	side, fairSide := yes, fair
	if fair <= yes.Price {
		if len(m.Tokens) < 2 || 1-fair <= m.Tokens[1].Price {
			ResultsRejectedTotal.WithLabelValues(types.ModelWeather, "no_cheap_side").Inc()
			e.logger.Debug("weather-no-cheap-side", zap.String("market-id", m.ID))
			return nil
		}
		side, fairSide = m.Tokens[1], 1-fair
	}

	if side.Price*m.Liquidity < e.cfg.MinSideLiquidity {
		ResultsRejectedTotal.WithLabelValues(types.ModelWeather, "thin_side").Inc()
		e.logger.Debug("weather-side-illiquid",
			zap.String("market-id", m.ID),
			zap.String("side", side.Outcome))
		return nil
	}

	return &types.PricingResult{
		MarketID:    m.ID,
		Side:        side.Outcome,
		TokenID:     side.TokenID,
		Model:       types.ModelWeather,
		FairProb:    clamp01(fairSide),
		ImpliedProb: side.Price,
		Confidence:  math.Max(confidence, 0),
		Rationale: fmt.Sprintf("forecast high %.1f°F for %s on %s, sigma %.1f (%.0fd lead)",
			forecast, q.Place, q.Date.Format("Jan 2"), sigma, math.Max(leadDays, 0)),
		RiskNote: "forecast drift before resolution; station vs model discrepancy near band edges",
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
