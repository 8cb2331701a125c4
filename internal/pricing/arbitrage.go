package pricing

import (
	"fmt"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// arbConfidence is fixed: a priced basket resolving to exactly 1.0 is
// structural, not a forecast.
const arbConfidence = 95

// arbFairProb is the per-side fair value of a binary outcome absent any
// directional view.
const arbFairProb = 0.5

// detectArb reports whether the market's outcome prices sum far enough
// below 1.0 to cover fees, and the basket edge in percentage points.
// A sum above 1.0 would need shorting, which is unsupported.
func detectArb(priceSum, band, takerFee float64) (float64, bool) {
	deviation := 1.0 - priceSum
	if deviation <= band+takerFee {
		return 0, false
	}
	return deviation * 100, true
}

// priceArbitrage prices a binary market whose outcome prices sum below
// parity. The basket of all outcomes costs PriceSum and pays exactly 1;
// each leg priced below 0.5 is emitted as its own result at fair 0.5,
// so downstream sizing and execution handle every leg independently
// rather than treating a single leg as the riskless basket.
func (e *Engine) priceArbitrage(m *types.MarketRecord) []types.PricingResult {
	sum := m.PriceSum()

	basketEdge, ok := detectArb(sum, e.cfg.NoArbBand, e.cfg.TakerFee)
	if !ok {
		if sum > 1.0 {
			ResultsRejectedTotal.WithLabelValues(types.ModelArbitrage, "short_required").Inc()
		} else {
			ResultsRejectedTotal.WithLabelValues(types.ModelArbitrage, "within_band").Inc()
		}
		return nil
	}

	results := make([]types.PricingResult, 0, len(m.Tokens))
	for _, t := range m.Tokens {
		// A leg at or above 0.5 is negative expectancy on its own;
		// long-only books skip it.
		if t.Price <= 0 || t.Price >= arbFairProb {
			continue
		}
		results = append(results, types.PricingResult{
			MarketID:    m.ID,
			Side:        t.Outcome,
			TokenID:     t.TokenID,
			Model:       types.ModelArbitrage,
			FairProb:    arbFairProb,
			ImpliedProb: t.Price,
			Confidence:  arbConfidence,
			Rationale: fmt.Sprintf("outcome prices sum to %.3f; long-all-sides basket locks %.1f%% before fees",
				sum, basketEdge),
			RiskNote: "fill risk across legs; partial basket carries directional exposure",
		})
	}
	return results
}
