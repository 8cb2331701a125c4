package pricing

import (
	"fmt"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

const sponsoredConfidence = 55

// priceSponsored treats markets carrying a liquidity reward as a
// yield play: holding either side near the midpoint earns the daily
// reward rate, so the model anchors fair at 0.5 and reports the
// annualized reward yield in the rationale. The side trades below
// the anchor so that price drift toward parity adds to the carry.
func (e *Engine) priceSponsored(m *types.MarketRecord) *types.PricingResult {
	if m.RewardRate <= 0 {
		ResultsRejectedTotal.WithLabelValues(types.ModelSponsored, "no-reward").Inc()
		return nil
	}
	if m.Liquidity < e.cfg.MinSideLiquidity {
		ResultsRejectedTotal.WithLabelValues(types.ModelSponsored, "illiquid").Inc()
		return nil
	}

	side := &m.Tokens[0]
	for i := range m.Tokens[1:] {
		t := &m.Tokens[i+1]
		if t.Price < side.Price {
			side = t
		}
	}
	if side.Price >= 0.5 {
		ResultsRejectedTotal.WithLabelValues(types.ModelSponsored, "no-cheap-side").Inc()
		return nil
	}

	annualized := 0.0
	if m.Liquidity > 0 {
		annualized = m.RewardRate * 365 / m.Liquidity * 100
	}

	return &types.PricingResult{
		MarketID:    m.ID,
		Side:        side.Outcome,
		TokenID:     side.TokenID,
		Model:       types.ModelSponsored,
		FairProb:    0.5,
		ImpliedProb: side.Price,
		Confidence:  sponsoredConfidence,
		Rationale: fmt.Sprintf("daily reward $%.2f on $%.0f liquidity (%.1f%% annualized); cheap side at %.3f",
			m.RewardRate, m.Liquidity, annualized, side.Price),
		RiskNote: "reward program can be withdrawn; edge assumes price reverts toward parity",
	}
}
