package types

import "math"

// Pricing model identifiers, one per category-specific model.
const (
	ModelWeather   = "weather"
	ModelArbitrage = "arbitrage"
	ModelGrouped   = "grouped"
	ModelSponsored = "sponsored"
)

// PricingResult is the output of a fair-value model for one market.
// Size starts at zero and is filled in by the position sizer; Edge is
// always derived from the two probabilities, never set independently.
type PricingResult struct {
	MarketID    string  `json:"market_id"`
	Side        string  `json:"side"`     // outcome label to buy
	TokenID     string  `json:"token_id"` // tradable id of that outcome
	Model       string  `json:"model"`
	FairProb    float64 `json:"fair_prob"`    // engine's estimate, [0,1]
	ImpliedProb float64 `json:"implied_prob"` // market price of the side, [0,1]
	Confidence  float64 `json:"confidence"`   // 0-100
	Size        float64 `json:"size"`         // USD, assigned by the sizer
	Rationale   string  `json:"rationale"`
	RiskNote    string  `json:"risk_note,omitempty"`
}

// Edge is the absolute gap between fair and implied probability, in
// percentage points.
func (r *PricingResult) Edge() float64 {
	return math.Abs(r.FairProb-r.ImpliedProb) * 100
}
