// Package sizing converts a pricing result into a bankroll-fraction
// trade size with a capped half-Kelly rule.
package sizing

import "math"

// Sizer computes position sizes. Pure: it never touches the ledger.
type Sizer struct {
	bankroll       float64
	maxPositionPct float64
}

// New creates a Sizer for the given bankroll and per-position cap.
func New(bankroll, maxPositionPct float64) *Sizer {
	return &Sizer{bankroll: bankroll, maxPositionPct: maxPositionPct}
}

// Size returns the USD amount to commit for fair probability p at market
// price. Kelly fraction f = (p*(b+1) - 1) / b with net odds b = 1/price - 1;
// half of f is staked, capped at maxPositionPct of bankroll. Returns 0
// whenever the trade has no positive expectancy.
func (s *Sizer) Size(fairProb, price float64) float64 {
	if price <= 0 || price >= 1 || fairProb <= 0 || fairProb > 1 {
		return 0
	}

	b := 1/price - 1
	if b <= 0 {
		return 0
	}

	f := (fairProb*(b+1) - 1) / b
	if f <= 0 {
		return 0
	}

	size := (f / 2) * s.bankroll

	return math.Min(size, s.maxPositionPct*s.bankroll)
}
