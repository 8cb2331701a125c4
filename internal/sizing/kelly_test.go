package sizing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSize(t *testing.T) {
	tests := []struct {
		name           string
		bankroll       float64
		maxPositionPct float64
		fairProb       float64
		price          float64
		want           float64
	}{
		{
			// b = 1, f = (0.70*2 - 1)/1 = 0.40, half-Kelly = 0.20,
			// 0.20 * 1000 = 200, capped at 2% of bankroll = 20.
			name:           "reference-scenario-capped",
			bankroll:       1000,
			maxPositionPct: 0.02,
			fairProb:       0.70,
			price:          0.50,
			want:           20,
		},
		{
			// Same edge with a generous cap: full half-Kelly stake.
			name:           "reference-scenario-uncapped",
			bankroll:       1000,
			maxPositionPct: 0.50,
			fairProb:       0.70,
			price:          0.50,
			want:           200,
		},
		{
			name:           "no-edge",
			bankroll:       1000,
			maxPositionPct: 0.05,
			fairProb:       0.50,
			price:          0.50,
			want:           0,
		},
		{
			name:           "negative-edge",
			bankroll:       1000,
			maxPositionPct: 0.05,
			fairProb:       0.40,
			price:          0.50,
			want:           0,
		},
		{
			name:           "price-at-one",
			bankroll:       1000,
			maxPositionPct: 0.05,
			fairProb:       0.99,
			price:          1.0,
			want:           0,
		},
		{
			name:           "price-at-zero",
			bankroll:       1000,
			maxPositionPct: 0.05,
			fairProb:       0.99,
			price:          0,
			want:           0,
		},
		{
			// Arbitrage leg priced near fair: a modest stake, far from
			// an automatic max-bet.
			// b = 1.0833, f = (0.5*2.0833 - 1)/1.0833 = 0.0385.
			name:           "arbitrage-leg-near-fair",
			bankroll:       1000,
			maxPositionPct: 0.05,
			fairProb:       0.50,
			price:          0.48,
			want:           19.23076923076923,
		},
		{
			// Small edge on a cheap token stays under the cap.
			// b = 9, f = (0.15*10 - 1)/9 = 0.0556, half = 0.0278.
			name:           "cheap-token-small-edge",
			bankroll:       1000,
			maxPositionPct: 0.05,
			fairProb:       0.15,
			price:          0.10,
			want:           27.77777777777778,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.bankroll, tt.maxPositionPct)
			assert.InDelta(t, tt.want, s.Size(tt.fairProb, tt.price), 1e-9)
		})
	}
}

func TestSizeBounds(t *testing.T) {
	s := New(1000, 0.05)

	// Over a grid of (fair, implied) pairs, size stays within
	// [0, maxPositionPct*bankroll].
	for fair := 0.01; fair <= 0.99; fair += 0.07 {
		for price := 0.01; price <= 0.99; price += 0.07 {
			size := s.Size(fair, price)
			assert.GreaterOrEqual(t, size, 0.0, "fair=%f price=%f", fair, price)
			assert.LessOrEqual(t, size, 50.0+1e-9, "fair=%f price=%f", fair, price)
		}
	}
}
