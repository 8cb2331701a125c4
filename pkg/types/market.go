package types

import "time"

// Category is the closed set of market buckets the engine understands.
// Classification is total: every market maps to exactly one category.
type Category string

const (
	CategoryWeather       Category = "weather"
	CategoryCryptoBinary  Category = "crypto_binary"
	CategoryGrouped       Category = "grouped"
	CategoryPolitics      Category = "politics"
	CategoryMacro         Category = "macro"
	CategoryEntertainment Category = "entertainment"
	CategorySponsored     Category = "sponsored"
	CategoryOther         Category = "other"
)

// Categories lists every known category, in no particular order.
func Categories() []Category {
	return []Category{
		CategoryWeather,
		CategoryCryptoBinary,
		CategoryGrouped,
		CategoryPolitics,
		CategoryMacro,
		CategoryEntertainment,
		CategorySponsored,
		CategoryOther,
	}
}

// OutcomeToken is one tradable outcome of a market.
type OutcomeToken struct {
	Outcome string  `json:"outcome"`
	TokenID string  `json:"token_id"`
	Price   float64 `json:"price"` // current market price in [0,1]
}

// MarketRecord is an immutable snapshot of a market from the feed.
// Outcome prices need not sum to 1; a deviation is an arbitrage signal,
// not a data error.
type MarketRecord struct {
	ID         string         `json:"id"`
	Question   string         `json:"question"`
	Category   Category       `json:"category"`
	EndDate    time.Time      `json:"end_date"`
	Volume     float64        `json:"volume"`
	Liquidity  float64        `json:"liquidity"`
	Tokens     []OutcomeToken `json:"tokens"`
	GroupID    string         `json:"group_id,omitempty"`    // mutually-exclusive group, "" when standalone
	RewardRate float64        `json:"reward_rate,omitempty"` // daily sponsored-liquidity reward in USD
}

// PriceSum returns the sum of all outcome prices.
func (m *MarketRecord) PriceSum() float64 {
	sum := 0.0
	for _, t := range m.Tokens {
		sum += t.Price
	}
	return sum
}

// HoursToExpiry returns hours until the market's end date.
func (m *MarketRecord) HoursToExpiry(now time.Time) float64 {
	return m.EndDate.Sub(now).Hours()
}

// Token returns the outcome token with the given label.
func (m *MarketRecord) Token(outcome string) (OutcomeToken, bool) {
	for _, t := range m.Tokens {
		if t.Outcome == outcome {
			return t, true
		}
	}
	return OutcomeToken{}, false
}
