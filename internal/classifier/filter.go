package classifier

import (
	"math"
	"sort"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"go.uber.org/zap"
)

// FilterConfig holds the market admission thresholds.
type FilterConfig struct {
	MinHoursToExpiry float64
	MinVolume        float64
	MinLiquidity     float64
	NoArbBand        float64 // crypto-binary: |priceSum-1| within band means fairly priced
	MaxOtherPerCycle int     // cap on non-priority markets per cycle
	Logger           *zap.Logger
}

// Filter normalizes, classifies, and admits markets for pricing.
type Filter struct {
	cfg    FilterConfig
	logger *zap.Logger
}

// NewFilter creates a Filter with the given thresholds.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg, logger: cfg.Logger}
}

// Apply classifies every market, drops the ones that fail admission, and
// partitions the survivors by category. Priority categories (weather,
// crypto-binary, grouped, sponsored) pass through whole; the rest are
// capped at MaxOtherPerCycle, highest volume first.
func (f *Filter) Apply(records []types.MarketRecord, now time.Time) map[types.Category][]types.MarketRecord {
	out := make(map[types.Category][]types.MarketRecord)

	for _, m := range records {
		m.Category = Classify(&m)

		reason, ok := f.admit(&m, now)
		if !ok {
			MarketsFilteredTotal.WithLabelValues(reason).Inc()
			f.logger.Debug("market-filtered",
				zap.String("market-id", m.ID),
				zap.String("category", string(m.Category)),
				zap.String("reason", reason))
			continue
		}

		MarketsAdmittedTotal.WithLabelValues(string(m.Category)).Inc()
		out[m.Category] = append(out[m.Category], m)
	}

	f.capNonPriority(out)

	return out
}

// admit applies the admission checks; returns (reason, false) on the
// first failed check.
func (f *Filter) admit(m *types.MarketRecord, now time.Time) (string, bool) {
	if m.HoursToExpiry(now) < f.cfg.MinHoursToExpiry {
		return "expiring_soon", false
	}

	if m.Volume < f.cfg.MinVolume && m.Liquidity < f.cfg.MinLiquidity {
		return "illiquid", false
	}

	priced := 0
	allZero := true
	for _, t := range m.Tokens {
		if t.TokenID != "" {
			priced++
		}
		if t.Price != 0 {
			allZero = false
		}
	}
	if priced < 2 {
		return "too_few_outcomes", false
	}
	if allZero {
		return "zero_prices", false
	}

	// A crypto binary whose prices already sum to ~1 carries no edge.
	if m.Category == types.CategoryCryptoBinary {
		if math.Abs(m.PriceSum()-1.0) <= f.cfg.NoArbBand {
			return "no_arbitrage", false
		}
	}

	return "", true
}

// capNonPriority keeps only the top markets by volume for categories the
// engine has no dedicated model for. Sponsored markets sort by reward
// rate instead, since that is what the model prices.
func (f *Filter) capNonPriority(partition map[types.Category][]types.MarketRecord) {
	if sponsored := partition[types.CategorySponsored]; len(sponsored) > 1 {
		sort.Slice(sponsored, func(i, j int) bool {
			return sponsored[i].RewardRate > sponsored[j].RewardRate
		})
	}

	if f.cfg.MaxOtherPerCycle <= 0 {
		return
	}

	for _, cat := range []types.Category{types.CategoryPolitics, types.CategoryMacro, types.CategoryEntertainment, types.CategoryOther} {
		markets := partition[cat]
		if len(markets) <= f.cfg.MaxOtherPerCycle {
			continue
		}
		sort.Slice(markets, func(i, j int) bool {
			return markets[i].Volume > markets[j].Volume
		})
		partition[cat] = markets[:f.cfg.MaxOtherPerCycle]
	}
}
