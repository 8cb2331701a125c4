package pricing

import (
	"context"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"go.uber.org/zap"
)

const (
	maxWhaleBoost = 15
	maxConfidence = 99
)

// applyWhaleBoost raises a result's confidence when large recent fills
// agree with the chosen side. The boost is bounded and the combined
// confidence never reaches certainty.
func (e *Engine) applyWhaleBoost(ctx context.Context, r *types.PricingResult) {
	if e.fills == nil || e.cfg.WhaleMinFillUSD <= 0 {
		return
	}

	since := e.now().Add(-e.cfg.WhaleLookback)
	fills, err := e.fills.RecentFills(ctx, r.TokenID, since, 50)
	if err != nil {
		e.logger.Warn("whale-fill-lookup-failed",
			zap.String("token-id", r.TokenID),
			zap.Error(err))
		return
	}

	boost := 0.0
	for i := range fills {
		f := &fills[i]
		if f.Side != "buy" || f.SizeUSD < e.cfg.WhaleMinFillUSD {
			continue
		}
		boost += 5
		if boost >= maxWhaleBoost {
			boost = maxWhaleBoost
			break
		}
	}
	if boost == 0 {
		return
	}

	r.Confidence += boost
	if r.Confidence > maxConfidence {
		r.Confidence = maxConfidence
	}
	WhaleBoostsTotal.Inc()
	e.logger.Debug("whale-confidence-boost",
		zap.String("market-id", r.MarketID),
		zap.Float64("boost", boost),
		zap.Float64("confidence", r.Confidence))
}
