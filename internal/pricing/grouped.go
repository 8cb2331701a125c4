package pricing

import (
	"fmt"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"go.uber.org/zap"
)

const groupedConfidence = 75

// priceGroup prices a set of mutually-exclusive markets sharing a group
// id. Exactly one member resolves yes, so the members' yes prices
// should sum to 1.0; when they sum below parity the cheapest member
// relative to an even split is the trade.
func (e *Engine) priceGroup(groupID string, members []types.MarketRecord) *types.PricingResult {
	if len(members) < 2 {
		ResultsRejectedTotal.WithLabelValues(types.ModelGrouped, "group_too_small").Inc()
		return nil
	}

	yesSum := 0.0
	for i := range members {
		yesSum += members[i].Tokens[0].Price
	}

	deviation := 1.0 - yesSum
	if deviation <= e.cfg.NoArbBand {
		if yesSum > 1.0 {
			ResultsRejectedTotal.WithLabelValues(types.ModelGrouped, "short_required").Inc()
		} else {
			ResultsRejectedTotal.WithLabelValues(types.ModelGrouped, "within_band").Inc()
		}
		return nil
	}

	fair := 1.0 / float64(len(members))

	best := &members[0]
	for i := range members[1:] {
		m := &members[i+1]
		if fair-m.Tokens[0].Price > fair-best.Tokens[0].Price {
			best = m
		}
	}

	e.logger.Debug("group-mispriced",
		zap.String("group-id", groupID),
		zap.Float64("yes-sum", yesSum),
		zap.Int("members", len(members)))

	return &types.PricingResult{
		MarketID:    best.ID,
		Side:        best.Tokens[0].Outcome,
		TokenID:     best.Tokens[0].TokenID,
		Model:       types.ModelGrouped,
		FairProb:    fair,
		ImpliedProb: best.Tokens[0].Price,
		Confidence:  groupedConfidence,
		Rationale: fmt.Sprintf("group %s yes prices sum to %.3f across %d members; most underpriced member selected",
			groupID, yesSum, len(members)),
		RiskNote: "even-split prior ignores member asymmetry; group membership may be stale",
	}
}
