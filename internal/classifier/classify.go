// Package classifier tags raw markets with a category and filters out
// markets the engine should not evaluate.
package classifier

import (
	"regexp"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// rule maps a question-text pattern to a category. Rules are evaluated
// in order; the first match wins.
type rule struct {
	pattern  *regexp.Regexp
	category types.Category
}

var rules = []rule{
	{regexp.MustCompile(`(?i)\b(temperature|high temp|low temp|rain|rainfall|snow|snowfall|precipitation|wind speed|degrees|°[CF])\b`), types.CategoryWeather},
	{regexp.MustCompile(`(?i)\b(bitcoin|btc|ethereum|eth|solana|sol|xrp|dogecoin)\b.*\b(up or down|above|below|close at|reach)\b`), types.CategoryCryptoBinary},
	{regexp.MustCompile(`(?i)\b(election|president|presidential|senate|congress|governor|prime minister|nominee|electoral)\b`), types.CategoryPolitics},
	{regexp.MustCompile(`(?i)\b(fed|fomc|interest rate|rate cut|rate hike|inflation|cpi|gdp|unemployment|recession|treasury)\b`), types.CategoryMacro},
	{regexp.MustCompile(`(?i)\b(oscar|oscars|grammy|emmy|box office|album|billboard|movie|tv show|celebrity|spotify)\b`), types.CategoryEntertainment},
}

// Classify assigns a category to a market. Total: every market receives
// exactly one category. Structural flags from the feed take precedence
// over question-text rules.
func Classify(m *types.MarketRecord) types.Category {
	if m.GroupID != "" {
		return types.CategoryGrouped
	}
	if m.RewardRate > 0 {
		return types.CategorySponsored
	}

	for _, r := range rules {
		if r.pattern.MatchString(m.Question) {
			return r.category
		}
	}

	return types.CategoryOther
}
