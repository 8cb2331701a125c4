package classifier

import (
	"testing"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		groupID  string
		reward   float64
		want     types.Category
	}{
		{
			name:     "weather-temperature",
			question: "Will the high temperature in NYC on March 3 be above 55 degrees?",
			want:     types.CategoryWeather,
		},
		{
			name:     "weather-rainfall",
			question: "Will rainfall in Seattle exceed 1 inch this week?",
			want:     types.CategoryWeather,
		},
		{
			name:     "crypto-binary-updown",
			question: "Bitcoin up or down on March 12?",
			want:     types.CategoryCryptoBinary,
		},
		{
			name:     "crypto-binary-level",
			question: "Will Ethereum close at or above $4,000 on Friday?",
			want:     types.CategoryCryptoBinary,
		},
		{
			name:     "politics",
			question: "Will the Republican nominee win the presidential election?",
			want:     types.CategoryPolitics,
		},
		{
			name:     "macro",
			question: "Will the Fed announce a rate cut in June?",
			want:     types.CategoryMacro,
		},
		{
			name:     "entertainment",
			question: "Will the movie win Best Picture at the Oscars?",
			want:     types.CategoryEntertainment,
		},
		{
			name:     "group-flag-wins-over-text",
			question: "Will the Fed announce a rate cut in June?",
			groupID:  "fed-june",
			want:     types.CategoryGrouped,
		},
		{
			name:     "reward-flag",
			question: "Some niche market nobody recognizes?",
			reward:   12.5,
			want:     types.CategorySponsored,
		},
		{
			name:     "fallthrough-other",
			question: "Will the mystery box contain a prize?",
			want:     types.CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &types.MarketRecord{
				Question:   tt.question,
				GroupID:    tt.groupID,
				RewardRate: tt.reward,
			}
			assert.Equal(t, tt.want, Classify(m))
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// Mentions both weather and crypto terms; weather rules run first.
	m := &types.MarketRecord{
		Question: "Will the temperature push Bitcoin miners above capacity?",
	}
	assert.Equal(t, types.CategoryWeather, Classify(m))
}
