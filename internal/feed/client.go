// Package feed reads active markets from the market-data API and
// normalizes them into MarketRecord snapshots.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MaxBatchSize is the feed's maximum page size per request.
const MaxBatchSize = 100

// Client is a paginated HTTP client for the market feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a feed client. ratePerSec bounds request rate to
// stay inside the feed's limits across both loops.
func NewClient(baseURL string, ratePerSec float64, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), 1),
		logger:     logger,
	}
}

// rawMarket is the feed's wire format. Outcome labels, token ids, and
// prices arrive as JSON-encoded strings inside the JSON document.
type rawMarket struct {
	ID            string  `json:"id"`
	Question      string  `json:"question"`
	EndDate       string  `json:"endDate"`
	Volume        float64 `json:"volumeNum"`
	Liquidity     float64 `json:"liquidityNum"`
	Outcomes      string  `json:"outcomes"`
	ClobTokenIDs  string  `json:"clobTokenIds"`
	OutcomePrices string  `json:"outcomePrices"`
	NegRiskGroup  string  `json:"negRiskMarketID"`
	RewardsDaily  float64 `json:"rewardsDailyRate"`
}

// ActiveMarkets fetches up to limit active, unsettled markets, paging
// through the feed as needed. limit 0 means one full page.
func (c *Client) ActiveMarkets(ctx context.Context, limit int) ([]types.MarketRecord, error) {
	if limit <= 0 {
		limit = MaxBatchSize
	}

	records := make([]types.MarketRecord, 0, limit)
	offset := 0

	for len(records) < limit {
		batch := limit - len(records)
		if batch > MaxBatchSize {
			batch = MaxBatchSize
		}

		page, err := c.fetchPage(ctx, batch, offset)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, raw := range page {
			record, ok := normalize(raw)
			if !ok {
				MarketsDroppedTotal.Inc()
				c.logger.Debug("feed-record-dropped", zap.String("market-id", raw.ID))
				continue
			}
			records = append(records, record)
		}

		offset += len(page)
		if len(page) < batch {
			break
		}
	}

	MarketsFetchedTotal.Add(float64(len(records)))

	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, limit, offset int) ([]rawMarket, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Add("closed", "false")
	params.Add("active", "true")
	params.Add("limit", strconv.Itoa(limit))
	params.Add("offset", strconv.Itoa(offset))
	params.Add("order", "volumeNum")
	params.Add("ascending", "false")

	requestURL := fmt.Sprintf("%s/markets?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "polymarket-edge/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	FetchDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var page []rawMarket
	err = json.Unmarshal(body, &page)
	if err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	return page, nil
}

// normalize converts a raw feed record into a MarketRecord, pairing
// outcome labels with token ids and prices. Records whose embedded
// arrays cannot be parsed or do not line up are dropped.
func normalize(raw rawMarket) (types.MarketRecord, bool) {
	var outcomes, tokenIDs, priceStrs []string

	if json.Unmarshal([]byte(raw.Outcomes), &outcomes) != nil ||
		json.Unmarshal([]byte(raw.ClobTokenIDs), &tokenIDs) != nil ||
		json.Unmarshal([]byte(raw.OutcomePrices), &priceStrs) != nil {
		return types.MarketRecord{}, false
	}

	if len(outcomes) != len(tokenIDs) || len(outcomes) != len(priceStrs) {
		return types.MarketRecord{}, false
	}

	tokens := make([]types.OutcomeToken, 0, len(outcomes))
	for i, label := range outcomes {
		price, err := strconv.ParseFloat(priceStrs[i], 64)
		if err != nil || price < 0 || price > 1 {
			return types.MarketRecord{}, false
		}
		tokens = append(tokens, types.OutcomeToken{
			Outcome: label,
			TokenID: tokenIDs[i],
			Price:   price,
		})
	}

	endDate, err := time.Parse(time.RFC3339, raw.EndDate)
	if err != nil {
		return types.MarketRecord{}, false
	}

	return types.MarketRecord{
		ID:         raw.ID,
		Question:   raw.Question,
		EndDate:    endDate,
		Volume:     raw.Volume,
		Liquidity:  raw.Liquidity,
		Tokens:     tokens,
		GroupID:    raw.NegRiskGroup,
		RewardRate: raw.RewardsDaily,
	}, true
}
