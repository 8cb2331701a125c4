// Package indexer queries the on-chain subgraph for market resolutions
// and recent large order fills ("whale" activity).
package indexer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Client is a GraphQL client for the subgraph indexer.
type Client struct {
	graphqlURL string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an indexer client for the given subgraph endpoint.
func NewClient(graphqlURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		graphqlURL: graphqlURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Resolution returns the settlement state of a market. Terminal prices
// snap to 1.0 for the winning outcome and 0.0 for the rest.
func (c *Client) Resolution(ctx context.Context, marketID string) (*types.Resolution, error) {
	query := `
		query MarketResolution($market: ID!) {
			condition(id: $market) {
				id
				resolved
				payoutNumerators
				resolutionHash
				tokens { id }
			}
		}`

	var data struct {
		Condition *struct {
			ID               string   `json:"id"`
			Resolved         bool     `json:"resolved"`
			PayoutNumerators []string `json:"payoutNumerators"`
			ResolutionHash   string   `json:"resolutionHash"`
			Tokens           []struct {
				ID string `json:"id"`
			} `json:"tokens"`
		} `json:"condition"`
	}

	err := c.query(ctx, "resolution", query, map[string]any{"market": marketID}, &data)
	if err != nil {
		return nil, err
	}

	if data.Condition == nil {
		return &types.Resolution{MarketID: marketID}, nil
	}

	res := &types.Resolution{
		MarketID: marketID,
		Resolved: data.Condition.Resolved,
		Ref:      data.Condition.ResolutionHash,
	}

	if res.Resolved {
		res.TerminalPrices = make(map[string]float64, len(data.Condition.Tokens))
		for i, tok := range data.Condition.Tokens {
			price := 0.0
			if i < len(data.Condition.PayoutNumerators) && data.Condition.PayoutNumerators[i] != "0" {
				price = 1.0
			}
			res.TerminalPrices[tok.ID] = price
		}
	}

	return res, nil
}

// fillEvent is one raw orderFilledEvents row.
type fillEvent struct {
	MakerAssetID      string `json:"makerAssetId"`
	TakerAssetID      string `json:"takerAssetId"`
	MakerAmountFilled string `json:"makerAmountFilled"`
	TakerAmountFilled string `json:"takerAmountFilled"`
	Taker             string `json:"taker"`
	Timestamp         string `json:"timestamp"`
}

// RecentFills returns order fills for a token since the given time, most
// recent first, capped at limit. The token can sit on either leg of a
// fill, so both legs are queried; the fill side is derived from which
// leg carried the outcome token, never assumed.
func (c *Client) RecentFills(ctx context.Context, tokenID string, since time.Time, limit int) ([]types.Fill, error) {
	query := `
		query TokenFills($token: String!, $since: BigInt!, $first: Int!) {
			makerLeg: orderFilledEvents(
				where: { timestamp_gte: $since, makerAssetId: $token }
				orderBy: timestamp
				orderDirection: desc
				first: $first
			) {
				makerAssetId
				takerAssetId
				makerAmountFilled
				takerAmountFilled
				taker
				timestamp
			}
			takerLeg: orderFilledEvents(
				where: { timestamp_gte: $since, takerAssetId: $token }
				orderBy: timestamp
				orderDirection: desc
				first: $first
			) {
				makerAssetId
				takerAssetId
				makerAmountFilled
				takerAmountFilled
				taker
				timestamp
			}
		}`

	var data struct {
		MakerLeg []fillEvent `json:"makerLeg"`
		TakerLeg []fillEvent `json:"takerLeg"`
	}

	vars := map[string]any{
		"token": tokenID,
		"since": strconv.FormatInt(since.Unix(), 10),
		"first": limit,
	}

	err := c.query(ctx, "fills", query, vars, &data)
	if err != nil {
		return nil, err
	}

	fills := make([]types.Fill, 0, len(data.MakerLeg)+len(data.TakerLeg))
	for _, ev := range append(data.MakerLeg, data.TakerLeg...) {
		fill, ok := parseFill(tokenID, ev.MakerAssetID, ev.TakerAssetID, ev.MakerAmountFilled, ev.TakerAmountFilled, ev.Taker, ev.Timestamp)
		if !ok {
			continue
		}
		fills = append(fills, fill)
	}

	sort.Slice(fills, func(i, j int) bool {
		return fills[i].Timestamp.After(fills[j].Timestamp)
	})
	if len(fills) > limit {
		fills = fills[:limit]
	}
	return fills, nil
}

// parseFill converts one raw fill event into a Fill. The maker leg holds
// the outcome token when the taker bought it; when the taker leg holds
// the token the taker was selling. Amounts are 6-decimal fixed-point.
func parseFill(tokenID, makerAsset, takerAsset, makerAmount, takerAmount, taker, timestamp string) (types.Fill, bool) {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return types.Fill{}, false
	}

	var side string
	var usdRaw string
	switch tokenID {
	case makerAsset:
		side = "buy" // taker paid cash for the token
		usdRaw = takerAmount
	case takerAsset:
		side = "sell" // taker delivered the token for cash
		usdRaw = makerAmount
	default:
		return types.Fill{}, false
	}

	usdUnits, err := strconv.ParseFloat(usdRaw, 64)
	if err != nil {
		return types.Fill{}, false
	}

	return types.Fill{
		TokenID:   tokenID,
		Side:      side,
		SizeUSD:   usdUnits / 1e6,
		Taker:     taker,
		Timestamp: time.Unix(ts, 0).UTC(),
	}, true
}

func (c *Client) query(ctx context.Context, label, query string, vars map[string]any, out any) error {
	start := time.Now()
	defer func() {
		QueryDurationSeconds.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		QueryErrorsTotal.WithLabelValues(label).Inc()
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		QueryErrorsTotal.WithLabelValues(label).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var envelope graphqlResponse
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	if len(envelope.Errors) > 0 {
		QueryErrorsTotal.WithLabelValues(label).Inc()
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}

	err = json.Unmarshal(envelope.Data, out)
	if err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}

	return nil
}
