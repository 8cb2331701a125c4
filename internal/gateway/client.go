// Package gateway talks to the trade-execution gateway: order books,
// order submission and cancellation, and a live price stream. Signing
// and custody are the gateway's problem, not ours.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Order sides accepted by Submit.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Client is the HTTP client for the execution gateway.
type Client struct {
	baseURL    string
	apiKey     string
	secret     string
	passphrase string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds gateway client configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	Secret     string
	Passphrase string
	Logger     *zap.Logger
}

// NewClient creates an execution gateway client.
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		secret:     cfg.Secret,
		passphrase: cfg.Passphrase,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     cfg.Logger,
	}
}

type rawLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

type rawBook struct {
	AssetID string     `json:"asset_id"`
	Bids    []rawLevel `json:"bids"`
	Asks    []rawLevel `json:"asks"`
}

// OrderBook fetches the resting book for a token. An empty book is a
// valid response; the caller decides whether that means "check
// settlement instead".
func (c *Client) OrderBook(ctx context.Context, tokenID string) (*types.OrderBook, error) {
	start := time.Now()
	defer func() {
		CallDurationSeconds.WithLabelValues("order_book").Observe(time.Since(start).Seconds())
	}()

	requestURL := fmt.Sprintf("%s/book?token_id=%s", c.baseURL, tokenID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		CallErrorsTotal.WithLabelValues("order_book").Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		CallErrorsTotal.WithLabelValues("order_book").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var raw rawBook
	err = json.Unmarshal(body, &raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal book: %w", err)
	}

	book := &types.OrderBook{
		TokenID:   tokenID,
		Bids:      parseLevels(raw.Bids, true),
		Asks:      parseLevels(raw.Asks, false),
		FetchedAt: time.Now(),
	}

	return book, nil
}

// parseLevels converts wire levels (decimal strings) and orders them
// best-first: descending for bids, ascending for asks.
func parseLevels(raw []rawLevel, bids bool) []types.PriceLevel {
	levels := make([]types.PriceLevel, 0, len(raw))
	for _, l := range raw {
		price, err1 := strconv.ParseFloat(l.Price, 64)
		size, err2 := strconv.ParseFloat(l.Size, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		levels = append(levels, types.PriceLevel{Price: price, Size: size})
	}

	for i := 1; i < len(levels); i++ {
		for j := i; j > 0; j-- {
			better := levels[j].Price > levels[j-1].Price
			if !bids {
				better = levels[j].Price < levels[j-1].Price
			}
			if !better {
				break
			}
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}

	return levels
}

type submitRequest struct {
	TokenID string  `json:"token_id"`
	Side    string  `json:"side"`
	Price   float64 `json:"price"`
	Size    float64 `json:"size"`
}

type submitResponse struct {
	Success  bool     `json:"success"`
	ErrorMsg string   `json:"errorMsg"`
	OrderID  string   `json:"orderID"`
	TxHashes []string `json:"transactionsHashes"`
	Status   string   `json:"status"`
}

// Submit places a limit order. Price is a decimal in [0,1]; size is in
// outcome-share units. A gateway rejection comes back as *types.OrderError
// and leaves no position state behind.
func (c *Client) Submit(ctx context.Context, tokenID, side string, price, size float64) (*types.OrderResult, error) {
	start := time.Now()
	defer func() {
		CallDurationSeconds.WithLabelValues("submit").Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(submitRequest{
		TokenID: tokenID,
		Side:    side,
		Price:   price,
		Size:    size,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/order", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		CallErrorsTotal.WithLabelValues("submit").Inc()
		return nil, &types.OrderError{Code: types.ErrCodeTimeout, Message: err.Error(), TokenID: tokenID}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var result submitResponse
	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, fmt.Errorf("unmarshal order response: %w", err)
	}

	if !result.Success || resp.StatusCode != http.StatusOK {
		CallErrorsTotal.WithLabelValues("submit").Inc()
		code := result.Status
		if code == "" {
			code = strconv.Itoa(resp.StatusCode)
		}
		return nil, &types.OrderError{
			Code:    code,
			Message: result.ErrorMsg,
			OrderID: result.OrderID,
			TokenID: tokenID,
		}
	}

	OrdersSubmittedTotal.WithLabelValues(side).Inc()

	out := &types.OrderResult{OrderID: result.OrderID}
	if len(result.TxHashes) > 0 {
		out.TxHash = result.TxHashes[0]
	}

	c.logger.Info("order-submitted",
		zap.String("token-id", tokenID),
		zap.String("side", side),
		zap.Float64("price", price),
		zap.Float64("size", size),
		zap.String("order-id", out.OrderID))

	return out, nil
}

// Cancel cancels a resting order. Returns true when the gateway confirms
// the cancellation.
func (c *Client) Cancel(ctx context.Context, orderID string) (bool, error) {
	start := time.Now()
	defer func() {
		CallDurationSeconds.WithLabelValues("cancel").Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(map[string]string{"orderID": orderID})
	if err != nil {
		return false, fmt.Errorf("marshal cancel: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/order", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		CallErrorsTotal.WithLabelValues("cancel").Inc()
		return false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Canceled bool `json:"canceled"`
	}
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return false, fmt.Errorf("decode cancel response: %w", err)
	}

	return result.Canceled, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey == "" {
		return
	}
	req.Header.Set("POLY-API-KEY", c.apiKey)
	req.Header.Set("POLY-PASSPHRASE", c.passphrase)
	req.Header.Set("POLY-TIMESTAMP", strconv.FormatInt(time.Now().Unix(), 10))
}
