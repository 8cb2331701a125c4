package types

import "time"

// PriceLevel is a single resting level in an order book.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook is a snapshot of the resting book for one outcome token.
// Bids are sorted best (highest) first, asks best (lowest) first.
type OrderBook struct {
	TokenID   string       `json:"token_id"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// BestBid returns the top bid level, if any.
func (b *OrderBook) BestBid() (PriceLevel, bool) {
	if len(b.Bids) == 0 {
		return PriceLevel{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the top ask level, if any.
func (b *OrderBook) BestAsk() (PriceLevel, bool) {
	if len(b.Asks) == 0 {
		return PriceLevel{}, false
	}
	return b.Asks[0], true
}

// Mid returns the midpoint of best bid and ask. Falls back to the best
// bid when the ask side is empty, and reports false when neither side
// has liquidity.
func (b *OrderBook) Mid() (float64, bool) {
	bid, hasBid := b.BestBid()
	ask, hasAsk := b.BestAsk()
	switch {
	case hasBid && hasAsk:
		return (bid.Price + ask.Price) / 2, true
	case hasBid:
		return bid.Price, true
	default:
		return 0, false
	}
}

// OrderResult is the gateway's acknowledgement of a submitted order.
type OrderResult struct {
	OrderID string `json:"order_id"`
	TxHash  string `json:"tx_hash,omitempty"`
}

// Resolution is the settlement state of a market as reported by the
// indexer. When Resolved, TerminalPrices maps token id to its terminal
// price (1.0 for the winning outcome, 0.0 otherwise).
type Resolution struct {
	MarketID       string             `json:"market_id"`
	Resolved       bool               `json:"resolved"`
	TerminalPrices map[string]float64 `json:"terminal_prices,omitempty"`
	Ref            string             `json:"ref,omitempty"` // settlement tx or event id
}

// Fill is an on-chain order fill observed by the indexer.
type Fill struct {
	TokenID   string    `json:"token_id"`
	Side      string    `json:"side"` // "buy" or "sell" of the token
	SizeUSD   float64   `json:"size_usd"`
	Taker     string    `json:"taker"`
	Timestamp time.Time `json:"timestamp"`
}
