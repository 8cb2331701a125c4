package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/internal/risk"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

const (
	orderSideBuy  = "BUY"
	orderSideSell = "SELL"
)

// OrderGateway is the slice of the execution gateway the trader needs.
type OrderGateway interface {
	Submit(ctx context.Context, tokenID, side string, price, size float64) (*types.OrderResult, error)
	OrderBook(ctx context.Context, tokenID string) (*types.OrderBook, error)
}

// Trader turns approved opportunities into ledger positions: it
// submits the order and records the result through the risk manager.
// It is the gate's executor and the command dispatcher's backend.
type Trader struct {
	gateway      OrderGateway
	risk         *risk.Manager
	exitDiscount float64
	logger       *zap.Logger
	now          func() time.Time
}

// NewTrader constructs a trader.
func NewTrader(gw OrderGateway, riskManager *risk.Manager, exitDiscount float64, logger *zap.Logger) *Trader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trader{
		gateway:      gw,
		risk:         riskManager,
		exitDiscount: exitDiscount,
		logger:       logger,
		now:          time.Now,
	}
}

// Execute submits a buy order for the trade and opens the position on
// success. A gateway failure leaves the ledger untouched.
func (t *Trader) Execute(ctx context.Context, trade types.PendingTrade) error {
	r := trade.Result
	price := entryPrice(&trade.Market, &r)
	if price <= 0 || price >= 1 {
		return fmt.Errorf("execute %s: no tradable price for side %s", r.MarketID, r.Side)
	}
	shares := trade.ProposedSize / price

	result, err := t.gateway.Submit(ctx, r.TokenID, orderSideBuy, price, shares)
	if err != nil {
		return fmt.Errorf("submit entry order: %w", err)
	}

	pos := types.Position{
		ID:         uuid.New().String(),
		MarketID:   r.MarketID,
		Question:   trade.Market.Question,
		Side:       r.Side,
		TokenID:    r.TokenID,
		Size:       trade.ProposedSize,
		EntryPrice: price,
		FairProb:   r.FairProb,
		Edge:       r.Edge(),
		Confidence: r.Confidence,
		Category:   trade.Market.Category,
		OpenedAt:   t.now(),
	}

	if err := t.risk.Open(ctx, pos); err != nil {
		// The order is already placed; the ledger must not silently
		// miss it. Surface loudly for operator reconciliation.
		t.logger.Error("position-record-failed-after-fill",
			zap.String("order-id", result.OrderID),
			zap.String("market-id", r.MarketID),
			zap.Error(err))
		return fmt.Errorf("record opened position: %w", err)
	}

	t.logger.Info("position-opened",
		zap.String("position-id", pos.ID),
		zap.String("order-id", result.OrderID),
		zap.String("market-id", r.MarketID),
		zap.Float64("size", pos.Size),
		zap.Float64("entry-price", price))
	return nil
}

// RecordRejection writes a terminal rejected row for an operator-
// declined trade.
func (t *Trader) RecordRejection(ctx context.Context, trade types.PendingTrade) error {
	r := trade.Result
	pos := types.Position{
		ID:         uuid.New().String(),
		MarketID:   r.MarketID,
		Question:   trade.Market.Question,
		Side:       r.Side,
		TokenID:    r.TokenID,
		Size:       trade.ProposedSize,
		EntryPrice: entryPrice(&trade.Market, &r),
		FairProb:   r.FairProb,
		Edge:       r.Edge(),
		Confidence: r.Confidence,
		Category:   trade.Market.Category,
		OpenedAt:   t.now(),
	}
	return t.risk.RecordRejected(ctx, pos)
}

// CloseAtMarket sells the whole position at a limit shaded below the
// current book mid and records the close.
func (t *Trader) CloseAtMarket(ctx context.Context, pos types.Position) (types.Position, error) {
	price, err := t.livePrice(ctx, pos.TokenID)
	if err != nil {
		return types.Position{}, err
	}
	limit := price * (1 - t.exitDiscount)

	result, err := t.gateway.Submit(ctx, pos.TokenID, orderSideSell, limit, pos.Shares())
	if err != nil {
		return types.Position{}, fmt.Errorf("submit close order: %w", err)
	}
	return t.risk.ClosePosition(ctx, pos.ID, limit, result.OrderID)
}

// Adjust grows or shrinks the position by deltaUSD at the current
// market price. The order goes out first and the ledger is updated
// after, mirroring Execute; a ledger refusal after a fill is surfaced
// to the caller for reconciliation.
func (t *Trader) Adjust(ctx context.Context, pos types.Position, deltaUSD float64) (types.Position, error) {
	price, err := t.livePrice(ctx, pos.TokenID)
	if err != nil {
		return types.Position{}, err
	}

	side := orderSideBuy
	amount := deltaUSD
	if deltaUSD < 0 {
		side = orderSideSell
		amount = -deltaUSD
		price *= 1 - t.exitDiscount
	}

	result, err := t.gateway.Submit(ctx, pos.TokenID, side, price, amount/price)
	if err != nil {
		return types.Position{}, fmt.Errorf("submit adjust order: %w", err)
	}

	updated, err := t.risk.AdjustPosition(ctx, pos.ID, deltaUSD)
	if err != nil {
		t.logger.Error("adjust-record-failed-after-fill",
			zap.String("order-id", result.OrderID),
			zap.String("position-id", pos.ID),
			zap.Float64("delta-usd", deltaUSD),
			zap.Error(err))
		return types.Position{}, fmt.Errorf("record adjustment: %w", err)
	}
	return updated, nil
}

func (t *Trader) livePrice(ctx context.Context, tokenID string) (float64, error) {
	book, err := t.gateway.OrderBook(ctx, tokenID)
	if err != nil {
		return 0, fmt.Errorf("fetch order book: %w", err)
	}
	mid, ok := book.Mid()
	if !ok {
		return 0, fmt.Errorf("order book for %s is empty", tokenID)
	}
	return mid, nil
}

// entryPrice is the actual cost per share of the traded side. The
// market's token price is authoritative when present since it is
// fresher than the price captured in the result.
func entryPrice(m *types.MarketRecord, r *types.PricingResult) float64 {
	if token, ok := m.Token(r.Side); ok && token.Price > 0 {
		return token.Price
	}
	return r.ImpliedProb
}
