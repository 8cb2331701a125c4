// Package lifecycle monitors open positions and triggers exits on
// stop-loss, take-profit, or market settlement.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// PriceFeed resolves a live tradable price for a token. LastPrice is
// the streamed last trade; OrderBook is the REST fallback.
type PriceFeed interface {
	LastPrice(tokenID string) (float64, bool)
	OrderBook(ctx context.Context, tokenID string) (*types.OrderBook, error)
}

// OrderPlacer submits and cancels exit orders.
type OrderPlacer interface {
	Submit(ctx context.Context, tokenID, side string, price, size float64) (*types.OrderResult, error)
}

// SettlementSource answers whether a market has resolved and at what
// terminal prices.
type SettlementSource interface {
	Resolution(ctx context.Context, marketID string) (*types.Resolution, error)
}

// PositionCloser records a close against the risk ledger.
type PositionCloser interface {
	OpenPositions() []types.Position
	ClosePosition(ctx context.Context, positionID string, exitPrice float64, settlementRef string) (types.Position, error)
}

// ExitNotifier announces a completed exit. May be nil.
type ExitNotifier interface {
	PositionClosed(ctx context.Context, pos types.Position) error
}

// Config wires the lifecycle manager.
type Config struct {
	// StopLossFraction triggers an exit when the live price falls below
	// entry * fraction.
	StopLossFraction float64
	// TakeProfitMargin triggers an exit when the live price exceeds the
	// fair estimate at entry by more than this margin.
	TakeProfitMargin float64
	// ExitDiscount shades the exit limit below the live price so the
	// sell rests at the front of the book.
	ExitDiscount float64

	Logger *zap.Logger
}

const sideSell = "SELL"

// Manager walks every open position once per scan cycle.
type Manager struct {
	cfg        Config
	prices     PriceFeed
	orders     OrderPlacer
	settlement SettlementSource
	closer     PositionCloser
	notifier   ExitNotifier
	logger     *zap.Logger
}

// NewManager constructs a lifecycle manager.
func NewManager(cfg Config, prices PriceFeed, orders OrderPlacer, settlement SettlementSource, closer PositionCloser, notifier ExitNotifier) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:        cfg,
		prices:     prices,
		orders:     orders,
		settlement: settlement,
		closer:     closer,
		notifier:   notifier,
		logger:     logger,
	}
}

// CheckAll walks the open positions. A failure on one position skips
// it for this cycle and never aborts the walk.
func (m *Manager) CheckAll(ctx context.Context) {
	start := time.Now()
	positions := m.closer.OpenPositions()
	for i := range positions {
		if ctx.Err() != nil {
			return
		}
		if err := m.checkOne(ctx, &positions[i]); err != nil {
			m.logger.Warn("position-check-failed",
				zap.String("position-id", positions[i].ID),
				zap.Error(err))
		}
	}
	CheckDurationSeconds.Observe(time.Since(start).Seconds())
}

func (m *Manager) checkOne(ctx context.Context, pos *types.Position) error {
	price, ok := m.livePrice(ctx, pos.TokenID)
	if !ok {
		return m.checkSettlement(ctx, pos)
	}

	switch {
	case price < pos.EntryPrice*m.cfg.StopLossFraction:
		ExitsTriggeredTotal.WithLabelValues("stop_loss").Inc()
		m.logger.Info("stop-loss-triggered",
			zap.String("position-id", pos.ID),
			zap.Float64("price", price),
			zap.Float64("entry", pos.EntryPrice))
		return m.exit(ctx, pos, price)

	case price-pos.FairProb > m.cfg.TakeProfitMargin:
		ExitsTriggeredTotal.WithLabelValues("take_profit").Inc()
		m.logger.Info("take-profit-triggered",
			zap.String("position-id", pos.ID),
			zap.Float64("price", price),
			zap.Float64("fair", pos.FairProb))
		return m.exit(ctx, pos, price)
	}
	return nil
}

// livePrice tries the stream first, then the REST order book.
func (m *Manager) livePrice(ctx context.Context, tokenID string) (float64, bool) {
	if price, ok := m.prices.LastPrice(tokenID); ok && price > 0 {
		return price, true
	}

	book, err := m.prices.OrderBook(ctx, tokenID)
	if err != nil {
		m.logger.Debug("order-book-unavailable",
			zap.String("token-id", tokenID),
			zap.Error(err))
		return 0, false
	}
	mid, ok := book.Mid()
	return mid, ok
}

// checkSettlement closes the position at its terminal price when the
// market has resolved. An unresolved market with no book is skipped.
func (m *Manager) checkSettlement(ctx context.Context, pos *types.Position) error {
	res, err := m.settlement.Resolution(ctx, pos.MarketID)
	if err != nil {
		return fmt.Errorf("query settlement: %w", err)
	}
	if !res.Resolved {
		return nil
	}

	terminal, known := res.TerminalPrices[pos.TokenID]
	if !known {
		return fmt.Errorf("resolved market %s has no terminal price for token %s", pos.MarketID, pos.TokenID)
	}

	ExitsTriggeredTotal.WithLabelValues("settlement").Inc()
	closed, err := m.closer.ClosePosition(ctx, pos.ID, terminal, res.Ref)
	if err != nil {
		return fmt.Errorf("close settled position: %w", err)
	}

	m.logger.Info("position-settled",
		zap.String("position-id", pos.ID),
		zap.Float64("terminal-price", terminal),
		zap.Float64("pnl", closed.RealizedPnL))
	m.notify(ctx, closed)
	return nil
}

// exit sells the position with a limit order shaded below the live
// price, then records the close at the order's limit price.
func (m *Manager) exit(ctx context.Context, pos *types.Position, livePrice float64) error {
	limit := livePrice * (1 - m.cfg.ExitDiscount)

	result, err := m.orders.Submit(ctx, pos.TokenID, sideSell, limit, pos.Shares())
	if err != nil {
		ExitsFailedTotal.Inc()
		return fmt.Errorf("submit exit order: %w", err)
	}

	closed, err := m.closer.ClosePosition(ctx, pos.ID, limit, result.OrderID)
	if err != nil {
		return fmt.Errorf("record close: %w", err)
	}

	m.logger.Info("position-exited",
		zap.String("position-id", pos.ID),
		zap.String("order-id", result.OrderID),
		zap.Float64("exit-price", limit),
		zap.Float64("pnl", closed.RealizedPnL))
	m.notify(ctx, closed)
	return nil
}

func (m *Manager) notify(ctx context.Context, pos types.Position) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.PositionClosed(ctx, pos); err != nil {
		m.logger.Warn("close-notification-failed",
			zap.String("position-id", pos.ID),
			zap.Error(err))
	}
}
