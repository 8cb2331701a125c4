// Package gate routes sized, risk-approved opportunities to either
// automatic execution or a human approval queue.
package gate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// Executor places an approved trade. Implemented by the trader on top
// of the execution gateway and the risk manager.
type Executor interface {
	Execute(ctx context.Context, trade types.PendingTrade) error
}

// Notifier delivers a pending-trade alert to the approval channel.
type Notifier interface {
	TradeAlert(ctx context.Context, trade types.PendingTrade) error
}

// Config wires the decision gate.
type Config struct {
	// AutoEdge, AutoConfidence, and AutoMaxSize bound the automatic
	// path: a trade executes without human review only when edge and
	// confidence clear their thresholds and size stays under the cap.
	AutoEdge       float64
	AutoConfidence float64
	AutoMaxSize    float64

	Logger *zap.Logger
}

// Gate decides, per opportunity, between automatic execution and the
// approval queue.
type Gate struct {
	cfg      Config
	queue    *Queue
	executor Executor
	notifier Notifier
	logger   *zap.Logger
}

// NewGate constructs a decision gate. notifier may be nil when no
// approval channel is configured; queued trades then wait silently.
func NewGate(cfg Config, queue *Queue, executor Executor, notifier Notifier) *Gate {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		cfg:      cfg,
		queue:    queue,
		executor: executor,
		notifier: notifier,
		logger:   logger,
	}
}

// Route executes the opportunity automatically when it clears every
// auto-execute threshold, otherwise enqueues it for approval and sends
// an alert. An execution failure is returned; a notification failure
// is only logged since the trade is already queued.
func (g *Gate) Route(ctx context.Context, result types.PricingResult, market types.MarketRecord, size float64) error {
	trade := types.PendingTrade{Result: result, Market: market, ProposedSize: size}

	if g.autoEligible(result, size) {
		AutoExecutedTotal.Inc()
		g.logger.Info("auto-executing",
			zap.String("market-id", market.ID),
			zap.Float64("edge", result.Edge()),
			zap.Float64("confidence", result.Confidence),
			zap.Float64("size", size))
		if err := g.executor.Execute(ctx, trade); err != nil {
			return fmt.Errorf("execute trade: %w", err)
		}
		return nil
	}

	queued := g.queue.Enqueue(result, market, size)
	if g.notifier != nil {
		if err := g.notifier.TradeAlert(ctx, queued); err != nil {
			g.logger.Warn("trade-alert-failed",
				zap.String("pending-id", queued.ID),
				zap.Error(err))
		}
	}
	return nil
}

func (g *Gate) autoEligible(result types.PricingResult, size float64) bool {
	return result.Edge() >= g.cfg.AutoEdge &&
		result.Confidence >= g.cfg.AutoConfidence &&
		size <= g.cfg.AutoMaxSize
}
