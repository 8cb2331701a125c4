package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// runScanLoop drives the scan cycle on a fixed interval. Each cycle
// runs inside a failure boundary: a panic or external failure logs and
// waits for the next tick, never exits the loop.
func (a *App) runScanLoop() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.ScanInterval)
	defer ticker.Stop()

	a.cycle()
	for {
		select {
		case <-a.ctx.Done():
			a.logger.Info("scan-loop-stopped")
			return
		case <-ticker.C:
			a.cycle()
		}
	}
}

func (a *App) cycle() {
	defer func() {
		if r := recover(); r != nil {
			CycleFailuresTotal.Inc()
			a.logger.Error("scan-cycle-panic", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(a.ctx, a.cfg.ScanInterval)
	defer cancel()

	start := time.Now()

	markets, err := a.feedClient.ActiveMarkets(ctx, a.cfg.FeedPageLimit)
	if err != nil {
		CycleFailuresTotal.Inc()
		a.logger.Warn("market-scan-failed", zap.Error(err))
	} else {
		partition := a.filter.Apply(markets, time.Now())
		results := a.engine.Evaluate(ctx, partition)

		byID := make(map[string]types.MarketRecord, len(markets))
		for _, cat := range partition {
			for _, m := range cat {
				byID[m.ID] = m
			}
		}
		for _, r := range results {
			a.processResult(ctx, r, byID)
		}
	}

	// Exit monitoring runs even when the scan half failed, and keeps
	// running while the circuit breaker pauses new trades.
	a.lifecycleMgr.CheckAll(ctx)
	a.subscribeOpenTokens()

	CyclesTotal.Inc()
	CycleDurationSeconds.Observe(time.Since(start).Seconds())
	a.logger.Info("scan-cycle-complete",
		zap.Int("markets", len(markets)),
		zap.Duration("elapsed", time.Since(start)))
}

func (a *App) processResult(ctx context.Context, r types.PricingResult, byID map[string]types.MarketRecord) {
	market, ok := byID[r.MarketID]
	if !ok {
		return
	}

	size := a.sizer.Size(r.FairProb, entryPrice(&market, &r))
	if size <= 0 {
		a.logger.Debug("no-positive-expectancy",
			zap.String("market-id", r.MarketID))
		return
	}

	check := a.riskManager.Check(size, market.Category)
	if !check.Allowed {
		a.logger.Debug("risk-refused",
			zap.String("market-id", r.MarketID),
			zap.String("reason", check.Reason))
		return
	}

	r.Size = check.ApprovedSize
	if err := a.decisionGate.Route(ctx, r, market, check.ApprovedSize); err != nil {
		a.logger.Warn("trade-routing-failed",
			zap.String("market-id", r.MarketID),
			zap.Error(err))
	}
}

// subscribeOpenTokens keeps the price stream pointed at the tokens the
// lifecycle manager is watching.
func (a *App) subscribeOpenTokens() {
	open := a.riskManager.Snapshot().OpenPositions()
	if len(open) == 0 {
		return
	}
	tokens := make([]string, 0, len(open))
	for _, p := range open {
		tokens = append(tokens, p.TokenID)
	}
	a.priceStream.Subscribe(tokens)
}
