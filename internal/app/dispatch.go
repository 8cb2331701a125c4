package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/internal/gate"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/notify"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/risk"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// Dispatcher executes operator commands from the approval channel.
// Every command shape gets an explicit branch; unrecognized input
// produces an explicit reply rather than silence.
type Dispatcher struct {
	queue    *gate.Queue
	trader   *Trader
	risk     *risk.Manager
	notifier *notify.Notifier
	bankroll float64
	logger   *zap.Logger
}

// NewDispatcher constructs a command dispatcher. The notifier is
// attached later when the approval channel is configured.
func NewDispatcher(queue *gate.Queue, trader *Trader, riskManager *risk.Manager, bankroll float64, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		queue:    queue,
		trader:   trader,
		risk:     riskManager,
		bankroll: bankroll,
		logger:   logger,
	}
}

// Dispatch runs one command and returns the reply text.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd notify.Command) string {
	switch cmd.Kind {
	case notify.CmdApprove:
		return d.approve(ctx, cmd.Size)
	case notify.CmdReject:
		return d.reject(ctx)
	case notify.CmdRejectAll:
		return d.rejectAll(ctx)
	case notify.CmdPending:
		return d.pending()
	case notify.CmdRefresh:
		return d.refresh(ctx)
	case notify.CmdBalance:
		return d.balance()
	case notify.CmdClosePosition:
		return d.closePosition(ctx, cmd.Index)
	case notify.CmdIncreasePosition:
		return d.adjustPosition(ctx, cmd.Index, adjustStepUSD)
	case notify.CmdDecreasePosition:
		return d.adjustPosition(ctx, cmd.Index, -adjustStepUSD)
	default:
		return fmt.Sprintf("Unrecognized command %q. Known: approve [size], reject, reject all, pending, refresh, balance.", cmd.Raw)
	}
}

func (d *Dispatcher) approve(ctx context.Context, sizeOverride float64) string {
	trade, err := d.queue.AcceptOldest(sizeOverride)
	if errors.Is(err, types.ErrQueueEmpty) {
		return "No pending trades."
	}
	if err != nil {
		return fmt.Sprintf("Approve failed: %v", err)
	}

	if err := d.trader.Execute(ctx, trade); err != nil {
		d.logger.Warn("approved-trade-failed",
			zap.String("pending-id", trade.ID),
			zap.Error(err))
		return fmt.Sprintf("Execution failed, position not recorded: %v", err)
	}
	return fmt.Sprintf("Opened $%.2f %s on: %s", trade.ProposedSize, trade.Result.Side, trade.Market.Question)
}

func (d *Dispatcher) reject(ctx context.Context) string {
	trade, err := d.queue.RejectOldest()
	if errors.Is(err, types.ErrQueueEmpty) {
		return "No pending trades."
	}
	if err != nil {
		return fmt.Sprintf("Reject failed: %v", err)
	}

	if err := d.trader.RecordRejection(ctx, trade); err != nil {
		d.logger.Warn("rejection-record-failed", zap.Error(err))
	}
	return fmt.Sprintf("Rejected: %s", trade.Market.Question)
}

func (d *Dispatcher) rejectAll(ctx context.Context) string {
	drained := d.queue.RejectAll()
	if len(drained) == 0 {
		return "No pending trades."
	}
	for _, trade := range drained {
		if err := d.trader.RecordRejection(ctx, trade); err != nil {
			d.logger.Warn("rejection-record-failed", zap.Error(err))
		}
	}
	return fmt.Sprintf("Rejected %d pending trade(s).", len(drained))
}

func (d *Dispatcher) pending() string {
	trades := d.queue.List()
	if len(trades) == 0 {
		return "No pending trades."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pending trades: %d\n", len(trades))
	for i, trade := range trades {
		r := trade.Result
		age := time.Since(trade.EnqueuedAt).Round(time.Minute)
		fmt.Fprintf(&b, "%d. %s\n   %s $%.2f, edge %.1f, conf %.0f, waiting %s\n",
			i+1, trade.Market.Question, r.Side, trade.ProposedSize, r.Edge(), r.Confidence, age)
	}
	b.WriteString("Oldest first: approve [size] / reject.")
	return b.String()
}

func (d *Dispatcher) refresh(ctx context.Context) string {
	snap := d.risk.Snapshot()
	open := snap.OpenPositions()

	if d.notifier != nil {
		if err := d.notifier.PositionSummary(ctx, open, snap.DailyPnL, snap.TotalExposure); err == nil {
			return ""
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Open positions: %d, exposure $%.2f, daily pnl $%+.2f\n", len(open), snap.TotalExposure, snap.DailyPnL)
	for i, p := range open {
		fmt.Fprintf(&b, "%d. %s %s $%.2f @ %.3f\n", i, p.Question, p.Side, p.Size, p.EntryPrice)
	}
	return b.String()
}

func (d *Dispatcher) balance() string {
	snap := d.risk.Snapshot()
	available := d.bankroll - snap.TotalExposure

	reply := fmt.Sprintf("Bankroll $%.2f\nCommitted $%.2f\nAvailable $%.2f\nDaily pnl $%+.2f",
		d.bankroll, snap.TotalExposure, available, snap.DailyPnL)
	if snap.Paused(time.Now()) {
		reply += fmt.Sprintf("\nPaused until %s", snap.PausedUntil.Format(time.RFC822))
	}
	return reply
}

func (d *Dispatcher) closePosition(ctx context.Context, index int) string {
	pos, ok := d.openPositionAt(index)
	if !ok {
		return fmt.Sprintf("No open position at index %d.", index)
	}

	closed, err := d.trader.CloseAtMarket(ctx, pos)
	if err != nil {
		return fmt.Sprintf("Close failed: %v", err)
	}
	return fmt.Sprintf("Closed %s at %.3f, pnl $%+.2f", closed.Question, closed.ExitPrice, closed.RealizedPnL)
}

func (d *Dispatcher) adjustPosition(ctx context.Context, index int, deltaUSD float64) string {
	pos, ok := d.openPositionAt(index)
	if !ok {
		return fmt.Sprintf("No open position at index %d.", index)
	}

	adjusted, err := d.trader.Adjust(ctx, pos, deltaUSD)
	if err != nil {
		return fmt.Sprintf("Adjust failed: %v", err)
	}
	return fmt.Sprintf("Adjusted %s by $%+.2f, size now $%.2f", adjusted.Question, deltaUSD, adjusted.Size)
}

func (d *Dispatcher) openPositionAt(index int) (types.Position, bool) {
	open := d.risk.Snapshot().OpenPositions()
	if index < 0 || index >= len(open) {
		return types.Position{}, false
	}
	return open[index], true
}
