package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// Notifier formats engine events into chat messages. Satisfies the
// gate and lifecycle notifier interfaces.
type Notifier struct {
	client *TelegramClient
}

// NewNotifier wraps a Telegram client.
func NewNotifier(client *TelegramClient) *Notifier {
	return &Notifier{client: client}
}

// TradeAlert announces a trade waiting in the approval queue with
// enough detail to decide from the chat.
func (n *Notifier) TradeAlert(ctx context.Context, trade types.PendingTrade) error {
	r := trade.Result
	var b strings.Builder
	fmt.Fprintf(&b, "*Pending trade* `%s`\n", trade.ID)
	fmt.Fprintf(&b, "%s\n", trade.Market.Question)
	fmt.Fprintf(&b, "Side: *%s*  Model: %s\n", r.Side, r.Model)
	fmt.Fprintf(&b, "Fair %.3f vs implied %.3f (edge %.1f, confidence %.0f)\n", r.FairProb, r.ImpliedProb, r.Edge(), r.Confidence)
	fmt.Fprintf(&b, "Proposed size: $%.2f\n", trade.ProposedSize)
	fmt.Fprintf(&b, "Why: %s\n", r.Rationale)
	if r.RiskNote != "" {
		fmt.Fprintf(&b, "Risk: %s\n", r.RiskNote)
	}
	b.WriteString("Reply `approve [size]`, `reject`, `reject all`, or `pending`.")
	return n.client.SendMessage(ctx, b.String())
}

// PositionClosed announces an exit with its realized outcome.
func (n *Notifier) PositionClosed(ctx context.Context, pos types.Position) error {
	outcome := "LOSS"
	if pos.Won {
		outcome = "WIN"
	}
	text := fmt.Sprintf("*Position closed* (%s)\n%s\nSide %s, size $%.2f\nEntry %.3f → exit %.3f\nRealized pnl: $%+.2f",
		outcome, pos.Question, pos.Side, pos.Size, pos.EntryPrice, pos.ExitPrice, pos.RealizedPnL)
	return n.client.SendMessage(ctx, text)
}

// CircuitBreaker announces the daily-loss pause.
func (n *Notifier) CircuitBreaker(ctx context.Context, dailyPnL float64, until time.Time) error {
	text := fmt.Sprintf("*Circuit breaker tripped*\nDaily pnl $%.2f\nNew trades paused until %s. Exit monitoring continues.",
		dailyPnL, until.Format(time.RFC822))
	return n.client.SendMessage(ctx, text)
}

// PositionSummary renders the open book with per-position action
// buttons: close, increase, decrease.
func (n *Notifier) PositionSummary(ctx context.Context, positions []types.Position, dailyPnL, totalExposure float64) error {
	var b strings.Builder
	fmt.Fprintf(&b, "*Open positions: %d*\n", len(positions))
	fmt.Fprintf(&b, "Exposure $%.2f, daily pnl $%+.2f\n\n", totalExposure, dailyPnL)

	var keyboard [][]Button
	for i, p := range positions {
		fmt.Fprintf(&b, "%d. %s\n   %s $%.2f @ %.3f\n", i, truncate(p.Question, 60), p.Side, p.Size, p.EntryPrice)
		keyboard = append(keyboard, []Button{
			{Text: fmt.Sprintf("Close %d", i), Data: fmt.Sprintf("c%d", i)},
			{Text: fmt.Sprintf("+$10 %d", i), Data: fmt.Sprintf("i%d", i)},
			{Text: fmt.Sprintf("-$10 %d", i), Data: fmt.Sprintf("d%d", i)},
		})
	}
	keyboard = append(keyboard, []Button{
		{Text: "Refresh", Data: "refresh"},
		{Text: "Balance", Data: "balance"},
		{Text: "Pending", Data: "pending"},
	})
	return n.client.SendWithKeyboard(ctx, b.String(), keyboard)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
