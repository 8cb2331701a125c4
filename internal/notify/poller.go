package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Dispatcher handles one parsed command and returns the reply text to
// post back to the chat. Empty reply means nothing to say.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) string
}

// Poller drains inbound commands from the approval channel on a fixed
// interval, independent of the scan loop.
type Poller struct {
	client     *TelegramClient
	dispatcher Dispatcher
	interval   time.Duration
	offset     int64
	logger     *zap.Logger
}

// NewPoller constructs a command poller.
func NewPoller(client *TelegramClient, dispatcher Dispatcher, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client:     client,
		dispatcher: dispatcher,
		interval:   interval,
		logger:     logger,
	}
}

// Run polls until the context is cancelled. A failed poll logs and
// waits for the next tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("command-poller-started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("command-poller-stopped")
			return
		case <-ticker.C:
			if err := p.poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("command-poll-failed", zap.Error(err))
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context) error {
	updates, err := p.client.GetUpdates(ctx, p.offset, 0)
	if err != nil {
		return err
	}

	for _, u := range updates {
		p.offset = u.UpdateID + 1

		var cmd Command
		switch {
		case u.CallbackQuery != nil:
			cmd = ParseCallback(u.CallbackQuery.Data)
			if err := p.client.AnswerCallback(ctx, u.CallbackQuery.ID); err != nil {
				p.logger.Debug("answer-callback-failed", zap.Error(err))
			}
		case u.Message != nil:
			cmd = ParseCommand(u.Message.Text)
		default:
			continue
		}

		CommandsReceivedTotal.WithLabelValues(cmd.Kind.String()).Inc()
		reply := p.dispatcher.Dispatch(ctx, cmd)
		if reply == "" {
			continue
		}
		if err := p.client.SendMessage(ctx, reply); err != nil {
			p.logger.Warn("command-reply-failed", zap.Error(err))
		}
	}
	return nil
}

// String names the command kind for logs and metric labels.
func (k CommandKind) String() string {
	switch k {
	case CmdApprove:
		return "approve"
	case CmdReject:
		return "reject"
	case CmdRejectAll:
		return "reject_all"
	case CmdPending:
		return "pending"
	case CmdRefresh:
		return "refresh"
	case CmdBalance:
		return "balance"
	case CmdClosePosition:
		return "close_position"
	case CmdIncreasePosition:
		return "increase_position"
	case CmdDecreasePosition:
		return "decrease_position"
	default:
		return "unknown"
	}
}
