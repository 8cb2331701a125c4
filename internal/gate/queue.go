package gate

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// Queue holds trades awaiting a human decision. Entries expire after
// a fixed TTL and are dropped silently on the next access. Safe for
// concurrent use by the scan loop and the command poller.
type Queue struct {
	mu      sync.Mutex
	entries []types.PendingTrade
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewQueue constructs an approval queue with the given entry TTL.
func NewQueue(ttl time.Duration, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Enqueue adds a trade to the back of the queue and returns the stored
// entry with its assigned id.
func (q *Queue) Enqueue(result types.PricingResult, market types.MarketRecord, size float64) types.PendingTrade {
	q.mu.Lock()
	defer q.mu.Unlock()

	trade := types.PendingTrade{
		ID:           uuid.New().String(),
		Result:       result,
		Market:       market,
		ProposedSize: size,
		EnqueuedAt:   q.now(),
	}
	q.entries = append(q.entries, trade)

	TradesEnqueuedTotal.Inc()
	QueueDepthGauge.Set(float64(len(q.entries)))
	q.logger.Info("trade-enqueued",
		zap.String("pending-id", trade.ID),
		zap.String("market-id", market.ID),
		zap.Float64("size", size))
	return trade
}

// List returns a copy of the live entries, oldest first.
func (q *Queue) List() []types.PendingTrade {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()

	out := make([]types.PendingTrade, len(q.entries))
	copy(out, q.entries)
	return out
}

// Len reports the number of live entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()
	return len(q.entries)
}

// AcceptOldest removes and returns the oldest live entry. A positive
// sizeOverride replaces the proposed size on the returned trade.
func (q *Queue) AcceptOldest(sizeOverride float64) (types.PendingTrade, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()

	if len(q.entries) == 0 {
		return types.PendingTrade{}, types.ErrQueueEmpty
	}

	trade := q.entries[0]
	q.entries = q.entries[1:]
	if sizeOverride > 0 {
		trade.ProposedSize = sizeOverride
	}

	TradesAcceptedTotal.Inc()
	QueueDepthGauge.Set(float64(len(q.entries)))
	q.logger.Info("trade-accepted",
		zap.String("pending-id", trade.ID),
		zap.Float64("size", trade.ProposedSize))
	return trade, nil
}

// RejectOldest removes and returns the oldest live entry.
func (q *Queue) RejectOldest() (types.PendingTrade, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()

	if len(q.entries) == 0 {
		return types.PendingTrade{}, types.ErrQueueEmpty
	}

	trade := q.entries[0]
	q.entries = q.entries[1:]

	TradesRejectedTotal.Inc()
	QueueDepthGauge.Set(float64(len(q.entries)))
	q.logger.Info("trade-rejected", zap.String("pending-id", trade.ID))
	return trade, nil
}

// RejectAll drains the queue and returns the removed entries.
func (q *Queue) RejectAll() []types.PendingTrade {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.prune()

	drained := q.entries
	q.entries = nil

	TradesRejectedTotal.Add(float64(len(drained)))
	QueueDepthGauge.Set(0)
	if len(drained) > 0 {
		q.logger.Info("queue-drained", zap.Int("rejected", len(drained)))
	}
	return drained
}

// prune drops expired entries. Caller holds the lock.
func (q *Queue) prune() {
	if q.ttl <= 0 {
		return
	}
	cutoff := q.now().Add(-q.ttl)

	live := q.entries[:0]
	for _, e := range q.entries {
		if e.EnqueuedAt.After(cutoff) {
			live = append(live, e)
			continue
		}
		TradesExpiredTotal.Inc()
		q.logger.Debug("pending-trade-expired",
			zap.String("pending-id", e.ID),
			zap.String("market-id", e.Market.ID))
	}
	q.entries = live
	QueueDepthGauge.Set(float64(len(q.entries)))
}
