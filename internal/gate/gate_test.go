package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

type stubExecutor struct {
	executed []types.PendingTrade
	err      error
}

func (s *stubExecutor) Execute(_ context.Context, trade types.PendingTrade) error {
	if s.err != nil {
		return s.err
	}
	s.executed = append(s.executed, trade)
	return nil
}

type stubNotifier struct {
	alerts []types.PendingTrade
	err    error
}

func (s *stubNotifier) TradeAlert(_ context.Context, trade types.PendingTrade) error {
	if s.err != nil {
		return s.err
	}
	s.alerts = append(s.alerts, trade)
	return nil
}

func autoResult(fair, implied, confidence float64) types.PricingResult {
	return types.PricingResult{
		MarketID:    "m1",
		Side:        "Yes",
		TokenID:     "tok",
		Model:       types.ModelWeather,
		FairProb:    fair,
		ImpliedProb: implied,
		Confidence:  confidence,
	}
}

func newTestGate(exec Executor, notifier Notifier) (*Gate, *Queue) {
	q := NewQueue(2*time.Hour, zap.NewNop())
	g := NewGate(Config{AutoEdge: 10, AutoConfidence: 80, AutoMaxSize: 50}, q, exec, notifier)
	return g, q
}

func TestRouteAutoExecutes(t *testing.T) {
	exec := &stubExecutor{}
	notifier := &stubNotifier{}
	g, q := newTestGate(exec, notifier)

	// Edge 20, confidence 85, size 25: clears every threshold.
	err := g.Route(context.Background(), autoResult(0.70, 0.50, 85), types.MarketRecord{ID: "m1"}, 25)
	require.NoError(t, err)
	require.Len(t, exec.executed, 1)
	assert.Equal(t, 25.0, exec.executed[0].ProposedSize)
	assert.Zero(t, q.Len())
	assert.Empty(t, notifier.alerts)
}

func TestRouteEnqueues(t *testing.T) {
	tests := []struct {
		name   string
		result types.PricingResult
		size   float64
	}{
		{"edge below threshold", autoResult(0.55, 0.50, 90), 25},
		{"confidence below threshold", autoResult(0.70, 0.50, 70), 25},
		{"size above cap", autoResult(0.70, 0.50, 90), 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &stubExecutor{}
			notifier := &stubNotifier{}
			g, q := newTestGate(exec, notifier)

			err := g.Route(context.Background(), tt.result, types.MarketRecord{ID: "m1"}, tt.size)
			require.NoError(t, err)
			assert.Empty(t, exec.executed)
			assert.Equal(t, 1, q.Len())
			require.Len(t, notifier.alerts, 1)
			assert.NotEmpty(t, notifier.alerts[0].ID)
		})
	}
}

func TestRouteExecutionFailure(t *testing.T) {
	exec := &stubExecutor{err: errors.New("gateway rejected")}
	g, q := newTestGate(exec, nil)

	err := g.Route(context.Background(), autoResult(0.70, 0.50, 90), types.MarketRecord{ID: "m1"}, 25)
	require.Error(t, err)
	assert.Zero(t, q.Len(), "failed execution must not fall back to the queue")
}

func TestRouteNotifierFailureStillQueues(t *testing.T) {
	g, q := newTestGate(&stubExecutor{}, &stubNotifier{err: errors.New("channel down")})

	err := g.Route(context.Background(), autoResult(0.55, 0.50, 90), types.MarketRecord{ID: "m1"}, 25)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
}

func TestQueueAcceptOldest(t *testing.T) {
	q := NewQueue(2*time.Hour, zap.NewNop())

	first := q.Enqueue(autoResult(0.60, 0.50, 70), types.MarketRecord{ID: "m1"}, 30)
	q.Enqueue(autoResult(0.65, 0.50, 75), types.MarketRecord{ID: "m2"}, 40)

	got, err := q.AcceptOldest(0)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 30.0, got.ProposedSize)
	assert.Equal(t, 1, q.Len())
}

func TestQueueAcceptOldestSizeOverride(t *testing.T) {
	q := NewQueue(2*time.Hour, zap.NewNop())
	q.Enqueue(autoResult(0.60, 0.50, 70), types.MarketRecord{ID: "m1"}, 30)

	got, err := q.AcceptOldest(12.5)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.ProposedSize)
}

func TestQueueRejectOldest(t *testing.T) {
	q := NewQueue(2*time.Hour, zap.NewNop())
	first := q.Enqueue(autoResult(0.60, 0.50, 70), types.MarketRecord{ID: "m1"}, 30)
	q.Enqueue(autoResult(0.65, 0.50, 75), types.MarketRecord{ID: "m2"}, 40)

	got, err := q.RejectOldest()
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, 1, q.Len())
}

func TestQueueRejectAll(t *testing.T) {
	q := NewQueue(2*time.Hour, zap.NewNop())
	q.Enqueue(autoResult(0.60, 0.50, 70), types.MarketRecord{ID: "m1"}, 30)
	q.Enqueue(autoResult(0.65, 0.50, 75), types.MarketRecord{ID: "m2"}, 40)

	drained := q.RejectAll()
	assert.Len(t, drained, 2)
	assert.Zero(t, q.Len())
}

func TestQueueEmpty(t *testing.T) {
	q := NewQueue(2*time.Hour, zap.NewNop())

	_, err := q.AcceptOldest(0)
	assert.ErrorIs(t, err, types.ErrQueueEmpty)
	_, err = q.RejectOldest()
	assert.ErrorIs(t, err, types.ErrQueueEmpty)
	assert.Empty(t, q.RejectAll())
}

func TestQueueTTLExpiry(t *testing.T) {
	q := NewQueue(2*time.Hour, zap.NewNop())

	base := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return base }
	stale := q.Enqueue(autoResult(0.60, 0.50, 70), types.MarketRecord{ID: "m1"}, 30)

	q.now = func() time.Time { return base.Add(90 * time.Minute) }
	fresh := q.Enqueue(autoResult(0.65, 0.50, 75), types.MarketRecord{ID: "m2"}, 40)

	// Past the first entry's TTL but not the second's.
	q.now = func() time.Time { return base.Add(2*time.Hour + time.Minute) }

	list := q.List()
	require.Len(t, list, 1)
	assert.Equal(t, fresh.ID, list[0].ID)
	assert.NotEqual(t, stale.ID, list[0].ID)

	got, err := q.AcceptOldest(0)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, got.ID)
}

func TestQueueListIsACopy(t *testing.T) {
	q := NewQueue(2*time.Hour, zap.NewNop())
	q.Enqueue(autoResult(0.60, 0.50, 70), types.MarketRecord{ID: "m1"}, 30)

	list := q.List()
	list[0].ProposedSize = 999

	again := q.List()
	assert.Equal(t, 30.0, again[0].ProposedSize)
}
