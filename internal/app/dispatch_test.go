package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GooglyEyedGuru/polymarket-edge/internal/gate"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/notify"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/risk"
	"github.com/GooglyEyedGuru/polymarket-edge/internal/storage"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

type stubGateway struct {
	orders    []stubOrder
	submitErr error
	book      *types.OrderBook
	bookErr   error
}

type stubOrder struct {
	tokenID string
	side    string
	price   float64
	size    float64
}

func (s *stubGateway) Submit(_ context.Context, tokenID, side string, price, size float64) (*types.OrderResult, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	s.orders = append(s.orders, stubOrder{tokenID, side, price, size})
	return &types.OrderResult{OrderID: "ord-1"}, nil
}

func (s *stubGateway) OrderBook(_ context.Context, _ string) (*types.OrderBook, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return s.book, nil
}

func newTestRisk(t *testing.T) *risk.Manager {
	t.Helper()
	m, err := risk.NewManager(context.Background(), risk.Config{
		MaxOpenPositions:  10,
		MaxTotalExposure:  250,
		MaxBucketExposure: 100,
		MaxPositionSize:   50,
		MinTradeSize:      1,
		DailyLossLimit:    -40,
		LossCooldown:      24 * time.Hour,
		Logger:            zap.NewNop(),
	}, storage.NewMemoryStore(zap.NewNop()))
	require.NoError(t, err)
	return m
}

func pendingTrade(size float64) types.PendingTrade {
	return types.PendingTrade{
		ID: "pt-1",
		Result: types.PricingResult{
			MarketID:    "m1",
			Side:        "No",
			TokenID:     "tok-no",
			Model:       types.ModelArbitrage,
			FairProb:    0.5,
			ImpliedProb: 0.42,
			Confidence:  95,
		},
		Market: types.MarketRecord{
			ID:       "m1",
			Question: "Will it settle above the strike?",
			Category: types.CategoryCryptoBinary,
			Tokens: []types.OutcomeToken{
				{Outcome: "Yes", TokenID: "tok-yes", Price: 0.48},
				{Outcome: "No", TokenID: "tok-no", Price: 0.42},
			},
		},
		ProposedSize: size,
		EnqueuedAt:   time.Now(),
	}
}

func TestTraderExecute(t *testing.T) {
	gw := &stubGateway{}
	riskMgr := newTestRisk(t)
	tr := NewTrader(gw, riskMgr, 0.02, zap.NewNop())

	require.NoError(t, tr.Execute(context.Background(), pendingTrade(21)))

	require.Len(t, gw.orders, 1)
	order := gw.orders[0]
	assert.Equal(t, "tok-no", order.tokenID)
	assert.Equal(t, "BUY", order.side)
	// Entry comes from the market's current token price.
	assert.Equal(t, 0.42, order.price)
	assert.InDelta(t, 50.0, order.size, 1e-9, "shares = 21 / 0.42")

	snap := riskMgr.Snapshot()
	require.Len(t, snap.Positions, 1)
	pos := snap.Positions[0]
	assert.Equal(t, types.StatusOpen, pos.Status)
	assert.Equal(t, 21.0, pos.Size)
	assert.Equal(t, 0.42, pos.EntryPrice)
	assert.Equal(t, 21.0, snap.TotalExposure)
}

func TestTraderExecutesEveryBasketLeg(t *testing.T) {
	gw := &stubGateway{}
	riskMgr := newTestRisk(t)
	tr := NewTrader(gw, riskMgr, 0.02, zap.NewNop())

	// An arbitrage basket arrives as one result per leg; executing each
	// builds the full basket, never a lone leg sized as riskless.
	yesLeg := pendingTrade(12)
	yesLeg.Result.Side = "Yes"
	yesLeg.Result.TokenID = "tok-yes"
	yesLeg.Result.ImpliedProb = 0.48
	noLeg := pendingTrade(21)

	require.NoError(t, tr.Execute(context.Background(), yesLeg))
	require.NoError(t, tr.Execute(context.Background(), noLeg))

	require.Len(t, gw.orders, 2)
	assert.Equal(t, "tok-yes", gw.orders[0].tokenID)
	assert.Equal(t, 0.48, gw.orders[0].price)
	assert.Equal(t, "tok-no", gw.orders[1].tokenID)
	assert.Equal(t, 0.42, gw.orders[1].price)

	snap := riskMgr.Snapshot()
	require.Len(t, snap.Positions, 2)
	assert.Equal(t, 33.0, snap.TotalExposure)
}

func TestTraderExecuteGatewayFailure(t *testing.T) {
	gw := &stubGateway{submitErr: errors.New("INVALID_ORDER_NOT_ENOUGH_BALANCE")}
	riskMgr := newTestRisk(t)
	tr := NewTrader(gw, riskMgr, 0.02, zap.NewNop())

	require.Error(t, tr.Execute(context.Background(), pendingTrade(21)))

	snap := riskMgr.Snapshot()
	assert.Empty(t, snap.Positions, "failed execution creates no partial state")
	assert.Zero(t, snap.TotalExposure)
}

func newTestDispatcher(t *testing.T, gw *stubGateway) (*Dispatcher, *gate.Queue, *risk.Manager) {
	t.Helper()
	riskMgr := newTestRisk(t)
	queue := gate.NewQueue(2*time.Hour, zap.NewNop())
	tr := NewTrader(gw, riskMgr, 0.02, zap.NewNop())
	return NewDispatcher(queue, tr, riskMgr, 1000, zap.NewNop()), queue, riskMgr
}

func TestDispatchApprove(t *testing.T) {
	gw := &stubGateway{}
	d, queue, riskMgr := newTestDispatcher(t, gw)

	trade := pendingTrade(21)
	queue.Enqueue(trade.Result, trade.Market, trade.ProposedSize)

	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdApprove, Size: 15})
	assert.Contains(t, reply, "Opened $15.00")

	snap := riskMgr.Snapshot()
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, 15.0, snap.Positions[0].Size, "size override applied")
	assert.Zero(t, queue.Len())
}

func TestDispatchApproveEmptyQueue(t *testing.T) {
	d, _, _ := newTestDispatcher(t, &stubGateway{})
	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdApprove})
	assert.Equal(t, "No pending trades.", reply)
}

func TestDispatchApproveExecutionFailure(t *testing.T) {
	gw := &stubGateway{submitErr: errors.New("market not ready")}
	d, queue, riskMgr := newTestDispatcher(t, gw)

	trade := pendingTrade(21)
	queue.Enqueue(trade.Result, trade.Market, trade.ProposedSize)

	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdApprove})
	assert.Contains(t, reply, "position not recorded")
	assert.Empty(t, riskMgr.Snapshot().Positions)
}

func TestDispatchReject(t *testing.T) {
	d, queue, riskMgr := newTestDispatcher(t, &stubGateway{})

	trade := pendingTrade(21)
	queue.Enqueue(trade.Result, trade.Market, trade.ProposedSize)

	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdReject})
	assert.Contains(t, reply, "Rejected")

	snap := riskMgr.Snapshot()
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, types.StatusRejected, snap.Positions[0].Status)
	assert.Zero(t, snap.TotalExposure, "rejected rows carry no exposure")
}

func TestDispatchRejectAll(t *testing.T) {
	d, queue, riskMgr := newTestDispatcher(t, &stubGateway{})

	trade := pendingTrade(21)
	queue.Enqueue(trade.Result, trade.Market, trade.ProposedSize)
	queue.Enqueue(trade.Result, trade.Market, 30)

	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdRejectAll})
	assert.Contains(t, reply, "Rejected 2")
	assert.Len(t, riskMgr.Snapshot().Positions, 2)
}

func TestDispatchPendingAndBalance(t *testing.T) {
	d, queue, _ := newTestDispatcher(t, &stubGateway{})

	assert.Equal(t, "No pending trades.", d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdPending}))

	trade := pendingTrade(21)
	queue.Enqueue(trade.Result, trade.Market, trade.ProposedSize)

	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdPending})
	assert.Contains(t, reply, "Pending trades: 1")
	assert.Contains(t, reply, trade.Market.Question)

	balance := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdBalance})
	assert.Contains(t, balance, "Bankroll $1000.00")
	assert.Contains(t, balance, "Available $1000.00")
}

func TestDispatchClosePosition(t *testing.T) {
	gw := &stubGateway{book: &types.OrderBook{
		TokenID: "tok-no",
		Bids:    []types.PriceLevel{{Price: 0.55, Size: 500}},
		Asks:    []types.PriceLevel{{Price: 0.65, Size: 500}},
	}}
	d, queue, riskMgr := newTestDispatcher(t, gw)

	trade := pendingTrade(21)
	queue.Enqueue(trade.Result, trade.Market, trade.ProposedSize)
	require.Contains(t, d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdApprove}), "Opened")

	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdClosePosition, Index: 0})
	assert.Contains(t, reply, "Closed")

	snap := riskMgr.Snapshot()
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, types.StatusClosed, snap.Positions[0].Status)
	// Exit at mid 0.60 shaded 2%.
	assert.InDelta(t, 0.588, snap.Positions[0].ExitPrice, 1e-9)
	assert.Zero(t, snap.TotalExposure)
}

func TestDispatchAdjustPosition(t *testing.T) {
	gw := &stubGateway{book: &types.OrderBook{
		TokenID: "tok-no",
		Bids:    []types.PriceLevel{{Price: 0.40, Size: 500}},
		Asks:    []types.PriceLevel{{Price: 0.44, Size: 500}},
	}}
	d, queue, riskMgr := newTestDispatcher(t, gw)

	trade := pendingTrade(21)
	queue.Enqueue(trade.Result, trade.Market, trade.ProposedSize)
	require.Contains(t, d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdApprove}), "Opened")

	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdIncreasePosition, Index: 0})
	assert.Contains(t, reply, "size now $31.00")
	assert.Equal(t, 31.0, riskMgr.Snapshot().TotalExposure)

	reply = d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdDecreasePosition, Index: 0})
	assert.Contains(t, reply, "size now $21.00")
	assert.Equal(t, 21.0, riskMgr.Snapshot().TotalExposure)
}

func TestDispatchBadIndex(t *testing.T) {
	d, _, _ := newTestDispatcher(t, &stubGateway{})
	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdClosePosition, Index: 3})
	assert.Contains(t, reply, "No open position at index 3")
}

func TestDispatchUnknown(t *testing.T) {
	d, _, _ := newTestDispatcher(t, &stubGateway{})
	reply := d.Dispatch(context.Background(), notify.Command{Kind: notify.CmdUnknown, Raw: "do something"})
	assert.Contains(t, reply, "Unrecognized command")
	assert.Contains(t, reply, "do something")
}
