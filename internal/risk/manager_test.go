package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubStore keeps the ledger in memory and can be told to fail saves.
type stubStore struct {
	ledger  *types.RiskLedger
	saveErr error
	saves   int
}

func (s *stubStore) Load(_ context.Context) (*types.RiskLedger, error) {
	if s.ledger == nil {
		return types.NewRiskLedger(), nil
	}
	return s.ledger, nil
}

func (s *stubStore) Save(_ context.Context, ledger *types.RiskLedger) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.ledger = ledger.Clone()
	return nil
}

func (s *stubStore) Close() error { return nil }

func testConfig() Config {
	return Config{
		MaxOpenPositions:  10,
		MaxTotalExposure:  250,
		MaxBucketExposure: 100,
		MaxPositionSize:   50,
		MinTradeSize:      1,
		DailyLossLimit:    -40,
		LossCooldown:      24 * time.Hour,
		Logger:            zap.NewNop(),
	}
}

func newTestManager(t *testing.T, cfg Config) (*Manager, *stubStore) {
	t.Helper()

	store := &stubStore{}
	m, err := NewManager(context.Background(), cfg, store)
	require.NoError(t, err)

	return m, store
}

func openPosition(id string, bucket types.Category, size, entry float64) types.Position {
	return types.Position{
		ID:         id,
		MarketID:   "mkt-" + id,
		Question:   "test question",
		Side:       "Yes",
		TokenID:    "tok-" + id,
		Size:       size,
		EntryPrice: entry,
		Category:   bucket,
	}
}

func TestCheckApprovesAndShrinks(t *testing.T) {
	m, _ := newTestManager(t, testConfig())

	res := m.Check(30, types.CategoryWeather)
	require.True(t, res.Allowed)
	assert.Equal(t, 30.0, res.ApprovedSize)

	// Per-position cap shrinks oversized proposals.
	res = m.Check(500, types.CategoryWeather)
	require.True(t, res.Allowed)
	assert.Equal(t, 50.0, res.ApprovedSize)
}

func TestCheckRoundsDownToCents(t *testing.T) {
	m, _ := newTestManager(t, testConfig())

	res := m.Check(12.3456, types.CategoryMacro)
	require.True(t, res.Allowed)
	assert.Equal(t, 12.34, res.ApprovedSize)
}

func TestCheckBucketHeadroomShrink(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBucketExposure = 50
	m, _ := newTestManager(t, cfg)

	ctx := context.Background()

	res := m.Check(30, types.CategoryPolitics)
	require.True(t, res.Allowed)
	require.NoError(t, m.Open(ctx, openPosition("p1", types.CategoryPolitics, res.ApprovedSize, 0.5)))
	assert.Equal(t, 30.0, m.Snapshot().BucketExposure[types.CategoryPolitics])

	// Second $30 proposal shrinks to the $20 of bucket headroom.
	res = m.Check(30, types.CategoryPolitics)
	require.True(t, res.Allowed)
	assert.Equal(t, 20.0, res.ApprovedSize)
}

func TestCheckNeverExceedsTotalCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTotalExposure = 100
	cfg.MaxPositionSize = 100
	m, _ := newTestManager(t, cfg)

	ctx := context.Background()
	require.NoError(t, m.Open(ctx, openPosition("p1", types.CategoryWeather, 80, 0.5)))

	res := m.Check(50, types.CategoryMacro)
	require.True(t, res.Allowed)
	assert.LessOrEqual(t, m.Snapshot().TotalExposure+res.ApprovedSize, 100.0)

	require.NoError(t, m.Open(ctx, openPosition("p2", types.CategoryMacro, res.ApprovedSize, 0.5)))

	res = m.Check(10, types.CategoryMacro)
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "total exposure")
}

func TestCheckRefusals(t *testing.T) {
	cfg := testConfig()
	cfg.MaxOpenPositions = 1
	m, _ := newTestManager(t, cfg)

	ctx := context.Background()
	require.NoError(t, m.Open(ctx, openPosition("p1", types.CategoryWeather, 10, 0.5)))

	res := m.Check(10, types.CategoryWeather)
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "position count")
}

func TestCheckBelowMinSize(t *testing.T) {
	cfg := testConfig()
	cfg.MinTradeSize = 5
	m, _ := newTestManager(t, cfg)

	res := m.Check(0.50, types.CategoryWeather)
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "below minimum")
}

func TestExposureConservation(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	require.NoError(t, m.Open(ctx, openPosition("a", types.CategoryWeather, 30, 0.5)))
	require.NoError(t, m.Open(ctx, openPosition("b", types.CategoryWeather, 20, 0.4)))
	require.NoError(t, m.Open(ctx, openPosition("c", types.CategoryMacro, 25, 0.6)))

	assertInvariants := func() {
		snap := m.Snapshot()
		var total float64
		buckets := make(map[types.Category]float64)
		for _, p := range snap.Positions {
			if p.Status == types.StatusOpen {
				total += p.Size
				buckets[p.Category] += p.Size
			}
		}
		assert.InDelta(t, total, snap.TotalExposure, 1e-9)
		for b, want := range buckets {
			assert.InDelta(t, want, snap.BucketExposure[b], 1e-9)
		}
		assert.GreaterOrEqual(t, snap.TotalExposure, 0.0)
		for _, v := range snap.BucketExposure {
			assert.GreaterOrEqual(t, v, -1e-9)
		}
	}

	assertInvariants()

	_, err := m.ClosePosition(ctx, "b", 0.8, "")
	require.NoError(t, err)
	assertInvariants()

	_, err = m.ClosePosition(ctx, "a", 0.2, "")
	require.NoError(t, err)
	assertInvariants()

	_, err = m.ClosePosition(ctx, "c", 1.0, "settle-1")
	require.NoError(t, err)
	assertInvariants()

	assert.InDelta(t, 0.0, m.Snapshot().TotalExposure, 1e-9)
}

func TestClosePnLFormula(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	// Entry 0.13 with $13 committed buys 100 shares. Settlement at 1.0
	// pays shares*(1-entry) = 100*0.87 = 87.
	require.NoError(t, m.Open(ctx, openPosition("w", types.CategoryWeather, 13, 0.13)))

	closed, err := m.ClosePosition(ctx, "w", 1.0, "resolved")
	require.NoError(t, err)

	assert.InDelta(t, 87.0, closed.RealizedPnL, 1e-9)
	assert.True(t, closed.Won)
	assert.Equal(t, "resolved", closed.SettlementRef)

	// Exposure reduced by the original size, not by pnl.
	assert.InDelta(t, 0.0, m.Snapshot().TotalExposure, 1e-9)
}

func TestCloseLossEqualsSize(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	require.NoError(t, m.Open(ctx, openPosition("l", types.CategoryMacro, 20, 0.4)))

	closed, err := m.ClosePosition(ctx, "l", 0.0, "resolved")
	require.NoError(t, err)

	assert.InDelta(t, -20.0, closed.RealizedPnL, 1e-9)
	assert.False(t, closed.Won)
}

func TestTerminalStatusesNeverTransition(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	require.NoError(t, m.Open(ctx, openPosition("x", types.CategoryWeather, 10, 0.5)))
	_, err := m.ClosePosition(ctx, "x", 0.6, "")
	require.NoError(t, err)

	_, err = m.ClosePosition(ctx, "x", 0.9, "")
	assert.ErrorIs(t, err, types.ErrPositionClosed)

	rej := openPosition("r", types.CategoryWeather, 10, 0.5)
	require.NoError(t, m.RecordRejected(ctx, rej))

	_, err = m.ClosePosition(ctx, "r", 0.9, "")
	assert.ErrorIs(t, err, types.ErrPositionClosed)
}

func TestCloseUnknownPosition(t *testing.T) {
	m, _ := newTestManager(t, testConfig())

	_, err := m.ClosePosition(context.Background(), "ghost", 0.5, "")
	assert.ErrorIs(t, err, types.ErrPositionNotFound)
}

func TestDailyLossCircuitBreaker(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	// Losing $40 on a $1000 bankroll is the configured -4% limit.
	require.NoError(t, m.Open(ctx, openPosition("b1", types.CategoryCryptoBinary, 40, 0.5)))

	_, err := m.ClosePosition(ctx, "b1", 0.0, "")
	require.NoError(t, err)

	res := m.Check(10, types.CategoryWeather)
	assert.False(t, res.Allowed)
	assert.Contains(t, res.Reason, "circuit breaker")

	// After the cooldown elapses, trading resumes.
	now = now.Add(25 * time.Hour)
	res = m.Check(10, types.CategoryWeather)
	assert.True(t, res.Allowed)
}

func TestResetDaily(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	require.NoError(t, m.Open(ctx, openPosition("p", types.CategoryWeather, 10, 0.5)))
	_, err := m.ClosePosition(ctx, "p", 0.4, "")
	require.NoError(t, err)
	require.NotZero(t, m.Snapshot().DailyPnL)

	require.NoError(t, m.ResetDaily(ctx))
	assert.Zero(t, m.Snapshot().DailyPnL)
}

func TestFailedSaveLeavesStateUntouched(t *testing.T) {
	m, store := newTestManager(t, testConfig())
	ctx := context.Background()

	store.saveErr = errors.New("disk full")

	err := m.Open(ctx, openPosition("p", types.CategoryWeather, 10, 0.5))
	require.Error(t, err)

	snap := m.Snapshot()
	assert.Empty(t, snap.Positions)
	assert.Zero(t, snap.TotalExposure)
}

func TestEveryMutationPersists(t *testing.T) {
	m, store := newTestManager(t, testConfig())
	ctx := context.Background()

	require.NoError(t, m.Open(ctx, openPosition("p", types.CategoryWeather, 10, 0.5)))
	_, err := m.AdjustPosition(ctx, "p", 5)
	require.NoError(t, err)
	_, err = m.ClosePosition(ctx, "p", 0.6, "")
	require.NoError(t, err)
	require.NoError(t, m.ResetDaily(ctx))

	assert.Equal(t, 4, store.saves)
}

func TestAdjustPosition(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	require.NoError(t, m.Open(ctx, openPosition("p", types.CategoryWeather, 20, 0.5)))

	adjusted, err := m.AdjustPosition(ctx, "p", 10)
	require.NoError(t, err)
	assert.Equal(t, 30.0, adjusted.Size)

	snap := m.Snapshot()
	assert.Equal(t, 30.0, snap.TotalExposure)
	assert.Equal(t, 30.0, snap.BucketExposure[types.CategoryWeather])

	adjusted, err = m.AdjustPosition(ctx, "p", -10)
	require.NoError(t, err)
	assert.Equal(t, 20.0, adjusted.Size)

	snap = m.Snapshot()
	assert.Equal(t, 20.0, snap.TotalExposure)
	assert.Equal(t, 20.0, snap.BucketExposure[types.CategoryWeather])
}

func TestAdjustPositionRefusals(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPositionSize = 40
	cfg.MaxBucketExposure = 45
	m, _ := newTestManager(t, cfg)
	ctx := context.Background()

	require.NoError(t, m.Open(ctx, openPosition("p", types.CategoryWeather, 30, 0.5)))

	// Over the per-position cap.
	_, err := m.AdjustPosition(ctx, "p", 15)
	require.Error(t, err)

	// Over the bucket cap.
	require.NoError(t, m.Open(ctx, openPosition("p2", types.CategoryWeather, 10, 0.5)))
	_, err = m.AdjustPosition(ctx, "p2", 8)
	require.Error(t, err)

	// Reduction to below minimum: close instead.
	_, err = m.AdjustPosition(ctx, "p2", -9.5)
	require.Error(t, err)

	// Closed positions are immutable.
	_, errClose := m.ClosePosition(ctx, "p", 0.6, "")
	require.NoError(t, errClose)
	_, err = m.AdjustPosition(ctx, "p", 5)
	assert.ErrorIs(t, err, types.ErrPositionClosed)

	// Refusals leave exposure untouched.
	snap := m.Snapshot()
	assert.Equal(t, 10.0, snap.TotalExposure)
}

func TestAdjustPositionRefusedWhilePaused(t *testing.T) {
	m, _ := newTestManager(t, testConfig())
	ctx := context.Background()

	require.NoError(t, m.Open(ctx, openPosition("p", types.CategoryWeather, 20, 0.5)))
	require.NoError(t, m.Open(ctx, openPosition("loser", types.CategoryMacro, 45, 0.9)))

	// Losing 45 on a -40 limit trips the breaker.
	_, err := m.ClosePosition(ctx, "loser", 0, "")
	require.NoError(t, err)

	_, err = m.AdjustPosition(ctx, "p", 10)
	require.Error(t, err, "increase refused while paused")

	// Reductions stay allowed.
	_, err = m.AdjustPosition(ctx, "p", -10)
	assert.NoError(t, err)
}
