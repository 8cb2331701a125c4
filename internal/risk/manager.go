// Package risk owns the risk ledger. Every mutation of shared trading
// state goes through the Manager, which serializes open/close/reset
// transactions and persists the ledger before committing them in memory.
package risk

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"go.uber.org/zap"
)

// Store persists the ledger document. Load is called once at startup;
// Save runs inside every mutating transaction, before the in-memory
// state is committed.
type Store interface {
	Load(ctx context.Context) (*types.RiskLedger, error)
	Save(ctx context.Context, ledger *types.RiskLedger) error
	Close() error
}

// Config holds risk limits.
type Config struct {
	MaxOpenPositions  int
	MaxTotalExposure  float64
	MaxBucketExposure float64
	MaxPositionSize   float64 // per-position cap in USD
	MinTradeSize      float64
	DailyLossLimit    float64 // negative
	LossCooldown      time.Duration
	Logger            *zap.Logger
}

// Manager is the single owner of the RiskLedger. All reads hand out
// clones; all writes are mutex-serialized read-modify-write-persist
// transactions, so the scan loop and the command poller can never
// interleave a mutation.
type Manager struct {
	mu     sync.Mutex
	ledger *types.RiskLedger
	store  Store
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// CheckResult is the outcome of a risk check. A refusal is a decision,
// not an error.
type CheckResult struct {
	Allowed      bool
	Reason       string
	ApprovedSize float64
}

// NewManager loads the persisted ledger and returns a Manager owning it.
func NewManager(ctx context.Context, cfg Config, store Store) (*Manager, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.DailyLossLimit >= 0 {
		return nil, fmt.Errorf("daily loss limit must be negative, got %f", cfg.DailyLossLimit)
	}

	ledger, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if ledger.BucketExposure == nil {
		ledger.BucketExposure = make(map[types.Category]float64)
	}

	m := &Manager{
		ledger: ledger,
		store:  store,
		cfg:    cfg,
		logger: cfg.Logger,
		now:    time.Now,
	}

	m.publishGauges()

	cfg.Logger.Info("risk-manager-loaded",
		zap.Int("positions", len(ledger.Positions)),
		zap.Float64("total-exposure", ledger.TotalExposure),
		zap.Float64("daily-pnl", ledger.DailyPnL))

	return m, nil
}

// Check decides whether a proposed trade may proceed and at what size.
// The approved size is the proposal shrunk to fit the per-position cap
// and the remaining total and bucket headroom, rounded down to cents.
func (m *Manager) Check(proposedSize float64, bucket types.Category) CheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	if m.ledger.Paused(now) {
		return m.refuse("paused", fmt.Sprintf("circuit breaker active until %s", m.ledger.PausedUntil.Format(time.RFC3339)))
	}

	if len(m.ledger.OpenPositions()) >= m.cfg.MaxOpenPositions {
		return m.refuse("max_positions", fmt.Sprintf("open position count at cap (%d)", m.cfg.MaxOpenPositions))
	}

	totalHeadroom := m.cfg.MaxTotalExposure - m.ledger.TotalExposure
	if totalHeadroom <= 0 {
		return m.refuse("total_exposure", fmt.Sprintf("total exposure %.2f at cap %.2f", m.ledger.TotalExposure, m.cfg.MaxTotalExposure))
	}

	bucketHeadroom := m.cfg.MaxBucketExposure - m.ledger.BucketExposure[bucket]
	if bucketHeadroom <= 0 {
		return m.refuse("bucket_exposure", fmt.Sprintf("bucket %s exposure at cap %.2f", bucket, m.cfg.MaxBucketExposure))
	}

	size := proposedSize
	size = math.Min(size, m.cfg.MaxPositionSize)
	size = math.Min(size, totalHeadroom)
	size = math.Min(size, bucketHeadroom)
	size = math.Floor(size*100) / 100 // whole cents

	if size < m.cfg.MinTradeSize {
		return m.refuse("below_min_size", fmt.Sprintf("approved size %.2f below minimum %.2f", size, m.cfg.MinTradeSize))
	}

	ChecksTotal.WithLabelValues("allowed").Inc()

	return CheckResult{Allowed: true, ApprovedSize: size}
}

func (m *Manager) refuse(label, reason string) CheckResult {
	ChecksTotal.WithLabelValues(label).Inc()
	m.logger.Debug("risk-check-refused", zap.String("reason", reason))
	return CheckResult{Allowed: false, Reason: reason}
}

// Open records a new open position and its exposure. The position must
// carry id, size, category, and entry price; status is forced to open.
func (m *Manager) Open(ctx context.Context, pos types.Position) error {
	if pos.Size <= 0 {
		return fmt.Errorf("position size must be positive, got %f", pos.Size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pos.Status = types.StatusOpen
	if pos.OpenedAt.IsZero() {
		pos.OpenedAt = m.now()
	}

	next := m.ledger.Clone()
	next.Positions = append(next.Positions, pos)
	next.TotalExposure += pos.Size
	next.BucketExposure[pos.Category] += pos.Size

	err := m.commit(ctx, next)
	if err != nil {
		return fmt.Errorf("open position %s: %w", pos.ID, err)
	}

	PositionsOpenedTotal.Inc()
	m.logger.Info("position-opened",
		zap.String("position-id", pos.ID),
		zap.String("market-id", pos.MarketID),
		zap.String("side", pos.Side),
		zap.Float64("size", pos.Size),
		zap.Float64("entry-price", pos.EntryPrice),
		zap.String("bucket", string(pos.Category)))

	return nil
}

// RecordRejected stores an audit position for a trade a human declined.
// Rejected is terminal and never contributes exposure.
func (m *Manager) RecordRejected(ctx context.Context, pos types.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos.Status = types.StatusRejected
	if pos.OpenedAt.IsZero() {
		pos.OpenedAt = m.now()
	}

	next := m.ledger.Clone()
	next.Positions = append(next.Positions, pos)

	err := m.commit(ctx, next)
	if err != nil {
		return fmt.Errorf("record rejected %s: %w", pos.ID, err)
	}

	return nil
}

// ClosePosition closes an open position at the given exit price.
// Realized pnl is (exit - entry) * size / entry, which on settlement
// collapses to shares*(1-entry) on a win and -size on a loss. Exposure
// is reduced by the original size, never by pnl. Breaching the daily
// loss limit activates the circuit breaker for the configured cooldown.
func (m *Manager) ClosePosition(ctx context.Context, positionID string, exitPrice float64, settlementRef string) (types.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.ledger.Clone()

	idx := -1
	for i := range next.Positions {
		if next.Positions[i].ID == positionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.Position{}, fmt.Errorf("close %s: %w", positionID, types.ErrPositionNotFound)
	}

	pos := &next.Positions[idx]
	if pos.Status != types.StatusOpen {
		return types.Position{}, fmt.Errorf("close %s (status %s): %w", positionID, pos.Status, types.ErrPositionClosed)
	}

	now := m.now()
	pnl := (exitPrice - pos.EntryPrice) * pos.Size / pos.EntryPrice

	pos.Status = types.StatusClosed
	pos.ClosedAt = now
	pos.ExitPrice = exitPrice
	pos.RealizedPnL = pnl
	pos.Won = pnl >= 0
	pos.SettlementRef = settlementRef

	next.TotalExposure -= pos.Size
	next.BucketExposure[pos.Category] -= pos.Size
	next.DailyPnL += pnl

	tripped := false
	if next.DailyPnL <= m.cfg.DailyLossLimit && !next.Paused(now) {
		next.PausedUntil = now.Add(m.cfg.LossCooldown)
		tripped = true
	}

	err := m.commit(ctx, next)
	if err != nil {
		return types.Position{}, fmt.Errorf("close position %s: %w", positionID, err)
	}

	closed := m.ledger.Positions[idx]

	PositionsClosedTotal.WithLabelValues(outcomeLabel(closed.Won)).Inc()
	RealizedPnLTotal.Add(pnl)

	m.logger.Info("position-closed",
		zap.String("position-id", closed.ID),
		zap.String("market-id", closed.MarketID),
		zap.Float64("exit-price", exitPrice),
		zap.Float64("realized-pnl", pnl),
		zap.Float64("daily-pnl", m.ledger.DailyPnL))

	if tripped {
		CircuitBreakerTrips.Inc()
		m.logger.Warn("daily-loss-breaker-tripped",
			zap.Float64("daily-pnl", m.ledger.DailyPnL),
			zap.Float64("limit", m.cfg.DailyLossLimit),
			zap.Time("paused-until", m.ledger.PausedUntil))
	}

	return closed, nil
}

// AdjustPosition grows or shrinks an open position by deltaUSD as a
// single transaction. Increases consume headroom under the same caps
// as Check and are refused while the circuit breaker is active;
// reductions that would take the size to zero or below are refused in
// favor of an explicit close.
func (m *Manager) AdjustPosition(ctx context.Context, positionID string, deltaUSD float64) (types.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if deltaUSD == 0 {
		return types.Position{}, fmt.Errorf("adjust %s: zero delta", positionID)
	}

	next := m.ledger.Clone()

	idx := -1
	for i := range next.Positions {
		if next.Positions[i].ID == positionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return types.Position{}, fmt.Errorf("adjust %s: %w", positionID, types.ErrPositionNotFound)
	}

	pos := &next.Positions[idx]
	if pos.Status != types.StatusOpen {
		return types.Position{}, fmt.Errorf("adjust %s (status %s): %w", positionID, pos.Status, types.ErrPositionClosed)
	}

	if deltaUSD > 0 {
		if next.Paused(m.now()) {
			return types.Position{}, fmt.Errorf("adjust %s: trading paused until %s", positionID, next.PausedUntil.Format(time.RFC3339))
		}
		if pos.Size+deltaUSD > m.cfg.MaxPositionSize {
			return types.Position{}, fmt.Errorf("adjust %s: size %.2f exceeds position cap %.2f", positionID, pos.Size+deltaUSD, m.cfg.MaxPositionSize)
		}
		if next.TotalExposure+deltaUSD > m.cfg.MaxTotalExposure {
			return types.Position{}, fmt.Errorf("adjust %s: total exposure cap %.2f exceeded", positionID, m.cfg.MaxTotalExposure)
		}
		if next.BucketExposure[pos.Category]+deltaUSD > m.cfg.MaxBucketExposure {
			return types.Position{}, fmt.Errorf("adjust %s: bucket %s cap %.2f exceeded", positionID, pos.Category, m.cfg.MaxBucketExposure)
		}
	} else if pos.Size+deltaUSD < m.cfg.MinTradeSize {
		return types.Position{}, fmt.Errorf("adjust %s: remaining size %.2f below minimum, close instead", positionID, pos.Size+deltaUSD)
	}

	pos.Size += deltaUSD
	next.TotalExposure += deltaUSD
	next.BucketExposure[pos.Category] += deltaUSD

	err := m.commit(ctx, next)
	if err != nil {
		return types.Position{}, fmt.Errorf("adjust position %s: %w", positionID, err)
	}

	adjusted := m.ledger.Positions[idx]

	PositionsAdjustedTotal.WithLabelValues(adjustLabel(deltaUSD)).Inc()

	m.logger.Info("position-adjusted",
		zap.String("position-id", adjusted.ID),
		zap.Float64("delta", deltaUSD),
		zap.Float64("size", adjusted.Size),
		zap.Float64("total-exposure", m.ledger.TotalExposure))

	return adjusted, nil
}

func adjustLabel(delta float64) string {
	if delta > 0 {
		return "increase"
	}
	return "decrease"
}

// ResetDaily zeroes the running daily pnl. Invoked by the operator or an
// external scheduler at the day boundary; the ledger itself carries no
// day-rollover logic.
func (m *Manager) ResetDaily(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.ledger.Clone()
	next.DailyPnL = 0

	err := m.commit(ctx, next)
	if err != nil {
		return fmt.Errorf("reset daily pnl: %w", err)
	}

	m.logger.Info("daily-pnl-reset")

	return nil
}

// OpenPositions returns copies of the currently open positions.
func (m *Manager) OpenPositions() []types.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Clone().OpenPositions()
}

// Snapshot returns a deep copy of the current ledger for read-only use.
func (m *Manager) Snapshot() *types.RiskLedger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledger.Clone()
}

// commit persists the candidate ledger and, only on success, swaps it
// in. A failed save leaves both memory and store untouched. Callers
// hold m.mu.
func (m *Manager) commit(ctx context.Context, next *types.RiskLedger) error {
	err := m.store.Save(ctx, next)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	m.ledger = next
	m.publishGauges()

	return nil
}

func (m *Manager) publishGauges() {
	TotalExposureGauge.Set(m.ledger.TotalExposure)
	DailyPnLGauge.Set(m.ledger.DailyPnL)
	OpenPositionsGauge.Set(float64(len(m.ledger.OpenPositions())))
	for bucket, exposure := range m.ledger.BucketExposure {
		BucketExposureGauge.WithLabelValues(string(bucket)).Set(exposure)
	}
}

func outcomeLabel(won bool) string {
	if won {
		return "win"
	}
	return "loss"
}
