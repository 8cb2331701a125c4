package types

import "time"

// PositionStatus is the lifecycle state of a position.
//
// Legal transitions:
//
//	pending_approval -> open | rejected
//	open             -> closed
//
// closed and rejected are terminal. A closed position must never be
// mutated again.
type PositionStatus string

const (
	StatusPendingApproval PositionStatus = "pending_approval"
	StatusOpen            PositionStatus = "open"
	StatusClosed          PositionStatus = "closed"
	StatusRejected        PositionStatus = "rejected"
)

// Terminal reports whether no further transitions are allowed.
func (s PositionStatus) Terminal() bool {
	return s == StatusClosed || s == StatusRejected
}

// Position is one trade through its lifecycle. Entry fields are set at
// open and never change; the Closed* fields are set exactly once on close.
type Position struct {
	ID         string   `json:"id"`
	MarketID   string   `json:"market_id"`
	Question   string   `json:"question"`
	Side       string   `json:"side"`
	TokenID    string   `json:"token_id"`
	Size       float64  `json:"size"`        // committed USD
	EntryPrice float64  `json:"entry_price"` // [0,1]
	FairProb   float64  `json:"fair_prob"`   // fair estimate at entry
	Edge       float64  `json:"edge"`        // edge at entry, pct points
	Confidence float64  `json:"confidence"`  // confidence at entry
	Category   Category `json:"category"`    // exposure bucket

	Status   PositionStatus `json:"status"`
	OpenedAt time.Time      `json:"opened_at"`

	ClosedAt      time.Time `json:"closed_at,omitempty"`
	ExitPrice     float64   `json:"exit_price,omitempty"`
	RealizedPnL   float64   `json:"realized_pnl,omitempty"`
	Won           bool      `json:"won,omitempty"`
	SettlementRef string    `json:"settlement_ref,omitempty"`
}

// Shares converts committed USD into outcome-share units at entry.
func (p *Position) Shares() float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	return p.Size / p.EntryPrice
}

// PendingTrade is a sized opportunity waiting for human approval.
type PendingTrade struct {
	ID           string        `json:"id"`
	Result       PricingResult `json:"result"`
	Market       MarketRecord  `json:"market"`
	ProposedSize float64       `json:"proposed_size"`
	EnqueuedAt   time.Time     `json:"enqueued_at"`
}

// RiskLedger is the single shared mutable aggregate. Only the risk
// manager mutates it; everyone else gets snapshots.
//
// Invariants after every transaction:
//
//	TotalExposure      == sum of Size over positions with Status == open
//	BucketExposure[b]  == sum of Size over open positions in category b
type RiskLedger struct {
	Positions      []Position           `json:"positions"`
	DailyPnL       float64              `json:"daily_pnl"`
	TotalExposure  float64              `json:"total_exposure"`
	BucketExposure map[Category]float64 `json:"bucket_exposure"`
	PausedUntil    time.Time            `json:"paused_until,omitempty"`
}

// NewRiskLedger returns an empty ledger with an initialized bucket map.
func NewRiskLedger() *RiskLedger {
	return &RiskLedger{
		Positions:      []Position{},
		BucketExposure: make(map[Category]float64),
	}
}

// OpenPositions returns the positions currently open.
func (l *RiskLedger) OpenPositions() []Position {
	open := make([]Position, 0, len(l.Positions))
	for _, p := range l.Positions {
		if p.Status == StatusOpen {
			open = append(open, p)
		}
	}
	return open
}

// Paused reports whether the circuit breaker is active at the given time.
func (l *RiskLedger) Paused(now time.Time) bool {
	return !l.PausedUntil.IsZero() && now.Before(l.PausedUntil)
}

// Clone returns a deep copy safe to hand outside the risk manager.
func (l *RiskLedger) Clone() *RiskLedger {
	cp := &RiskLedger{
		Positions:      make([]Position, len(l.Positions)),
		DailyPnL:       l.DailyPnL,
		TotalExposure:  l.TotalExposure,
		BucketExposure: make(map[Category]float64, len(l.BucketExposure)),
		PausedUntil:    l.PausedUntil,
	}
	copy(cp.Positions, l.Positions)
	for k, v := range l.BucketExposure {
		cp.BucketExposure[k] = v
	}
	return cp
}
