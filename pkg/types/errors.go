package types

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across components.
var (
	// ErrPositionNotFound is returned when a ledger operation names a
	// position id that does not exist.
	ErrPositionNotFound = errors.New("position not found")

	// ErrPositionClosed is returned on an attempt to mutate a position
	// already in a terminal state.
	ErrPositionClosed = errors.New("position already closed")

	// ErrQueueEmpty is returned by approval-queue operations when no
	// pending trade is available.
	ErrQueueEmpty = errors.New("approval queue empty")
)

// OrderError is a failure reported by the execution gateway. The attempt
// leaves no partial state behind: a failed submit records nothing.
type OrderError struct {
	Code    string // gateway error code
	Message string
	OrderID string // set when the gateway assigned an id before failing
	TokenID string
}

func (e *OrderError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("order %s failed: %s (%s)", e.OrderID, e.Message, e.Code)
	}
	return fmt.Sprintf("order failed: %s (%s)", e.Message, e.Code)
}

// Known gateway error codes.
const (
	ErrCodeNotEnoughBalance = "INVALID_ORDER_NOT_ENOUGH_BALANCE"
	ErrCodeMinTickSize      = "INVALID_ORDER_MIN_TICK_SIZE"
	ErrCodeMarketNotReady   = "MARKET_NOT_READY"
	ErrCodeUnmatched        = "UNMATCHED"
	ErrCodeTimeout          = "TIMEOUT"
)
