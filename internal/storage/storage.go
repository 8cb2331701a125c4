// Package storage persists the risk ledger document. The postgres store
// keeps the whole ledger as a single versioned JSON document so every
// risk transaction maps to one row rewrite; the memory store backs tests
// and paper trading.
package storage

import (
	"context"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

// Store is the persisted-ledger interface consumed by the risk manager.
type Store interface {
	// Load reads the ledger document, returning an empty ledger when
	// none has been written yet.
	Load(ctx context.Context) (*types.RiskLedger, error)

	// Save rewrites the ledger document.
	Save(ctx context.Context, ledger *types.RiskLedger) error

	// Close releases the underlying connection.
	Close() error
}
