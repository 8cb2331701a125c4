package storage

import (
	"context"
	"sync"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"go.uber.org/zap"
)

// MemoryStore implements Store in process memory, for tests and paper
// trading. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.Mutex
	ledger *types.RiskLedger
	logger *zap.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{logger: logger}
}

// Load returns a copy of the stored ledger, or an empty one.
func (m *MemoryStore) Load(_ context.Context) (*types.RiskLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ledger == nil {
		return types.NewRiskLedger(), nil
	}
	return m.ledger.Clone(), nil
}

// Save stores a copy of the ledger.
func (m *MemoryStore) Save(_ context.Context, ledger *types.RiskLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ledger = ledger.Clone()
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	m.logger.Debug("closing-memory-store")
	return nil
}
