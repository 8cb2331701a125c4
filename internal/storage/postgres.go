package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"github.com/goccy/go-json"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStore implements Store on PostgreSQL. The ledger lives in a
// single-row table; Save rewrites the document in one statement, so a
// risk transaction is atomic at the store level too.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresStore opens a connection and ensures the ledger table exists.
func NewPostgresStore(cfg *PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS risk_ledger (
			id         INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("create ledger table: %w", err)
	}

	cfg.Logger.Info("postgres-store-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresStore{db: db, logger: cfg.Logger}, nil
}

// Load reads the ledger document; a missing row yields an empty ledger.
func (p *PostgresStore) Load(ctx context.Context) (*types.RiskLedger, error) {
	var raw []byte

	err := p.db.QueryRowContext(ctx, `SELECT document FROM risk_ledger WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.NewRiskLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select ledger: %w", err)
	}

	ledger := types.NewRiskLedger()
	err = json.Unmarshal(raw, ledger)
	if err != nil {
		return nil, fmt.Errorf("unmarshal ledger: %w", err)
	}
	if ledger.BucketExposure == nil {
		ledger.BucketExposure = make(map[types.Category]float64)
	}

	return ledger, nil
}

// Save rewrites the ledger document.
func (p *PostgresStore) Save(ctx context.Context, ledger *types.RiskLedger) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO risk_ledger (id, document, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET document = $1, updated_at = now()
	`, raw)
	if err != nil {
		return fmt.Errorf("upsert ledger: %w", err)
	}

	p.logger.Debug("ledger-saved",
		zap.Int("positions", len(ledger.Positions)),
		zap.Float64("total-exposure", ledger.TotalExposure))

	return nil
}

// Close closes the database connection.
func (p *PostgresStore) Close() error {
	p.logger.Info("closing-postgres-store")
	return p.db.Close()
}
