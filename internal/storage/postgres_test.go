package storage

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &PostgresStore{db: db, logger: zap.NewNop()}, mock
}

func TestLoadEmptyLedger(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT document FROM risk_ledger WHERE id = 1`)).
		WillReturnError(sql.ErrNoRows)

	ledger, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, ledger.Positions)
	assert.NotNil(t, ledger.BucketExposure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRoundTrip(t *testing.T) {
	store, mock := newMockStore(t)

	want := types.NewRiskLedger()
	want.DailyPnL = -12.5
	want.TotalExposure = 30
	want.BucketExposure[types.CategoryWeather] = 30
	want.Positions = append(want.Positions, types.Position{
		ID:         "p1",
		MarketID:   "m1",
		Size:       30,
		EntryPrice: 0.4,
		Category:   types.CategoryWeather,
		Status:     types.StatusOpen,
	})

	raw, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT document FROM risk_ledger WHERE id = 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"document"}).AddRow(raw))

	got, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, want.DailyPnL, got.DailyPnL)
	assert.Equal(t, want.TotalExposure, got.TotalExposure)
	require.Len(t, got.Positions, 1)
	assert.Equal(t, "p1", got.Positions[0].ID)
	assert.Equal(t, types.StatusOpen, got.Positions[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO risk_ledger`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ledger := types.NewRiskLedger()
	ledger.TotalExposure = 42

	err := store.Save(context.Background(), ledger)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	ledger, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger.Positions)

	ledger.TotalExposure = 10
	ledger.BucketExposure[types.CategoryMacro] = 10
	require.NoError(t, store.Save(ctx, ledger))

	// Mutating the saved ledger afterwards must not leak into the store.
	ledger.TotalExposure = 999

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.TotalExposure)
	assert.Equal(t, 10.0, got.BucketExposure[types.CategoryMacro])
}
