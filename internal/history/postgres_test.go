package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/price-check/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresRecorder, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return &PostgresRecorder{pool: mock}, mock
}

func TestPostgres_Migrate(t *testing.T) {
	r, mock := newMockPostgres(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS price_checks`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, r.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Record(t *testing.T) {
	r, mock := newMockPostgres(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	price := uint32(5000)

	mock.ExpectExec(`INSERT INTO price_checks`).
		WithArgs(pgxmock.AnyArg(), int64(5057), false, "Iron Ingot", int64(73), "success",
			int64(5000), int64(12), "5,000", at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := r.Record(context.Background(), 73, &model.PricedItem{
		ItemID: 5057, Name: "Iron Ingot", VendorPrice: 12, MarketPrice: &price,
		Result: model.ResultSuccess, Message: "5,000", EvaluatedAt: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordError(t *testing.T) {
	r, mock := newMockPostgres(t)

	mock.ExpectExec(`INSERT INTO price_checks`).
		WillReturnError(errors.New("connection reset"))

	err := r.Record(context.Background(), 73, &model.PricedItem{ItemID: 1, Result: model.ResultNoDataAvailable})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: insert price check 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Recent(t *testing.T) {
	r, mock := newMockPostgres(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	price := int64(900)

	cols := []string{"id", "item_id", "hq", "name", "world_id", "result", "market_price", "vendor_price", "message", "evaluated_at"}
	mock.ExpectQuery(`SELECT id, item_id, hq, name, world_id, result, market_price, vendor_price, message, evaluated_at FROM price_checks`).
		WithArgs(20).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("a", int64(2), true, "Cotton Boll", int64(73), "below_minimum", &price, int64(3), "Below minimum price", at).
			AddRow("b", int64(1), false, "Copper Ore", int64(73), "no_data_available", (*int64)(nil), int64(1), "No data available", at.Add(-time.Minute)))

	entries, err := r.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ResultBelowMinimum, entries[0].Result)
	require.NotNil(t, entries[0].MarketPrice)
	assert.Equal(t, uint32(900), *entries[0].MarketPrice)
	assert.Nil(t, entries[1].MarketPrice)
	assert.Equal(t, uint32(73), entries[1].WorldID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecentUnknownResult(t *testing.T) {
	r, mock := newMockPostgres(t)

	cols := []string{"id", "item_id", "hq", "name", "world_id", "result", "market_price", "vendor_price", "message", "evaluated_at"}
	mock.ExpectQuery(`SELECT .* FROM price_checks`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("a", int64(2), false, "x", int64(73), "bogus", (*int64)(nil), int64(0), "", time.Now()))

	_, err := r.Recent(context.Background(), 5)
	assert.ErrorContains(t, err, "unknown item result")
}
