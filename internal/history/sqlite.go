package history

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/price-check/internal/model"
)

// SQLiteRecorder implements Recorder using modernc.org/sqlite.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteRecorder{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS price_checks (
	id           TEXT PRIMARY KEY,
	item_id      INTEGER NOT NULL,
	hq           INTEGER NOT NULL DEFAULT 0,
	name         TEXT NOT NULL,
	world_id     INTEGER NOT NULL,
	result       TEXT NOT NULL,
	market_price INTEGER,
	vendor_price INTEGER NOT NULL DEFAULT 0,
	message      TEXT NOT NULL,
	evaluated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_price_checks_evaluated_at ON price_checks(evaluated_at);
CREATE INDEX IF NOT EXISTS idx_price_checks_item_id ON price_checks(item_id);
`

// Migrate creates the history table.
func (r *SQLiteRecorder) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

// Record inserts one evaluation.
func (r *SQLiteRecorder) Record(ctx context.Context, worldID uint32, item *model.PricedItem) error {
	if item == nil {
		return eris.New("sqlite: nil item")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO price_checks (id, item_id, hq, name, world_id, result, market_price, vendor_price, message, evaluated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), item.ItemID, item.HQ, item.Name, worldID, item.Result.String(),
		nullablePrice(item.MarketPrice), item.VendorPrice, item.Message, item.EvaluatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert price check %d", item.ItemID)
	}
	return nil
}

// Recent lists the newest evaluations first.
func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, item_id, hq, name, world_id, result, market_price, vendor_price, message, evaluated_at
		 FROM price_checks ORDER BY evaluated_at DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list price checks")
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			result string
			price  sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.ItemID, &e.HQ, &e.Name, &e.WorldID, &result, &price, &e.VendorPrice, &e.Message, &e.EvaluatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan price check")
		}
		if e.Result, err = model.ParseItemResult(result); err != nil {
			return nil, err
		}
		if price.Valid {
			e.MarketPrice = priceFromNullable(&price.Int64)
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate price checks")
}
