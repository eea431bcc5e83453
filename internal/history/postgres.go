package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/price-check/internal/model"
)

// Pool is the subset of pgxpool.Pool the recorder uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresRecorder implements Recorder using pgxpool.
type PostgresRecorder struct {
	pool Pool
}

// NewPostgres creates a PostgresRecorder with a small connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresRecorder, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresRecorder{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS price_checks (
	id           TEXT PRIMARY KEY,
	item_id      BIGINT NOT NULL,
	hq           BOOLEAN NOT NULL DEFAULT false,
	name         TEXT NOT NULL,
	world_id     BIGINT NOT NULL,
	result       TEXT NOT NULL,
	market_price BIGINT,
	vendor_price BIGINT NOT NULL DEFAULT 0,
	message      TEXT NOT NULL,
	evaluated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_price_checks_evaluated_at ON price_checks(evaluated_at);
CREATE INDEX IF NOT EXISTS idx_price_checks_item_id ON price_checks(item_id);
`

const (
	insertPriceCheck = `INSERT INTO price_checks (id, item_id, hq, name, world_id, result, market_price, vendor_price, message, evaluated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	selectRecent     = `SELECT id, item_id, hq, name, world_id, result, market_price, vendor_price, message, evaluated_at FROM price_checks ORDER BY evaluated_at DESC LIMIT $1`
)

// Migrate creates the history table.
func (r *PostgresRecorder) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

// Close releases the pool.
func (r *PostgresRecorder) Close() error {
	r.pool.Close()
	return nil
}

// Record inserts one evaluation.
func (r *PostgresRecorder) Record(ctx context.Context, worldID uint32, item *model.PricedItem) error {
	if item == nil {
		return eris.New("postgres: nil item")
	}
	_, err := r.pool.Exec(ctx,
		insertPriceCheck,
		uuid.New().String(), int64(item.ItemID), item.HQ, item.Name, int64(worldID), item.Result.String(),
		nullablePrice(item.MarketPrice), int64(item.VendorPrice), item.Message, item.EvaluatedAt.UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert price check %d", item.ItemID)
	}
	return nil
}

// Recent lists the newest evaluations first.
func (r *PostgresRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx,
		selectRecent,
		clampLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list price checks")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e               Entry
			itemID, worldID int64
			vendor          int64
			result          string
			price           *int64
		)
		if err := rows.Scan(&e.ID, &itemID, &e.HQ, &e.Name, &worldID, &result, &price, &vendor, &e.Message, &e.EvaluatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan price check")
		}
		if e.Result, err = model.ParseItemResult(result); err != nil {
			return nil, err
		}
		e.ItemID = uint32(itemID)
		e.WorldID = uint32(worldID)
		e.VendorPrice = uint32(vendor)
		e.MarketPrice = priceFromNullable(price)
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: iterate price checks")
}
