// Package history persists applied price evaluations for later inspection.
package history

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/price-check/internal/model"
)

// Entry is one recorded evaluation.
type Entry struct {
	ID          string           `json:"id"`
	ItemID      uint32           `json:"item_id"`
	HQ          bool             `json:"hq"`
	Name        string           `json:"name"`
	WorldID     uint32           `json:"world_id"`
	Result      model.ItemResult `json:"result"`
	MarketPrice *uint32          `json:"market_price,omitempty"`
	VendorPrice uint32           `json:"vendor_price"`
	Message     string           `json:"message"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}

// Recorder stores and lists evaluations.
type Recorder interface {
	Record(ctx context.Context, worldID uint32, item *model.PricedItem) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns a recorder for the driver. An empty driver disables history
// and returns a nil Recorder.
func Open(ctx context.Context, driver, dsn string) (Recorder, error) {
	switch driver {
	case "":
		return nil, nil
	case "sqlite":
		if dsn == "" {
			dsn = "pricecheck.db"
		}
		r, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "postgres":
		r, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, eris.Errorf("history: unsupported driver %q", driver)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func nullablePrice(p *uint32) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func priceFromNullable(v *int64) *uint32 {
	if v == nil {
		return nil
	}
	p := uint32(*v)
	return &p
}
