// Package market adapts the Universalis client into market snapshots for the
// pricing pipeline.
package market

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/price-check/internal/model"
	"github.com/sells-group/price-check/internal/resilience"
	"github.com/sells-group/price-check/pkg/universalis"
)

// Source fetches market snapshots.
type Source interface {
	// Fetch returns a fresh snapshot or an error. It never returns a
	// partially populated snapshot.
	Fetch(ctx context.Context, worldID, itemID uint32) (*model.MarketSnapshot, error)
	// Close releases connection resources. Safe to call more than once.
	Close()
}

// UniversalisSource implements Source on top of the Universalis API.
type UniversalisSource struct {
	client  universalis.Client
	breaker *resilience.Breaker
	now     func() time.Time
}

// NewUniversalisSource wraps client. breaker may be nil.
func NewUniversalisSource(client universalis.Client, breaker *resilience.Breaker) *UniversalisSource {
	return &UniversalisSource{client: client, breaker: breaker, now: time.Now}
}

// Fetch implements Source.
func (s *UniversalisSource) Fetch(ctx context.Context, worldID, itemID uint32) (*model.MarketSnapshot, error) {
	if s.breaker != nil {
		if err := s.breaker.Allow(); err != nil {
			return nil, err
		}
	}

	board, err := s.client.MarketBoard(ctx, worldID, itemID)
	if s.breaker != nil {
		s.breaker.Record(err)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "market: fetch item %d world %d", itemID, worldID)
	}

	snap := &model.MarketSnapshot{
		WorldID:               worldID,
		ItemID:                itemID,
		LastUploadTime:        board.LastUploadTime,
		AveragePriceNQ:        board.AveragePriceNQ,
		AveragePriceHQ:        board.AveragePriceHQ,
		CurrentAveragePriceNQ: board.CurrentAveragePriceNQ,
		CurrentAveragePriceHQ: board.CurrentAveragePriceHQ,
		MinimumPriceNQ:        board.MinPriceNQ,
		MinimumPriceHQ:        board.MinPriceHQ,
		MaximumPriceNQ:        board.MaxPriceNQ,
		MaximumPriceHQ:        board.MaxPriceHQ,
		CurrentMinimumPrice:   board.CurrentMinimumPrice(),
		LastCheckTime:         s.now().Unix(),
	}

	zap.L().Debug("market snapshot",
		zap.Uint32("item_id", itemID),
		zap.Uint32("world_id", worldID),
		zap.Any("snapshot", snap),
	)

	return snap, nil
}

// Close implements Source.
func (s *UniversalisSource) Close() {
	s.client.Close()
}
