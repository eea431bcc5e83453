// Package pricing runs a single price evaluation and applies its outcome.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/price-check/internal/classify"
	"github.com/sells-group/price-check/internal/config"
	"github.com/sells-group/price-check/internal/game"
	"github.com/sells-group/price-check/internal/history"
	"github.com/sells-group/price-check/internal/market"
	"github.com/sells-group/price-check/internal/model"
	"github.com/sells-group/price-check/internal/notify"
	"github.com/sells-group/price-check/internal/resilience"
	"github.com/sells-group/price-check/internal/store"
)

// sideEffectTimeout bounds notifier and history calls, which run detached
// from the evaluation context.
const sideEffectTimeout = 5 * time.Second

// Session provides the player's location.
type Session interface {
	HomeWorld() uint32
}

// Service evaluates items and publishes the results.
type Service struct {
	catalog game.Catalog
	session Session
	source  market.Source
	store   *store.Store
	cfg     func() *config.Config

	chat    notify.Notifier
	toast   notify.Notifier
	history history.Recorder
	now     func() time.Time

	lastCheck atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithChat sets the chat notifier.
func WithChat(n notify.Notifier) Option {
	return func(s *Service) { s.chat = n }
}

// WithToast sets the toast notifier.
func WithToast(n notify.Notifier) Option {
	return func(s *Service) { s.toast = n }
}

// WithHistory records every applied evaluation.
func WithHistory(r history.Recorder) Option {
	return func(s *Service) { s.history = r }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. cfg is read once per evaluation.
func NewService(catalog game.Catalog, session Session, source market.Source, st *store.Store, cfg func() *config.Config, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		session: session,
		source:  source,
		store:   st,
		cfg:     cfg,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LastPriceCheck returns when the latest evaluation started.
func (s *Service) LastPriceCheck() time.Time {
	ns := s.lastCheck.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Process evaluates one item and applies the result. It returns false when
// ctx ended first or itemID is 0, in which case nothing was applied.
func (s *Service) Process(ctx context.Context, itemID uint32, hq bool) (*model.PricedItem, bool) {
	if itemID == 0 {
		return nil, false
	}
	cfg := s.cfg()
	if cfg == nil {
		cfg = &config.Config{}
	}
	s.lastCheck.Store(s.now().UnixNano())

	log := zap.L().With(zap.Uint32("item_id", itemID), zap.Bool("hq", hq))
	log.Debug("pricing: evaluation started")

	item := &model.PricedItem{ItemID: itemID, HQ: hq}
	worldID, ok := s.evaluate(ctx, cfg, item, log)
	if !ok {
		log.Debug("pricing: evaluation abandoned")
		return nil, false
	}

	p := classify.Present(item.Result, item.MarketPrice, cfg.Pricing.ShowPrices)
	item.Message = p.Message
	item.OverlayColor = p.OverlayColor
	item.ChatColor = p.ChatColor
	item.EvaluatedAt = s.now().UTC()

	if ctx.Err() != nil {
		log.Debug("pricing: superseded before apply")
		return nil, false
	}

	s.apply(ctx, cfg, worldID, item, log)
	return item, true
}

func (s *Service) evaluate(ctx context.Context, cfg *config.Config, item *model.PricedItem, log *zap.Logger) (uint32, bool) {
	meta, found := s.catalog.Item(item.ItemID)
	if !found {
		log.Error("pricing: item not found in catalog")
		item.Name = fmt.Sprintf("Unknown item %d", item.ItemID)
		item.Result = model.ResultFailedToProcess
		return 0, true
	}
	item.Name = meta.Name
	item.Marketable = meta.Marketable
	item.VendorPrice = meta.VendorPrice

	if !meta.Marketable {
		log.Debug("pricing: item not marketable")
		item.Result = model.ResultUnmarketable
		return 0, true
	}

	worldID := s.session.HomeWorld()
	if worldID == 0 {
		log.Error("pricing: home world unavailable")
		item.Result = model.ResultFailedToProcess
		return 0, true
	}
	log.Debug("pricing: fetching market data", zap.Uint32("world_id", worldID))

	snap, err := s.source.Fetch(ctx, worldID, item.ItemID)
	if err != nil {
		if ctx.Err() != nil {
			return worldID, false
		}
		if errors.Is(err, resilience.ErrCircuitOpen) {
			log.Warn("pricing: market circuit open", zap.Error(err))
		} else {
			log.Error("pricing: market fetch failed", zap.Error(err))
		}
		item.Result = model.ResultFailedToGetData
		return worldID, true
	}

	out := classify.Classify(classify.Input{
		VendorPrice: meta.VendorPrice,
		HQ:          item.HQ,
		Snapshot:    snap,
		Settings: classify.Settings{
			PriceMode:     cfg.Pricing.PriceMode,
			MaxUploadDays: cfg.Pricing.MaxUploadDays,
			MinPrice:      cfg.Pricing.MinPrice,
		},
		Now: s.now(),
	})
	item.Result = out.Result
	item.MarketPrice = out.MarketPrice
	item.LastUpdated = out.LastUpdated
	log.Debug("pricing: classified", zap.Stringer("result", item.Result))
	return worldID, true
}

func (s *Service) apply(ctx context.Context, cfg *config.Config, worldID uint32, item *model.PricedItem, log *zap.Logger) {
	s.store.Remove(item.ItemID)
	if cfg.Overlay.Show && cfg.Overlay.Results.Allows(item.Result) {
		s.store.UpsertFront(*item)
		log.Debug("pricing: added to overlay")
	}

	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.chat != nil && cfg.Chat.Show && cfg.Chat.Results.Allows(item.Result) {
		if err := s.chat.Notify(sideCtx, item); err != nil {
			log.Warn("pricing: chat notify failed", zap.Error(err))
		}
	}
	if s.toast != nil && cfg.Toast.Show && cfg.Toast.Results.Allows(item.Result) {
		if err := s.toast.Notify(sideCtx, item); err != nil {
			log.Warn("pricing: toast notify failed", zap.Error(err))
		}
	}
	if s.history != nil {
		if err := s.history.Record(sideCtx, worldID, item); err != nil {
			log.Warn("pricing: history record failed", zap.Error(err))
		}
	}
}
