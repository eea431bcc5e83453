package main

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/price-check/internal/config"
	"github.com/sells-group/price-check/internal/game"
	"github.com/sells-group/price-check/internal/history"
	"github.com/sells-group/price-check/internal/market"
	"github.com/sells-group/price-check/internal/model"
	"github.com/sells-group/price-check/internal/notify"
	"github.com/sells-group/price-check/internal/pricing"
	"github.com/sells-group/price-check/internal/resilience"
	"github.com/sells-group/price-check/internal/store"
	"github.com/sells-group/price-check/pkg/universalis"
)

// priceEnv holds everything the serve and check commands need.
type priceEnv struct {
	Catalog *game.StaticCatalog
	Session *game.Session
	Source  market.Source
	Store   *store.Store
	History history.Recorder // may be nil
	Chat    *notify.Chat
	Toast   *notify.Toast
	Service *pricing.Service
	Modes   *model.PriceModes

	closeOnce sync.Once
}

// Close releases the market client and the history database.
func (e *priceEnv) Close() {
	e.closeOnce.Do(func() {
		if e.Source != nil {
			e.Source.Close()
		}
		if e.History != nil {
			if err := e.History.Close(); err != nil {
				zap.L().Warn("close history", zap.Error(err))
			}
		}
	})
}

// applyConfig pushes reloaded settings into components that cache them.
func (e *priceEnv) applyConfig(c *config.Config) {
	e.Store.SetCapacity(c.Overlay.MaxItems)
	e.Chat.SetUseColors(c.Chat.UseColors)
}

// initEnv builds the evaluation stack from the current configuration.
// Callers should defer env.Close().
func initEnv(ctx context.Context, current func() *config.Config, chatOut io.Writer, session *game.Session) (*priceEnv, error) {
	c := current()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	catalog, err := game.LoadCatalog(c.Catalog.Path)
	if err != nil {
		return nil, err
	}
	zap.L().Info("catalog loaded", zap.String("path", c.Catalog.Path), zap.Int("items", catalog.Len()))

	client := universalis.NewClient(
		universalis.WithBaseURL(c.Market.BaseURL),
		universalis.WithTimeout(c.Market.RequestTimeout()),
		universalis.WithUserAgent(c.Market.UserAgent),
		universalis.WithRateLimit(c.Market.RateLimit, c.Market.RateBurst),
	)
	breaker := resilience.NewBreaker("universalis", resilience.BreakerConfig{
		FailureThreshold: c.Market.CircuitFailureThreshold,
		Cooldown:         time.Duration(c.Market.CircuitResetSecs) * time.Second,
	})

	env := &priceEnv{
		Catalog: catalog,
		Session: session,
		Source:  market.NewUniversalisSource(client, breaker),
		Store:   store.New(c.Overlay.MaxItems),
		Chat:    notify.NewChat(chatOut, c.Chat.UseColors),
		Toast:   notify.NewToast(c.Toast.WebhookURL),
		Modes:   model.NewPriceModes(),
	}

	rec, err := history.Open(ctx, c.History.Driver, c.History.DatabaseURL)
	if err != nil {
		env.Close()
		return nil, err
	}
	if rec != nil {
		if err := rec.Migrate(ctx); err != nil {
			_ = rec.Close()
			env.Close()
			return nil, eris.Wrap(err, "migrate history")
		}
		env.History = rec
	}

	opts := []pricing.Option{
		pricing.WithChat(env.Chat),
		pricing.WithToast(env.Toast),
	}
	if env.History != nil {
		opts = append(opts, pricing.WithHistory(env.History))
	}
	env.Service = pricing.NewService(env.Catalog, env.Session, env.Source, env.Store, current, opts...)

	return env, nil
}
