package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/price-check/internal/config"
	"github.com/sells-group/price-check/internal/game"
	"github.com/sells-group/price-check/internal/server"
	"github.com/sells-group/price-check/internal/trigger"
)

var (
	servePort  int
	serveWorld uint32
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local price check API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		live, err := config.LoadWatched()
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, live.Get, os.Stdout, game.NewSession(game.State{WorldID: serveWorld}))
		if err != nil {
			return err
		}
		defer env.Close()
		live.OnChange(env.applyConfig)

		ctrl := trigger.NewController(env.Service, env.Session, live.Get)
		defer ctrl.Close()

		api := server.New(server.Deps{
			Hovers:         ctrl,
			Session:        env.Session,
			Store:          env.Store,
			Modes:          env.Modes,
			Config:         live.Get,
			LastPriceCheck: env.Service.LastPriceCheck,
		})

		port := servePort
		if port == 0 {
			port = live.Get().Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api,
			ReadHeaderTimeout: 5 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 5*time.Second)
			defer cancel()
			return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
		})
		g.Go(func() error {
			return runRefresh(gctx, ctrl, refreshInterval(live.Get()))
		})

		return g.Wait()
	},
}

// ticker is the part of the controller the refresh loop drives.
type ticker interface {
	Tick() *trigger.Task
}

// runRefresh polls the keybind-deferred path until ctx ends.
func runRefresh(ctx context.Context, t ticker, every time.Duration) error {
	tk := time.NewTicker(every)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.C:
			t.Tick()
		}
	}
}

func refreshInterval(c *config.Config) time.Duration {
	if c.Server.RefreshMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.Server.RefreshMs) * time.Millisecond
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().Uint32Var(&serveWorld, "world", 0, "initial home world id until the client reports one")
	rootCmd.AddCommand(serveCmd)
}
