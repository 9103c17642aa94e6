// Command inventoryd runs the inventory HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/invgo/inventory-service/api"
	"github.com/invgo/inventory-service/cache"
	"github.com/invgo/inventory-service/config"
	"github.com/invgo/inventory-service/database"
	"github.com/invgo/inventory-service/health"
	"github.com/invgo/inventory-service/logger"
	"github.com/invgo/inventory-service/product"
	redisconn "github.com/invgo/inventory-service/redis"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "inventoryd",
		Short: "Inventory service with a cache-aside product store",
	}
	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	root.AddCommand(serve)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logs := logger.NewManager(cfg.Logger)
	defer logs.Close()
	log := logs.Get("main")

	dbMgr, err := database.NewManager(cfg.Database, logs.Get("database"))
	if err != nil {
		return err
	}
	defer dbMgr.Close()

	redisMgr, err := redisconn.NewManager(cfg.Redis, logs.Get("redis"))
	if err != nil {
		return err
	}
	defer redisMgr.Close()

	executor := database.NewExecutor(dbMgr, logs.Get("database"))
	adapter := cache.NewAdapter(redisMgr, cfg.Cache, logs.Get("cache"))
	policy := product.NewInvalidationPolicy(adapter, logs.Get("product"))
	repo := product.NewRepository(executor, adapter, policy, logs.Get("product"))

	aggregator := health.NewAggregator(0)
	aggregator.Register(database.NewHealthChecker(dbMgr))
	aggregator.Register(redisconn.NewHealthChecker(redisMgr))

	router := api.NewRouter(api.RouterDeps{
		Handler:   api.NewHandler(repo, logs.Get("api")),
		Health:    aggregator,
		Cache:     adapter,
		RateLimit: cfg.RateLimit,
		Log:       logs.Get("api"),
		Mode:      cfg.Server.Mode,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var warmer *product.Warmer
	if cfg.Warmer.Enabled {
		warmer, err = product.NewWarmer(repo, cfg.Warmer.Interval, cfg.Warmer.LowStockThreshold, logs.Get("warmer"))
		if err != nil {
			return err
		}
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.InfoCtx(gctx, "server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if warmer != nil {
		if err := warmer.Start(gctx); err != nil {
			return err
		}
	}

	group.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		if warmer != nil {
			if err := warmer.Stop(); err != nil {
				log.Warn("warmer shutdown failed", zap.Error(err))
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
