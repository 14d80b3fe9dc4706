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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/edibez/cryptodash/internal/ai"
	"github.com/edibez/cryptodash/internal/config"
	"github.com/edibez/cryptodash/internal/logger"
	"github.com/edibez/cryptodash/internal/price"
	"github.com/edibez/cryptodash/internal/ratelimit"
	"github.com/edibez/cryptodash/internal/server"
	"github.com/edibez/cryptodash/internal/stream"
	"github.com/edibez/cryptodash/internal/watchlist"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs the cache and the rate limiter; both degrade when it is down
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, running without cache", map[string]interface{}{"addr": cfg.Redis.Addr, "error": err.Error()})
	}

	client := price.NewClient(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, cfg.CoinGecko.Timeout)
	market := price.NewCache(client, rdb, cfg.CacheTTL, log)

	store, err := watchlist.NewStore(cfg.DBPath, cfg.WatchlistCapacity)
	if err != nil {
		return err
	}
	defer store.Close()

	syncer := watchlist.NewSyncer(store, market, cfg.WatchlistSyncInterval, cfg.HistoryRetention, log)

	hub := stream.NewHub(store, cfg.StreamInterval, cfg.Origins(), log)
	pipeline := ai.NewPipeline(ai.NewResponder(market, ai.NewRandomFallback(0), log), log)

	gin.SetMode(cfg.GinMode)
	srv := server.New(server.Options{
		Pipeline:  pipeline,
		Market:    market,
		Catalog:   client,
		Watchlist: store,
		Limiter:   ratelimit.NewLimiter(rdb, cfg.RateLimitPerMinute, time.Minute),
		Stream:    hub,
		Origins:   cfg.Origins(),
		Logger:    log,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// the store is closed only after every goroutine using it has returned
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		syncer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("starting crypto dashboard api", map[string]interface{}{"port": cfg.Port})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
