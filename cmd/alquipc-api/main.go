// README: Entry point; loads config, wires tariff sources and the pricing service, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"alquipc/internal/config"
	httptransport "alquipc/internal/http"
	"alquipc/internal/http/handlers"
	"alquipc/internal/infra"
	"alquipc/internal/maps"
	"alquipc/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := cfg.TariffCatalog()
	if err != nil {
		logger.Fatal("invalid tariff catalog", zap.Error(err))
	}

	var store pricing.TariffStore
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Fatal("postgres init", zap.Error(err))
		}
		defer dbPool.Close()
		store = pricing.NewStore(dbPool)
	}

	var cache pricing.TariffCache
	if cfg.Redis.Addr != "" {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("redis init", zap.Error(err))
		}
		defer redisClient.Close()
		cache = pricing.NewCache(redisClient, cfg.Redis.TariffTTL)
	}

	pricingSvc := pricing.NewService(store, cache, catalog, logger)
	if _, err := pricingSvc.Tariff(ctx, ""); err != nil {
		logger.Fatal("default tariff unavailable", zap.String("tariff", cfg.Pricing.DefaultTariff), zap.Error(err))
	}

	var modes handlers.ModeResolver
	if cfg.Maps.APIKey != "" {
		resolver, err := maps.NewModeResolver(cfg.Maps.APIKey, cfg.Maps.HomeCity, cfg.Maps.Region, cfg.Maps.Language)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		modes = resolver
	}

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Pricing: pricingSvc,
		Modes:   modes,
		Logger:  logger,
		Options: httptransport.Options{
			RateLimitPerMin: cfg.HTTP.RateLimitPerMin,
			RateLimitBurst:  cfg.HTTP.RateLimitBurst,
			CORSOrigins:     cfg.HTTP.CORSOrigins,
		},
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening",
		zap.String("addr", cfg.HTTP.Addr),
		zap.Bool("postgres", store != nil),
		zap.Bool("redis", cache != nil),
		zap.Bool("maps", modes != nil),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}
