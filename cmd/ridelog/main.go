package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"ridelog/internal/auth"
	"ridelog/internal/cache"
	"ridelog/internal/cli"
	"ridelog/internal/core"
	apphttp "ridelog/internal/http"
	applog "ridelog/internal/log"
	"ridelog/internal/middleware/ratelimit"
	"ridelog/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitBackend(context.Background(), logger, cfg)
	defer store.Close()

	enricher := cli.NewEnrichClient(cfg)

	var publisher services.Publisher
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Warn("Ride events will not be published")
	}

	rideCache := cache.NewLRUCache[[]core.Ride](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager()
	caches.Register("rides", rideCache)
	caches.Register("places", enricher.PlaceCache())
	caches.StartCleanup(cfg.CacheCleanupInterval)

	opts := apphttp.Options{
		Rides:    services.NewRideService(store.Gateway, enricher, enricher, publisher),
		Buddies:  services.NewBuddyService(store.Gateway),
		History:  services.NewHistoryService(store.Gateway, rideCache),
		Geocoder: enricher,
		Verifier: auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLeeway),
		Limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitRPM,
			Burst:             cfg.RateLimitBurst,
		}),
		Logger: logger,
		Caches: caches,
	}
	if store.Pinger != nil {
		opts.Pinger = store.Pinger
	}
	srv := apphttp.NewServer(":"+cfg.Port, opts)
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(context.Background(), logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting ridelog server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp_enabled", amqpClient != nil,
		"rate_limit_rpm", cfg.RateLimitRPM)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
