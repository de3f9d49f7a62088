// @title                       Diagnostic Booking API
// @version                     1.0
// @description                 Users, diagnostic test catalog, bookings and payment intents for a diagnostic center.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token from POST /jwt.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/medlab/diagnostic-booking/internal/api"
	"github.com/medlab/diagnostic-booking/internal/api/handler"
	"github.com/medlab/diagnostic-booking/internal/core/ports"
	"github.com/medlab/diagnostic-booking/internal/core/service"
	"github.com/medlab/diagnostic-booking/internal/infrastructure/config"
	"github.com/medlab/diagnostic-booking/internal/infrastructure/db/mongo"
	"github.com/medlab/diagnostic-booking/internal/infrastructure/db/redis"
	"github.com/medlab/diagnostic-booking/internal/infrastructure/payment"
	"github.com/medlab/diagnostic-booking/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(config.LogConfig{Service: "diagnostic-booking"}, nil)
		boot.Fatal().Err(err).Msg("main: invalid configuration")
	}

	log := logger.Init(cfg.Log, nil)

	// --- Data stores ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		User:     cfg.Mongo.User,
		Password: cfg.Mongo.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("main: mongo unavailable")
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("main: mongo indexes")
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("main: mongo connected")

	health := map[string]handler.Pinger{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	var (
		redisClient *goredis.Client
		idempotency ports.IdempotencyStore
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("main: redis unavailable")
		}
		idempotency = redis.NewIdempotencyStore(redisClient, cfg.Redis.IdempotencyTTL)
		health["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("main: redis connected")
	} else {
		log.Warn().Msg("main: REDIS_ADDR not set, Idempotency-Key on bookings is ignored")
	}

	// --- Services ---
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("main: token service")
	}

	users := mongo.NewUserRepository(db)
	tests := mongo.NewTestRepository(db)
	bookings := mongo.NewBookingRepository(db)

	gateway := payment.NewStripeGateway(cfg.Payment.StripeSecretKey, nil)

	router := api.NewRouter(api.Deps{
		Users: service.NewUserService(users, logger.Component(log, "users")),
		Tests: service.NewTestService(tests, logger.Component(log, "tests")),
		Bookings: service.NewBookingService(bookings, tests, logger.Component(log, "bookings"), service.BookingOptions{
			GuardSlots:  cfg.Booking.SlotGuard,
			Idempotency: idempotency,
		}),
		Payments:     service.NewPaymentService(gateway, cfg.Payment.Currency, logger.Component(log, "payments")),
		Issuer:       tokens,
		Verifier:     tokens,
		Health:       health,
		Logger:       log,
		PublicRoutes: cfg.PublicRoutes,
		CORSOrigins:  cfg.CORSOrigins,
		RateLimitRPS: cfg.RateLimitRPS,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Bool("slot_guard", cfg.Booking.SlotGuard).Msg("main: server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("main: server failed to start")
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("main: server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("main: server forced to shutdown")
	}
	if err := mongo.Disconnect(shutdownCtx, mongoClient); err != nil {
		log.Error().Err(err).Msg("main: mongo disconnect")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("main: redis close")
		}
	}
	log.Info().Msg("main: stopped")
}
