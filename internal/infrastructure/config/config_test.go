package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func required() map[string]string {
	return map[string]string{
		"JWT_SECRET":        "s3cret",
		"STRIPE_SECRET_KEY": "sk_test_123",
	}
}

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(required()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Errorf("TokenTTL = %v, want 72h", cfg.TokenTTL)
	}
	if cfg.Mongo.Database != "diagnostic_center" {
		t.Errorf("Mongo.Database = %q", cfg.Mongo.Database)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis must be disabled by default, got %q", cfg.Redis.Addr)
	}
	if cfg.Payment.Currency != "usd" {
		t.Errorf("Payment.Currency = %q", cfg.Payment.Currency)
	}
	if cfg.Booking.SlotGuard {
		t.Error("slot guard must default to off")
	}
	if cfg.RateLimitRPS != 20 {
		t.Errorf("RateLimitRPS = %v", cfg.RateLimitRPS)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development env by default")
	}
	if cfg.Log.Format != LogFormatConsole || !cfg.Log.Pretty() || cfg.Log.Service != "diagnostic-booking" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Redis.PoolSize != 10 || cfg.Redis.DialTimeout != 5*time.Second || cfg.Redis.IdempotencyTTL != time.Hour {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	env := required()
	env["PORT"] = "8081"
	env["TOKEN_TTL"] = "1h"
	env["BOOKING_SLOT_GUARD"] = "true"
	env["PUBLIC_ROUTES"] = "GET /users,GET /results/:email"
	env["REDIS_ADDR"] = "localhost:6379"
	env["ENV"] = "production"

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8081" || cfg.TokenTTL != time.Hour || !cfg.Booking.SlotGuard {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.PublicRoutes) != 2 || cfg.PublicRoutes[1] != "GET /results/:email" {
		t.Fatalf("PublicRoutes = %v", cfg.PublicRoutes)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.IsDevelopment() {
		t.Fatal("production must not be development")
	}
	if cfg.Log.Format != LogFormatJSON || cfg.Log.Pretty() {
		t.Fatalf("production must log JSON by default, got %+v", cfg.Log)
	}
}

func TestLoadWith_LogFormat(t *testing.T) {
	env := required()
	env["ENV"] = "production"
	env["LOG_FORMAT"] = "Console"
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Log.Pretty() {
		t.Fatalf("explicit console format must win, got %+v", cfg.Log)
	}

	env["LOG_FORMAT"] = "xml"
	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
		t.Fatal("expected error for unknown LOG_FORMAT")
	}
}

func TestLoadWith_MissingSecrets(t *testing.T) {
	for _, key := range []string{"JWT_SECRET", "STRIPE_SECRET_KEY"} {
		env := required()
		delete(env, key)
		if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Fatalf("expected error when %s is missing", key)
		}
	}
}
