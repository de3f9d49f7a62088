package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=5000"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=72h"`

	// PublicRoutes lists "METHOD /path" entries served without a token.
	PublicRoutes []string `env:"PUBLIC_ROUTES"`
	CORSOrigins  []string `env:"CORS_ORIGINS, default=*"`
	RateLimitRPS float64  `env:"RATE_LIMIT_RPS, default=20"`

	Log     LogConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Payment PaymentConfig
	Booking BookingConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI,  default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,   default=diagnostic_center"`
	User     string `env:"MONGO_USER"`
	Password string `env:"MONGO_PASS"`
}

// LogConfig feeds pkg/logger. An empty Format resolves to "console" in
// development and "json" everywhere else.
type LogConfig struct {
	Level   string `env:"LOG_LEVEL,   default=info"`
	Format  string `env:"LOG_FORMAT"`
	Service string `env:"SERVICE_NAME, default=diagnostic-booking"`
}

// Pretty reports whether entries are written for a terminal.
func (c LogConfig) Pretty() bool {
	return c.Format == LogFormatConsole
}

const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// RedisConfig is optional; an empty Addr disables Redis and with it
// Idempotency-Key handling on bookings.
type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,              default=0"`
	PoolSize       int           `env:"REDIS_POOL_SIZE,       default=10"`
	DialTimeout    time.Duration `env:"REDIS_DIAL_TIMEOUT,    default=5s"`
	OpTimeout      time.Duration `env:"REDIS_OP_TIMEOUT,      default=2s"`
	IdempotencyTTL time.Duration `env:"REDIS_IDEMPOTENCY_TTL, default=1h"`
}

type PaymentConfig struct {
	StripeSecretKey string `env:"STRIPE_SECRET_KEY, required"`
	Currency        string `env:"PAYMENT_CURRENCY,  default=usd"`
}

type BookingConfig struct {
	SlotGuard bool `env:"BOOKING_SLOT_GUARD, default=false"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from the process environment using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.RateLimitRPS < 0 {
		return nil, fmt.Errorf("load config: RATE_LIMIT_RPS must not be negative")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "":
		cfg.Log.Format = LogFormatJSON
		if cfg.IsDevelopment() {
			cfg.Log.Format = LogFormatConsole
		}
	case LogFormatJSON, LogFormatConsole:
		cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	default:
		return nil, fmt.Errorf("load config: LOG_FORMAT must be %q or %q", LogFormatJSON, LogFormatConsole)
	}
	return &cfg, nil
}
