// Package config loads the API and CLI settings from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	ResetCodeTTL time.Duration `env:"PASSWORD_RESET_TTL, default=15m"`

	StoreBackend string `env:"STORE_BACKEND,  default=memory"`
	SeedDemoData bool   `env:"SEED_DEMO_DATA, default=false"`

	Mongo       MongoConfig
	Redis       RedisConfig
	Circulation CirculationConfig
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=library"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=true"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED, default=false"`
	Addr     string `env:"REDIS_ADDR,    default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,      default=0"`
}

type CirculationConfig struct {
	LoanPeriodDays   int           `env:"LOAN_PERIOD_DAYS,  default=30"`
	FineRatePerDay   int64         `env:"FINE_RATE_PER_DAY, default=2"`
	DueReminderDays  int           `env:"DUE_REMINDER_DAYS, default=3"`
	ReminderInterval time.Duration `env:"REMINDER_INTERVAL, default=1h"`
}

// IsDevelopment reports whether the API runs in a local development setup.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendMongo:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendMongo, c.StoreBackend)
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}
	if c.ResetCodeTTL <= 0 {
		return fmt.Errorf("PASSWORD_RESET_TTL must be positive")
	}
	if c.Circulation.LoanPeriodDays <= 0 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be positive")
	}
	if c.Circulation.FineRatePerDay < 0 {
		return fmt.Errorf("FINE_RATE_PER_DAY must not be negative")
	}
	if c.Circulation.DueReminderDays <= 0 {
		return fmt.Errorf("DUE_REMINDER_DAYS must be positive")
	}
	return nil
}
