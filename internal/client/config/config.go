package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/shopsage/internal/client/search"
	"github.com/dmitrijs2005/shopsage/internal/client/session"
	"github.com/dmitrijs2005/shopsage/internal/client/storage"
	"github.com/dmitrijs2005/shopsage/internal/logging"
)

// Config holds runtime settings for the ShopSage client.
type Config struct {
	StorageDriver string `env:"STORAGE_DRIVER" validate:"oneof=sqlite redis memory"`
	SQLitePath    string `env:"SQLITE_PATH" validate:"required_if=StorageDriver sqlite"`
	RedisAddr     string `env:"REDIS_ADDR" validate:"required_if=StorageDriver redis"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" validate:"gte=0"`
	KeyPrefix     string `env:"KEY_PREFIX"`

	AuthLatency   time.Duration `env:"AUTH_LATENCY" validate:"gte=0"`
	SearchLatency time.Duration `env:"SEARCH_LATENCY" validate:"gte=0"`
	SecretMode    string        `env:"SECRET_MODE" validate:"oneof=plain argon2"`

	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=slog zap"`
	LogFile   string `env:"LOG_FILE"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StorageDriver = storage.DriverSQLite
	c.SQLitePath = "shopsage.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPassword = ""
	c.RedisDB = 0
	c.KeyPrefix = storage.DefaultKeyPrefix
	c.AuthLatency = session.DefaultLatency
	c.SearchLatency = search.DefaultDelay
	c.SecretMode = "plain"
	c.LogLevel = "info"
	c.LogFormat = logging.FormatSlog
	c.LogFile = ""
}

// LoadConfig builds a Config from defaults, then the config file (if any),
// then SHOPSAGE_* environment variables, then command-line flags. Later
// sources take precedence. The result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:     c.StorageDriver,
		SQLitePath: c.SQLitePath,
		Redis: storage.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
	}
}

func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.LogLevel, Format: c.LogFormat, File: c.LogFile}
}
