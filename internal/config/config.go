// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache backends recognized by cache.backend.
const (
	CacheBackendNone     = "none"
	CacheBackendFile     = "file"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Bank     BankConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Worker   WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
}

// ProviderConfig holds settings for the remote rates API.
type ProviderConfig struct {
	AccessKey      string `mapstructure:"access_key"`
	UseSandbox     bool   `mapstructure:"use_sandbox"`
	BaseURL        string `mapstructure:"base_url"` // Overrides the live/sandbox host when set.
	TLSVersion     string `mapstructure:"tls_version"`
	RaiseOnFailure bool   `mapstructure:"raise_on_failure"`
	Timeout        int    `mapstructure:"timeout_sec"`
}

// BankConfig holds rate table settings.
type BankConfig struct {
	Source     string `mapstructure:"source"`
	TTLSeconds int    `mapstructure:"ttl_sec"` // 0 means rates never time-expire.
}

// CacheConfig selects where the raw rates payload is persisted.
type CacheConfig struct {
	Backend  string `mapstructure:"backend"`
	Path     string `mapstructure:"path"`
	RedisKey string `mapstructure:"redis_key"`
	Name     string `mapstructure:"name"` // Row name for the postgres backend.
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for the refresh task queue.
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for the rates cache backend.
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// WorkerConfig holds background refresh settings.
type WorkerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Concurrency      int    `mapstructure:"concurrency"`
	MaxRetry         int    `mapstructure:"max_retry"`
	TimeoutSec       int    `mapstructure:"timeout_sec"`
	CheckIntervalSec int    `mapstructure:"check_interval_sec"`
	RefreshCron      string `mapstructure:"refresh_cron"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	if err := v.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("RATEBANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Bank.Source = strings.ToUpper(strings.TrimSpace(cfg.Bank.Source))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.serve_swagger", true)
	v.SetDefault("server.serve_asynqmon", false)
	v.SetDefault("provider.access_key", "")
	v.SetDefault("provider.use_sandbox", false)
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.tls_version", "TLS1.2")
	v.SetDefault("provider.raise_on_failure", true)
	v.SetDefault("provider.timeout_sec", 10)
	v.SetDefault("bank.source", "USD")
	v.SetDefault("bank.ttl_sec", 0)
	v.SetDefault("cache.backend", CacheBackendNone)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.redis_key", "ratebank:rates")
	v.SetDefault("cache.name", "rates")
	v.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	v.SetDefault("redis.cache_addr", "redis_cache:6381")
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "ratesdb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_sec", 300)
	v.SetDefault("worker.enabled", false)
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.max_retry", 3)
	v.SetDefault("worker.timeout_sec", 30)
	v.SetDefault("worker.check_interval_sec", 5)
	v.SetDefault("worker.refresh_cron", "@every 10m")
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Provider.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("provider.timeout_sec must be positive, got %d", c.Provider.Timeout))
	}
	switch strings.ToUpper(c.Provider.TLSVersion) {
	case "TLS1.2", "TLSV1_2", "TLS1.3", "TLSV1_3":
	default:
		errs = append(errs, fmt.Errorf("provider.tls_version must be TLS1.2 or TLS1.3, got %q", c.Provider.TLSVersion))
	}

	if c.Bank.TTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("bank.ttl_sec must be non-negative, got %d", c.Bank.TTLSeconds))
	}

	switch c.Cache.Backend {
	case CacheBackendNone:
	case CacheBackendFile:
		if c.Cache.Path == "" {
			errs = append(errs, fmt.Errorf("cache.path is required for the file backend (set RATEBANK_CACHE_PATH)"))
		}
	case CacheBackendRedis:
		if c.Redis.CacheAddr == "" {
			errs = append(errs, fmt.Errorf("redis.cache_addr is required for the redis backend (set RATEBANK_REDIS_CACHE_ADDR)"))
		}
		if c.Cache.RedisKey == "" {
			errs = append(errs, fmt.Errorf("cache.redis_key is required for the redis backend"))
		}
	case CacheBackendPostgres:
		if c.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if c.Database.Port <= 0 {
			errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
		if c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
		if c.Cache.Name == "" {
			errs = append(errs, fmt.Errorf("cache.name is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be one of none, file, redis, postgres, got %q", c.Cache.Backend))
	}

	if c.Worker.Enabled {
		if c.Redis.AsynqAddr == "" {
			errs = append(errs, fmt.Errorf("redis.asynq_addr is required when the worker is enabled (set RATEBANK_REDIS_ASYNQ_ADDR)"))
		}
		if c.Worker.Concurrency <= 0 {
			errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
		}
		if c.Worker.MaxRetry < 0 {
			errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
		}
		if c.Worker.TimeoutSec <= 0 {
			errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
		}
		if c.Worker.CheckIntervalSec <= 0 {
			errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
		}
		if c.Worker.RefreshCron == "" {
			errs = append(errs, fmt.Errorf("worker.refresh_cron is required when the worker is enabled"))
		}
	}

	return errors.Join(errs...)
}
