package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every process-wide setting. It is built once at startup and
// passed explicitly to the components that need it.
type Config struct {
	AppPort string `mapstructure:"app_port"`

	DBDriver    string `mapstructure:"db_driver"` // "sqlite", "postgres" or "memory"
	DatabaseDSN string `mapstructure:"database_dsn"`

	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"` // zero disables expiry
	BcryptCost  int           `mapstructure:"bcrypt_cost"`
	HashWorkers int           `mapstructure:"hash_workers"`

	RabbitMQURL string `mapstructure:"rabbitmq_url"` // empty disables domain events
	EventsQueue string `mapstructure:"events_queue"`

	CORSOrigins string `mapstructure:"cors_origins"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

const (
	EnvPrefix = "BLOGLIST"

	DefaultAppPort     = ":3003"
	DefaultDBDriver    = "sqlite"
	DefaultDatabaseDSN = "file:bloglist.db"
	DefaultTokenTTL    = time.Hour
	DefaultBcryptCost  = 10
	DefaultEventsQueue = "blog_events"
	DefaultCORSOrigins = "*"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

var keys = []string{
	"app_port", "db_driver", "database_dsn", "jwt_secret", "token_ttl", "bcrypt_cost",
	"hash_workers", "rabbitmq_url", "events_queue", "cors_origins", "log_level", "log_format",
}

// Load reads configuration from the optional YAML file at configPath and from
// BLOGLIST_* environment variables, which take precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("app_port", DefaultAppPort)
	v.SetDefault("db_driver", DefaultDBDriver)
	v.SetDefault("database_dsn", DefaultDatabaseDSN)
	v.SetDefault("token_ttl", DefaultTokenTTL)
	v.SetDefault("bcrypt_cost", DefaultBcryptCost)
	v.SetDefault("hash_workers", runtime.NumCPU())
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("events_queue", DefaultEventsQueue)
	v.SetDefault("cors_origins", DefaultCORSOrigins)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// AutomaticEnv only resolves keys viper already knows about; jwt_secret has
	// no default so it is bound explicitly.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("jwt_secret is required")
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("database_dsn is required for db_driver %q", c.DBDriver)
		}
	case "memory":
	default:
		return fmt.Errorf("db_driver must be 'sqlite', 'postgres' or 'memory'")
	}

	if c.TokenTTL < 0 {
		return fmt.Errorf("token_ttl must not be negative")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31")
	}
	if c.HashWorkers < 1 {
		return fmt.Errorf("hash_workers must be at least 1")
	}
	if c.RabbitMQURL != "" && c.EventsQueue == "" {
		return fmt.Errorf("events_queue is required when rabbitmq_url is set")
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be 'text' or 'json'")
	}

	return nil
}

// EventsEnabled reports whether domain events should be published.
func (c *Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
