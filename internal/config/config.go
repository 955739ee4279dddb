// Package config loads settings from the environment and an optional config file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Client struct {
	APIBaseURL         string        `mapstructure:"API_BASE_URL"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SessionDBPath      string        `mapstructure:"SESSION_DB_PATH"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	LogFormat          string        `mapstructure:"LOG_FORMAT"`
	BreakerEnabled     bool          `mapstructure:"BREAKER_ENABLED"`
	BreakerMaxFailures uint32        `mapstructure:"BREAKER_MAX_FAILURES"`
	BreakerOpenTimeout time.Duration `mapstructure:"BREAKER_OPEN_TIMEOUT"`
	CurrencyGlyph      string        `mapstructure:"CURRENCY_GLYPH"`
}

type Server struct {
	HTTPPort         string        `mapstructure:"HTTP_PORT"`
	MongoURI         string        `mapstructure:"MONGO_URI"`
	MongoDBName      string        `mapstructure:"MONGO_DB_NAME"`
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	PostgresHost     string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string        `mapstructure:"POSTGRES_PORT"`
	PostgresUser     string        `mapstructure:"POSTGRES_USER"`
	PostgresPassword string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string        `mapstructure:"POSTGRES_DB"`
	PostgresSSLMode  string        `mapstructure:"POSTGRES_SSLMODE"`
	CatalogDBPath    string        `mapstructure:"CATALOG_DB_PATH"`
	KafkaBrokers     []string      `mapstructure:"KAFKA_BROKERS"`
	OrdersTopic      string        `mapstructure:"ORDERS_TOPIC"`
	OutboxInterval   time.Duration `mapstructure:"OUTBOX_INTERVAL"`
	TokenTTL         time.Duration `mapstructure:"TOKEN_TTL"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout  time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	LogFormat        string        `mapstructure:"LOG_FORMAT"`
	CurrencyGlyph    string        `mapstructure:"CURRENCY_GLYPH"`
}

// PostgresDSN builds a lib/pq connection string.
func (s Server) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		s.PostgresUser, s.PostgresPassword, s.PostgresHost, s.PostgresPort, s.PostgresDB, s.PostgresSSLMode)
}

var clientDefaults = map[string]any{
	"API_BASE_URL":         "http://localhost:8080/api",
	"REQUEST_TIMEOUT":      "30s",
	"SESSION_DB_PATH":      "storefront-session.db",
	"LOG_LEVEL":            "warn",
	"LOG_FORMAT":           "console",
	"BREAKER_ENABLED":      true,
	"BREAKER_MAX_FAILURES": 5,
	"BREAKER_OPEN_TIMEOUT": "30s",
	"CURRENCY_GLYPH":       "₹",
}

var serverDefaults = map[string]any{
	"HTTP_PORT":         "8080",
	"MONGO_URI":         "mongodb://localhost:27017",
	"MONGO_DB_NAME":     "storefront",
	"REDIS_ADDR":        "localhost:6379",
	"REDIS_PASSWORD":    "",
	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "postgres",
	"POSTGRES_DB":       "storefront",
	"POSTGRES_SSLMODE":  "disable",
	"CATALOG_DB_PATH":   "catalog.db",
	"KAFKA_BROKERS":     "localhost:9092",
	"ORDERS_TOPIC":      "orders.placed",
	"OUTBOX_INTERVAL":   "2s",
	"TOKEN_TTL":         "168h",
	"REQUEST_TIMEOUT":   "10s",
	"SHUTDOWN_TIMEOUT":  "10s",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "json",
	"CURRENCY_GLYPH":    "₹",
}

// LoadClient reads client settings. file may be empty; a named file that does not
// exist is an error.
func LoadClient(file string) (*Client, error) {
	var cfg Client
	if err := load(file, clientDefaults, &cfg); err != nil {
		return nil, err
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("config: API_BASE_URL is empty")
	}
	return &cfg, nil
}

func LoadServer(file string) (*Server, error) {
	var cfg Server
	if err := load(file, serverDefaults, &cfg); err != nil {
		return nil, err
	}
	if cfg.HTTPPort == "" {
		return nil, errors.New("config: HTTP_PORT is empty")
	}
	return &cfg, nil
}

func load(file string, defaults map[string]any, out any) error {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}
