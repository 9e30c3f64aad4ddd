// Package config loads the service configuration from the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Commerce backend modes.
const (
	BackendLocal = "local"
	BackendHTTP  = "http"
)

// Config holds every setting of the storefront service.
type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	AppEnv  string `mapstructure:"APP_ENV"`

	CommerceBackend          string        `mapstructure:"COMMERCE_BACKEND"`
	CommerceAPIURL           string        `mapstructure:"COMMERCE_API_URL"`
	CommerceClientID         string        `mapstructure:"COMMERCE_CLIENT_ID"`
	CommerceClientSecret     string        `mapstructure:"COMMERCE_CLIENT_SECRET"`
	CommerceClientSecretHash string        `mapstructure:"COMMERCE_CLIENT_SECRET_HASH"`
	CommerceSiteID           string        `mapstructure:"COMMERCE_SITE_ID"`
	CommerceTimeout          time.Duration `mapstructure:"COMMERCE_TIMEOUT"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN    string `mapstructure:"DATABASE_DSN"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	GuestTokenTTL time.Duration `mapstructure:"GUEST_TOKEN_TTL"`
	CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`

	CacheDriver string        `mapstructure:"CACHE_DRIVER"`
	RedisAddr   string        `mapstructure:"REDIS_ADDR"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`

	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	RevalidationSecret string `mapstructure:"REVALIDATION_SECRET"`

	TaxRate  decimal.Decimal `mapstructure:"-"`
	Currency string          `mapstructure:"CURRENCY"`
}

var defaults = map[string]any{
	"APP_PORT":                    ":8080",
	"APP_ENV":                     "development",
	"COMMERCE_BACKEND":            BackendLocal,
	"COMMERCE_API_URL":            "",
	"COMMERCE_CLIENT_ID":          "",
	"COMMERCE_CLIENT_SECRET":      "",
	"COMMERCE_CLIENT_SECRET_HASH": "",
	"COMMERCE_SITE_ID":            "",
	"COMMERCE_TIMEOUT":            "10s",
	"DATABASE_DRIVER":             "sqlite",
	"DATABASE_DSN":                "file::memory:?cache=shared",
	"JWT_SECRET":                  "",
	"GUEST_TOKEN_TTL":             "30m",
	"COOKIE_SECURE":               false,
	"CACHE_DRIVER":                "memory",
	"REDIS_ADDR":                  "",
	"CACHE_TTL":                   "24h",
	"RABBITMQ_URL":                "",
	"REVALIDATION_SECRET":         "",
	"TAX_RATE":                    "0.08",
	"CURRENCY":                    "USD",
}

// Load reads envFile when it exists, then the environment. Environment
// variables win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	rate, err := decimal.NewFromString(v.GetString("TAX_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}
	cfg.TaxRate = rate

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	required := map[string]string{
		"COMMERCE_CLIENT_ID":     c.CommerceClientID,
		"COMMERCE_CLIENT_SECRET": c.CommerceClientSecret,
	}
	switch c.CommerceBackend {
	case BackendLocal:
		required["JWT_SECRET"] = c.JWTSecret
		required["DATABASE_DSN"] = c.DatabaseDSN
	case BackendHTTP:
		required["COMMERCE_API_URL"] = c.CommerceAPIURL
		required["COMMERCE_SITE_ID"] = c.CommerceSiteID
		required["REVALIDATION_SECRET"] = c.RevalidationSecret
	default:
		return fmt.Errorf("unknown COMMERCE_BACKEND %q", c.CommerceBackend)
	}
	if c.CacheDriver == "redis" {
		required["REDIS_ADDR"] = c.RedisAddr
	}

	var missing []string
	for _, key := range sortedKeys(required) {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("the following environment variables are missing:\n%s", strings.Join(missing, "\n"))
	}

	if c.CacheDriver != "memory" && c.CacheDriver != "redis" {
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.CacheDriver)
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
