// Package config loads server configuration from an optional app.env file
// and the environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	CatalogJSON     = "json"
	CatalogPostgres = "postgres"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	CatalogDriver string `mapstructure:"CATALOG_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`

	CacheEnabled bool          `mapstructure:"CACHE_ENABLED"`
	RedisHost    string        `mapstructure:"REDIS_HOST"`
	RedisPort    string        `mapstructure:"REDIS_PORT"`
	RedisTTL     time.Duration `mapstructure:"REDIS_TTL"`

	GeocoderURL     string        `mapstructure:"GEOCODER_URL"`
	GeocodingAPIKey string        `mapstructure:"GEOCODING_API_KEY"`
	GeocoderTimeout time.Duration `mapstructure:"GEOCODER_TIMEOUT"`
	GeocoderRPS     float64       `mapstructure:"GEOCODER_RPS"`
	GeocoderBurst   int           `mapstructure:"GEOCODER_BURST"`
}

var defaults = map[string]any{
	"PORT":              "8080",
	"LOG_LEVEL":         "info",
	"CATALOG_DRIVER":    CatalogJSON,
	"DATABASE_URL":      "",
	"CACHE_ENABLED":     false,
	"REDIS_HOST":        "localhost",
	"REDIS_PORT":        "6379",
	"REDIS_TTL":         24 * time.Hour,
	"GEOCODER_URL":      "https://geocode.maps.co/search",
	"GEOCODING_API_KEY": "",
	"GEOCODER_TIMEOUT":  5 * time.Second,
	"GEOCODER_RPS":      1.0,
	"GEOCODER_BURST":    1,
}

// Load reads path/app.env when present, then the environment. It returns an
// error naming every required key that is missing.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config.Load: read app.env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CatalogDriver = strings.ToLower(strings.TrimSpace(cfg.CatalogDriver))

	var missing []string
	switch cfg.CatalogDriver {
	case CatalogJSON:
	case CatalogPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("config.Load: unknown CATALOG_DRIVER %q", cfg.CatalogDriver)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required configuration not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
