package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds the market feed service configuration.
type Config struct {
	// Server
	Port              int `env:"PORT" envDefault:"8080"`
	UpstreamTimeoutMS int `env:"UPSTREAM_TIMEOUT_MS" envDefault:"10000"`

	// Fallback store
	StoreBackend  string `env:"STORE_BACKEND" envDefault:"memory"`
	RedisURL      string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	// Upstream APIs (base URLs overridable for local stubs)
	BinanceBaseURL       string `env:"BINANCE_BASE_URL" envDefault:"https://api.binance.com"`
	CoinGeckoBaseURL     string `env:"COINGECKO_BASE_URL" envDefault:"https://api.coingecko.com"`
	CoinMarketCalBaseURL string `env:"COINMARKETCAL_BASE_URL" envDefault:"https://developers.coinmarketcal.com"`
	CoinMarketCalAPIKey  string `env:"COINMARKETCAL_API_KEY"`
	FirecrawlBaseURL     string `env:"FIRECRAWL_BASE_URL" envDefault:"https://api.firecrawl.dev"`
	FirecrawlAPIKey      string `env:"FIRECRAWL_API_KEY"`

	// LLM gateway (scenario generation and calendar translation)
	LLMBaseURL          string `env:"LLM_BASE_URL" envDefault:"https://ai.gateway.lovable.dev"`
	LLMAPIKey           string `env:"LLM_API_KEY"`
	LLMModel            string `env:"LLM_MODEL" envDefault:"google/gemini-2.5-flash-lite"`
	TranslateTargetLang string `env:"TRANSLATE_TARGET_LANG"`

	// Observability
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Computed (not from env)
	UpstreamTimeout time.Duration `env:"-"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	cfg.UpstreamTimeout = time.Duration(cfg.UpstreamTimeoutMS) * time.Millisecond

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.UpstreamTimeoutMS < 1 {
		return fmt.Errorf("upstream timeout must be at least 1ms, got %dms", c.UpstreamTimeoutMS)
	}

	switch c.StoreBackend {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres store backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s", c.StoreBackend)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}
