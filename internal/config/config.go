package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	RequestTimeoutSec int `json:"request_timeout_sec" yaml:"request_timeout_sec"`
}

type CoinGecko struct {
	BaseURL               string `json:"base_url" yaml:"base_url"`
	APIKey                string `json:"api_key" yaml:"api_key"`
	APIKeyHeader          string `json:"api_key_header" yaml:"api_key_header"`
	Currency              string `json:"currency" yaml:"currency"`
	Order                 string `json:"order" yaml:"order"`
	Limit                 int    `json:"limit" yaml:"limit"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec" yaml:"min_request_interval_sec"`
	Burst                 int    `json:"burst" yaml:"burst"`
	CacheTTLSeconds       int    `json:"cache_ttl_sec" yaml:"cache_ttl_sec"`
}

type Assistant struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Model     string `json:"model" yaml:"model"`
	APIKey    string `json:"api_key" yaml:"api_key"`
	BaseURL   string `json:"base_url" yaml:"base_url"`
	TimeoutMs int    `json:"timeout_ms" yaml:"timeout_ms"`
	Title     string `json:"title" yaml:"title"`
	Greeting  string `json:"greeting" yaml:"greeting"`
}

type Config struct {
	HTTP      HTTP      `json:"http" yaml:"http"`
	CoinGecko CoinGecko `json:"coingecko" yaml:"coingecko"`
	Assistant Assistant `json:"assistant" yaml:"assistant"`
	LogFile   string    `json:"log_file" yaml:"log_file"`
}

func Default() Config {
	return Config{
		HTTP: HTTP{RequestTimeoutSec: 10},
		CoinGecko: CoinGecko{
			BaseURL:              "https://api.coingecko.com/api/v3",
			APIKeyHeader:         "x-cg-demo-api-key",
			Currency:             "usd",
			Order:                "market_cap_desc",
			Limit:                10,
			MaxRequestsPerMinute: 0,
			Burst:                1,
		},
		Assistant: Assistant{
			Enabled:   false,
			Model:     "gpt-4o-mini",
			TimeoutMs: 30000,
			Title:     "Crypto Assistant",
			Greeting:  "Hello! Ask me anything about cryptocurrencies.",
		},
	}
}

// Load reads a JSON or YAML config from path, picked by extension. If path is
// empty it looks for config.json then config.yaml in the working directory.
// A missing file yields defaults. Environment variables override secrets and
// select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, candidate := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	envInt("REQUEST_TIMEOUT_SEC", 1, &cfg.HTTP.RequestTimeoutSec)

	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.CoinGecko.APIKey = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		cfg.CoinGecko.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_API_KEY_HEADER"); v != "" {
		cfg.CoinGecko.APIKeyHeader = v
	}
	if v := os.Getenv("COINGECKO_CURRENCY"); v != "" {
		cfg.CoinGecko.Currency = strings.ToLower(v)
	}
	envInt("COINGECKO_LIMIT", 1, &cfg.CoinGecko.Limit)
	envInt("COINGECKO_MAX_RPM", 0, &cfg.CoinGecko.MaxRequestsPerMinute)
	envInt("COINGECKO_BURST", 1, &cfg.CoinGecko.Burst)
	envInt("COINGECKO_MIN_INTERVAL_SEC", 0, &cfg.CoinGecko.MinRequestIntervalSec)
	envInt("COINGECKO_CACHE_TTL_SEC", 0, &cfg.CoinGecko.CacheTTLSeconds)

	envBool("ASSISTANT_ENABLED", &cfg.Assistant.Enabled)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Assistant.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Assistant.Model = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Assistant.BaseURL = v
	}

	if v := os.Getenv("CRYPTOHUB_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// envInt sets *dst from the named variable when it parses to at least floor.
func envInt(name string, floor int, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	var x int
	if _, err := fmt.Sscanf(v, "%d", &x); err == nil && x >= floor {
		*dst = x
	}
}

func envBool(name string, dst *bool) {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes", "y":
		*dst = true
	case "0", "false", "no", "n":
		*dst = false
	}
}
