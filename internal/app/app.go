// Package app wires configuration into the dashboard's components.
package app

import (
	"fmt"
	"time"

	"cryptohub/internal/assistant"
	"cryptohub/internal/config"
	"cryptohub/internal/httpx"
	"cryptohub/internal/provider"
	"cryptohub/internal/provider/cache"
	"cryptohub/internal/provider/coingecko"
	"cryptohub/internal/provider/coingeckoadapter"
	"cryptohub/internal/provider/ratelimit"
	"cryptohub/internal/viewmodel"
)

// NewProvider builds the CoinGecko provider, then applies the configured rate
// limit and, when a TTL is set, the cache.
func NewProvider(cfg config.Config) (provider.Provider, error) {
	cg := cfg.CoinGecko
	httpClient := httpx.New(requestTimeout(cfg))

	opts := []coingecko.CoinGeckoAPIClientOption{coingecko.WithHTTPClient(httpClient)}
	if cg.BaseURL != "" {
		opts = append(opts, coingecko.WithBaseURL(cg.BaseURL))
	}
	if cg.APIKeyHeader != "" {
		opts = append(opts, coingecko.WithAPIKeyHeader(cg.APIKeyHeader))
	}
	client, err := coingecko.NewCoinGeckoAPIClient(cg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("coingecko client: %w", err)
	}

	var p provider.Provider = coingeckoadapter.New(coingeckoadapter.Config{
		Name:       "CoinGecko",
		VsCurrency: cg.Currency,
		Order:      cg.Order,
	}, client)
	p = ratelimit.Wrap(p, cg.MaxRequestsPerMinute, cg.Burst, time.Duration(cg.MinRequestIntervalSec)*time.Second)
	if cg.CacheTTLSeconds > 0 {
		p = &cache.Provider{P: p, TTL: time.Duration(cg.CacheTTLSeconds) * time.Second}
	}
	return p, nil
}

// NewController returns a view controller fetching cfg's limit within the
// request timeout.
func NewController(cfg config.Config, p provider.Provider) *viewmodel.Controller {
	return viewmodel.New(p,
		viewmodel.WithLimit(cfg.CoinGecko.Limit),
		viewmodel.WithTimeout(requestTimeout(cfg)),
	)
}

func NewAssistant(cfg config.Assistant) assistant.Assistant {
	return assistant.New(assistant.Config{
		Enabled:   cfg.Enabled,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		TimeoutMs: cfg.TimeoutMs,
		Title:     cfg.Title,
		Greeting:  cfg.Greeting,
	})
}

func requestTimeout(cfg config.Config) time.Duration {
	if cfg.HTTP.RequestTimeoutSec <= 0 {
		return viewmodel.DefaultTimeout
	}
	return time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second
}
