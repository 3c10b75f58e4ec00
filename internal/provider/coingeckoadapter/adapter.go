package coingeckoadapter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"cryptohub/internal/provider"
	"cryptohub/internal/provider/coingecko"
)

type Config struct {
	Name       string // display name, default: CoinGecko
	VsCurrency string // quote currency, default: usd
	Order      string // ranking, default: market_cap_desc
}

// Adapter exposes the CoinGecko markets endpoint as a provider.Provider.
// Each FetchTop issues exactly one request; nothing is cached or retried here.
type Adapter struct {
	cfg    Config
	client *coingecko.CoinGeckoAPIClient
}

func New(cfg Config, client *coingecko.CoinGeckoAPIClient) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "CoinGecko"
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = "usd"
	}
	if cfg.Order == "" {
		cfg.Order = "market_cap_desc"
	}
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// FetchTop returns the first page of limit coins. Transport and status
// failures surface as *provider.NetworkError, unusable bodies as
// *provider.MalformedResponseError.
func (a *Adapter) FetchTop(ctx context.Context, limit int) ([]provider.Quote, error) {
	if limit <= 0 {
		return nil, provider.ErrInvalidLimit
	}

	page, err := a.client.GetCoinsMarkets(ctx, coingecko.MarketsParams{
		VsCurrency: a.cfg.VsCurrency,
		Order:      a.cfg.Order,
		PerPage:    limit,
		Page:       1,
		Sparkline:  true,
	})
	if err != nil {
		var decodeErr *coingecko.DecodeError
		if errors.As(err, &decodeErr) {
			return nil, &provider.MalformedResponseError{Reason: a.cfg.Name + " markets body", Err: err}
		}
		return nil, &provider.NetworkError{Op: a.cfg.Name + " markets", Err: err}
	}

	for _, s := range page.Skipped {
		log.Printf("%s: skipping entry %d: %v", strings.ToLower(a.cfg.Name), s.Index, s.Err)
	}

	out := make([]provider.Quote, 0, len(page.Coins))
	seen := make(map[string]struct{}, len(page.Coins))
	for i, c := range page.Coins {
		q, err := toQuote(c)
		if err != nil {
			log.Printf("%s: skipping entry %d: %v", strings.ToLower(a.cfg.Name), i, err)
			continue
		}
		// ids are unique within one fetch; first occurrence wins
		if _, dup := seen[q.ID]; dup {
			log.Printf("%s: skipping duplicate id %q", strings.ToLower(a.cfg.Name), q.ID)
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
	}

	total := len(page.Coins) + len(page.Skipped)
	if len(out) == 0 && total > 0 {
		return nil, &provider.MalformedResponseError{Reason: fmt.Sprintf("none of %d entries usable", total)}
	}
	return out, nil
}

// toQuote normalizes one coin. A missing sparkline yields an empty trend
// rather than dropping the coin.
func toQuote(c coingecko.Coin) (provider.Quote, error) {
	switch {
	case c.ID == nil || strings.TrimSpace(*c.ID) == "":
		return provider.Quote{}, errors.New("missing id")
	case c.Name == nil:
		return provider.Quote{}, fmt.Errorf("%s: missing name", *c.ID)
	case c.Symbol == nil:
		return provider.Quote{}, fmt.Errorf("%s: missing symbol", *c.ID)
	case c.CurrentPrice == nil:
		return provider.Quote{}, fmt.Errorf("%s: missing current_price", *c.ID)
	case *c.CurrentPrice < 0 || math.IsNaN(*c.CurrentPrice) || math.IsInf(*c.CurrentPrice, 0):
		return provider.Quote{}, fmt.Errorf("%s: invalid current_price %v", *c.ID, *c.CurrentPrice)
	}

	q := provider.Quote{
		ID:     *c.ID,
		Name:   *c.Name,
		Symbol: *c.Symbol,
		Price:  *c.CurrentPrice,
	}
	if c.PriceChangePercentage24h != nil {
		q.PriceChangePercent24h = *c.PriceChangePercentage24h
	}
	if c.MarketCapRank != nil {
		q.Rank = *c.MarketCapRank
	}
	if c.LastUpdated != nil {
		q.UpdatedAt = *c.LastUpdated
	}
	if c.SparklineIn7d != nil && len(c.SparklineIn7d.Price) > 0 {
		q.Trend = c.SparklineIn7d.Price
	}
	return q, nil
}
