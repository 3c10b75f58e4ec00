package provider

import (
	"context"
	"errors"
	"time"
)

// Quote is the normalized market snapshot returned by all providers.
type Quote struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	Symbol                string    `json:"symbol"`
	Price                 float64   `json:"price"`
	PriceChangePercent24h float64   `json:"price_change_percent_24h"`
	Trend                 []float64 `json:"trend,omitempty"`
	Rank                  int       `json:"rank,omitempty"`
	UpdatedAt             time.Time `json:"updated_at,omitempty"`
}

// Provider fetches the top assets ordered by the provider's ranking.
//
//go:generate mockgen -package=viewmodel_test -destination=../viewmodel/mock_provider_test.go -source=provider.go Provider
type Provider interface {
	Name() string
	FetchTop(ctx context.Context, limit int) ([]Quote, error)
}

// ErrInvalidLimit is returned when FetchTop is called with limit <= 0.
var ErrInvalidLimit = errors.New("limit must be greater than zero")
