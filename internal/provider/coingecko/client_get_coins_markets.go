package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// MarketsParams selects the page of /coins/markets to fetch.
type MarketsParams struct {
	VsCurrency string
	Order      string
	PerPage    int
	Page       int
	Sparkline  bool
}

// Coin represents one entry of the /coins/markets response. Absent or null
// fields are nil.
type Coin struct {
	ID                       *string
	Name                     *string
	Symbol                   *string
	CurrentPrice             *float64
	PriceChangePercentage24h *float64
	MarketCapRank            *int
	LastUpdated              *time.Time
	SparklineIn7d            *Sparkline
}

// Sparkline holds the trailing price samples of a coin.
type Sparkline struct {
	Price []float64
}

// SkippedEntry records a response entry that could not be decoded.
type SkippedEntry struct {
	Index int
	Err   error
}

// MarketsPage is one decoded /coins/markets page.
type MarketsPage struct {
	Coins   []Coin
	Skipped []SkippedEntry
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Reason, e.StatusCode, e.Body)
}

// DecodeError is returned when the response body is not a JSON array.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decoding markets response: %v", e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 2 << 10

// GetCoinsMarkets retrieves one page of coins ordered as requested.
func (c *CoinGeckoAPIClient) GetCoinsMarkets(ctx context.Context, params MarketsParams, opts ...CoinGeckoAPIClientOption) (*MarketsPage, error) {
	var override = &CoinGeckoAPIClient{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
		keyHeader:  c.keyHeader,
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)
	query.Set("vs_currency", params.VsCurrency)
	query.Set("order", params.Order)
	query.Set("per_page", strconv.Itoa(params.PerPage))
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("sparkline", strconv.FormatBool(params.Sparkline))

	url := fmt.Sprintf("%s/coins/markets?%s", strings.TrimRight(override.baseURL, "/"), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = override.header
	req.Header.Set("Accept", "application/json")

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(b))}
		switch res.StatusCode {
		case http.StatusBadRequest:
			statusErr.Reason = "bad request"
		case http.StatusUnauthorized, http.StatusForbidden:
			statusErr.Reason = "unauthorized"
		case http.StatusTooManyRequests:
			statusErr.Reason = "rate limited"
		default:
			statusErr.Reason = "unexpected status code"
		}
		return nil, statusErr
	}

	var body []any
	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(&body); err != nil {
		return nil, &DecodeError{Err: err}
	}

	page := &MarketsPage{Coins: make([]Coin, 0, len(body))}
	for i, raw := range body {
		// {
		//   "id": "bitcoin",
		//   "symbol": "btc",
		//   "name": "Bitcoin",
		//   "current_price": 65000,
		//   "market_cap_rank": 1,
		//   "price_change_percentage_24h": 1.234,
		//   "last_updated": "2024-07-17T13:53:47.857Z",
		//   "sparkline_in_7d": { "price": [64000.1, 64210.7, ...] }
		// }
		coin, err := decodeCoin(raw)
		if err != nil {
			page.Skipped = append(page.Skipped, SkippedEntry{Index: i, Err: err})
			continue
		}
		page.Coins = append(page.Coins, coin)
	}

	return page, nil
}

func decodeCoin(raw any) (Coin, error) {
	item, ok := raw.(map[string]any)
	if !ok {
		return Coin{}, fmt.Errorf("decoding entry: unexpected type: %T", raw)
	}

	var coin Coin
	var err error
	if coin.ID, err = parseNullableValue[string](item, "id"); err != nil {
		return Coin{}, fmt.Errorf("decoding id: %w", err)
	}
	if coin.Name, err = parseNullableValue[string](item, "name"); err != nil {
		return Coin{}, fmt.Errorf("decoding name: %w", err)
	}
	if coin.Symbol, err = parseNullableValue[string](item, "symbol"); err != nil {
		return Coin{}, fmt.Errorf("decoding symbol: %w", err)
	}
	if coin.CurrentPrice, err = parseNullableValue[float64](item, "current_price"); err != nil {
		return Coin{}, fmt.Errorf("decoding current_price: %w", err)
	}
	if coin.PriceChangePercentage24h, err = parseNullableValue[float64](item, "price_change_percentage_24h"); err != nil {
		return Coin{}, fmt.Errorf("decoding price_change_percentage_24h: %w", err)
	}

	rank, err := parseNullableValue[float64](item, "market_cap_rank")
	if err != nil {
		return Coin{}, fmt.Errorf("decoding market_cap_rank: %w", err)
	}
	if rank != nil {
		r := int(*rank)
		coin.MarketCapRank = &r
	}

	// last_updated is informational; an unparsable value is dropped.
	if s, err := parseNullableValue[string](item, "last_updated"); err == nil && s != nil {
		if t, err := time.Parse(time.RFC3339, *s); err == nil {
			t = t.UTC()
			coin.LastUpdated = &t
		}
	}

	coin.SparklineIn7d, err = decodeSparkline(item)
	if err != nil {
		return Coin{}, err
	}
	return coin, nil
}

var errNotArray = errors.New("price is not an array")

func decodeSparkline(item map[string]any) (*Sparkline, error) {
	v, ok := item["sparkline_in_7d"]
	if !ok || v == nil {
		return nil, nil
	}
	data, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding sparkline_in_7d: unexpected type: %T", v)
	}
	pv, ok := data["price"]
	if !ok || pv == nil {
		return nil, nil
	}
	samples, ok := pv.([]any)
	if !ok {
		return nil, fmt.Errorf("decoding sparkline_in_7d: %w", errNotArray)
	}

	prices := make([]float64, 0, len(samples))
	for _, s := range samples {
		// Null samples show up for gaps in the upstream series.
		if s == nil {
			continue
		}
		f, ok := s.(float64)
		if !ok {
			return nil, fmt.Errorf("decoding sparkline_in_7d sample: unexpected type: %T", s)
		}
		prices = append(prices, f)
	}
	return &Sparkline{Price: prices}, nil
}

// parseNullableValue is a helper function to parse a nullable value.
func parseNullableValue[T any](data map[string]any, key string) (*T, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	if v, ok := v.(T); ok {
		return &v, nil
	}
	return nil, fmt.Errorf("unexpected type: %T", v)
}
