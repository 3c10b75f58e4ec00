package coingeckoadapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cryptohub/internal/provider"
	"cryptohub/internal/provider/coingecko"
)

// newTestAdapter wires an Adapter to a test server running handler.
func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := coingecko.NewCoinGeckoAPIClient("", coingecko.WithBaseURL(srv.URL), coingecko.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return New(Config{}, client)
}

func writeBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestFetchTop_Fixture(t *testing.T) {
	fixture, err := os.ReadFile("../coingecko/fixtures/coins_markets.json")
	require.NoError(t, err)

	queries := make(chan string, 1)
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		_, _ = w.Write(fixture)
	})

	quotes, err := a.FetchTop(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, quotes, 10)
	query := <-queries
	require.Contains(t, query, "per_page=10")
	require.Contains(t, query, "vs_currency=usd")
	require.Contains(t, query, "order=market_cap_desc")
	require.Contains(t, query, "sparkline=true")
	require.Contains(t, query, "page=1")

	btc := quotes[0]
	require.Equal(t, "bitcoin", btc.ID)
	require.Equal(t, "Bitcoin", btc.Name)
	require.Equal(t, "btc", btc.Symbol)
	require.InEpsilon(t, 65000.12, btc.Price, 0.0001)
	require.InEpsilon(t, 1.52, btc.PriceChangePercent24h, 0.0001)
	require.Equal(t, 1, btc.Rank)
	require.Len(t, btc.Trend, 4)
	require.False(t, btc.UpdatedAt.IsZero())
}

func TestFetchTop_MissingSparklineKeepsQuoteWithEmptyTrend(t *testing.T) {
	a := newTestAdapter(t, writeBody(`[
		{"id":"bitcoin","name":"Bitcoin","symbol":"btc","current_price":65000,"price_change_percentage_24h":1.2,"sparkline_in_7d":{"price":[1,2,3]}},
		{"id":"newcoin","name":"New Coin","symbol":"new","current_price":0.5,"price_change_percentage_24h":null}
	]`))

	quotes, err := a.FetchTop(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	require.Equal(t, []float64{1, 2, 3}, quotes[0].Trend)

	// A listing without sparkline data is kept with an empty trend.
	require.Equal(t, "newcoin", quotes[1].ID)
	require.Empty(t, quotes[1].Trend)
	require.Zero(t, quotes[1].PriceChangePercent24h)
}

func TestFetchTop_SkipsIncompleteAndDuplicateEntries(t *testing.T) {
	a := newTestAdapter(t, writeBody(`[
		{"id":"bitcoin","name":"Bitcoin","symbol":"btc","current_price":65000},
		{"name":"No Id","symbol":"nid","current_price":1},
		{"id":"noprice","name":"No Price","symbol":"np"},
		{"id":"negative","name":"Negative","symbol":"neg","current_price":-1},
		{"id":"bitcoin","name":"Bitcoin Again","symbol":"btc","current_price":1},
		{"id":"wrongtype","name":"Wrong","symbol":"wt","current_price":"1"},
		{"id":"ethereum","name":"Ethereum","symbol":"eth","current_price":3000}
	]`))

	quotes, err := a.FetchTop(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	require.Equal(t, "bitcoin", quotes[0].ID)
	require.Equal(t, "Bitcoin", quotes[0].Name)
	require.Equal(t, "ethereum", quotes[1].ID)
}

func TestFetchTop_EmptyArray(t *testing.T) {
	a := newTestAdapter(t, writeBody(`[]`))

	quotes, err := a.FetchTop(t.Context(), 10)
	require.NoError(t, err)
	require.Empty(t, quotes)
}

func TestFetchTop_NoUsableEntriesIsMalformed(t *testing.T) {
	a := newTestAdapter(t, writeBody(`[{"id":"x"},"junk"]`))

	quotes, err := a.FetchTop(t.Context(), 10)
	require.Nil(t, quotes)
	var malformed *provider.MalformedResponseError
	require.True(t, errors.As(err, &malformed), "got %T: %v", err, err)
}

func TestFetchTop_BodyNotArrayIsMalformed(t *testing.T) {
	a := newTestAdapter(t, writeBody(`{"status":"ok"}`))

	_, err := a.FetchTop(t.Context(), 10)
	var malformed *provider.MalformedResponseError
	require.True(t, errors.As(err, &malformed), "got %T: %v", err, err)
	var decodeErr *coingecko.DecodeError
	require.True(t, errors.As(err, &decodeErr))
}

func TestFetchTop_ServerErrorIsNetworkError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	quotes, err := a.FetchTop(t.Context(), 10)
	require.Nil(t, quotes)
	var netErr *provider.NetworkError
	require.True(t, errors.As(err, &netErr), "got %T: %v", err, err)
	require.Contains(t, err.Error(), "500")
	require.Contains(t, err.Error(), "upstream exploded")
}

func TestFetchTop_TimeoutIsNetworkError(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err := a.FetchTop(ctx, 10)
	var netErr *provider.NetworkError
	require.True(t, errors.As(err, &netErr), "got %T: %v", err, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchTop_InvalidLimitSkipsRequest(t *testing.T) {
	var calls atomic.Int32
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})

	for _, limit := range []int{0, -3} {
		_, err := a.FetchTop(t.Context(), limit)
		require.ErrorIs(t, err, provider.ErrInvalidLimit)
	}
	require.Zero(t, calls.Load())
}

func TestNew_Defaults(t *testing.T) {
	client, err := coingecko.NewCoinGeckoAPIClient("")
	require.NoError(t, err)
	a := New(Config{}, client)
	require.Equal(t, "CoinGecko", a.Name())
	require.Equal(t, "usd", a.cfg.VsCurrency)
	require.Equal(t, "market_cap_desc", a.cfg.Order)
}
