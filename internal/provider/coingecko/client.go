package coingecko

import (
	"net/http"
	"net/url"
)

const (
	baseURL = "https://api.coingecko.com/api/v3"

	// DemoAPIKeyHeader carries keys issued for the public demo tier.
	DemoAPIKeyHeader = "x-cg-demo-api-key"
	// ProAPIKeyHeader carries keys issued for the paid tier.
	ProAPIKeyHeader = "x-cg-pro-api-key"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=coingecko_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CoinGeckoAPIClient is a client for the CoinGecko API.
type CoinGeckoAPIClient struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	// keyHeader is the header name the API key is sent under.
	keyHeader string
}

// CoinGeckoAPIClientOption is a configuration option for the CoinGecko API client.
type CoinGeckoAPIClientOption func(*CoinGeckoAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithAPIKeyHeader overrides the header used to send the API key.
func WithAPIKeyHeader(name string) CoinGeckoAPIClientOption {
	return func(c *CoinGeckoAPIClient) {
		if name != "" {
			c.keyHeader = name
		}
	}
}

// NewCoinGeckoAPIClient creates a new CoinGecko API client. An empty key
// uses the keyless public endpoint.
func NewCoinGeckoAPIClient(key string, options ...CoinGeckoAPIClientOption) (*CoinGeckoAPIClient, error) {
	var coinGeckoAPIClient = &CoinGeckoAPIClient{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		keyHeader:  DemoAPIKeyHeader,
	}
	for _, option := range options {
		option(coinGeckoAPIClient)
	}
	if key != "" {
		// https://docs.coingecko.com/reference/authentication
		coinGeckoAPIClient.header.Set(coinGeckoAPIClient.keyHeader, key)
	}
	return coinGeckoAPIClient, nil
}
