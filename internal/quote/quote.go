// Package quote provides an HTTP client for the external market-quote
// provider. Quotes are best-effort: every failure mode surfaces as an error
// the caller treats as "price unknown" for that ticker.
package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// quoteResponse is the provider's quote payload. "c" is the current price;
// the remaining fields are ignored.
type quoteResponse struct {
	Current float64 `json:"c"`
}

// Client fetches current market prices for tickers from the quote provider.
type Client struct {
	httpClient *http.Client
	baseURL    string // overridable for tests
	apiKey     string
}

// NewClient creates a quote provider client.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Quote fetches the current price for a ticker in the provider's native
// currency. Any transport error, non-200 status, malformed body, or
// missing/non-positive price field is returned as an error, which callers
// must treat as an unknown price rather than a failure of the whole
// computation.
func (c *Client) Quote(ctx context.Context, ticker string) (float64, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("building quote request for %s: %w", ticker, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("quote request for %s: %w", ticker, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote request for %s: unexpected status %d", ticker, resp.StatusCode)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return 0, fmt.Errorf("decoding quote response for %s: %w", ticker, err)
	}

	// The provider returns zero for unknown or delisted symbols.
	if quote.Current <= 0 {
		return 0, fmt.Errorf("no price for %s", ticker)
	}

	return quote.Current, nil
}
