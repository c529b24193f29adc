// Package client provides an HTTP facade over a remote StockSphere API.
// It attaches the session's bearer credential to every request and maps
// HTTP failures onto the application error taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "stocksphere/internal/errors"
	"stocksphere/internal/portfolio"
)

// Stock is a holding as returned by the StockSphere API.
type Stock struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Ticker       string   `json:"ticker"`
	Quantity     float64  `json:"quantity"`
	BuyPrice     float64  `json:"buyPrice"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
}

// StockInput is the payload for creating or replacing a stock.
type StockInput struct {
	Name         string   `json:"name"`
	Ticker       string   `json:"ticker"`
	Quantity     float64  `json:"quantity"`
	BuyPrice     float64  `json:"buyPrice"`
	CurrentPrice *float64 `json:"currentPrice,omitempty"`
}

// Session carries the credential for outbound requests. A zero Token means
// the caller is not logged in; requests fail before reaching the store.
type Session struct {
	Token string
}

// Client communicates with a StockSphere API instance.
type Client struct {
	baseURL    string
	session    Session
	httpClient *http.Client
}

// New creates a StockSphere API client for the given session.
func New(baseURL string, session Session, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
		httpClient: httpClient,
	}
}

// ListStocks fetches all holdings belonging to the authenticated user.
func (c *Client) ListStocks(ctx context.Context) ([]Stock, error) {
	var stocks []Stock
	if err := c.do(ctx, http.MethodGet, "/api/stocks", nil, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// CreateStock adds a new holding and returns it with its store-assigned ID.
func (c *Client) CreateStock(ctx context.Context, input StockInput) (*Stock, error) {
	var stock Stock
	if err := c.do(ctx, http.MethodPost, "/api/stocks", input, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// UpdateStock fully replaces the holding with the given ID.
func (c *Client) UpdateStock(ctx context.Context, id uint, input StockInput) (*Stock, error) {
	var stock Stock
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/stocks/%d", id), input, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// DeleteStock permanently removes the holding with the given ID. Deleting
// an already-gone ID returns STOCK_NOT_FOUND, which callers may treat as
// success.
func (c *Client) DeleteStock(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/stocks/%d", id), nil, nil)
}

// Metrics fetches server-computed portfolio metrics.
func (c *Client) Metrics(ctx context.Context) (*portfolio.Metrics, error) {
	var metrics portfolio.Metrics
	if err := c.do(ctx, http.MethodGet, "/api/stocks/metrics", nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ListHoldings implements portfolio.Source, allowing a metrics engine to
// run locally against a remote store.
func (c *Client) ListHoldings(ctx context.Context) ([]portfolio.Holding, error) {
	stocks, err := c.ListStocks(ctx)
	if err != nil {
		return nil, err
	}
	holdings := make([]portfolio.Holding, len(stocks))
	for i, s := range stocks {
		holdings[i] = portfolio.Holding{
			ID:           s.ID,
			Name:         s.Name,
			Ticker:       s.Ticker,
			Quantity:     s.Quantity,
			BuyPrice:     s.BuyPrice,
			CurrentPrice: s.CurrentPrice,
		}
	}
	return holdings, nil
}

// do issues one request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.session.Token == "" {
		return apperrors.ErrUnauthorized
	}

	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("marshaling request body: %w", err))
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRequestFailed, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.session.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrRequestFailed, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// errorBody is the store's error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// mapStatusError converts a non-2xx response into the error taxonomy,
// preserving any server-provided message.
func mapStatusError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	message := body.Error.Message

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.ErrUnauthorized
	case http.StatusNotFound:
		return apperrors.ErrStockNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		if message != "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, message)
		}
		return apperrors.ErrInvalidInput
	default:
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if message != "" {
			err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, message)
		}
		return apperrors.Wrap(apperrors.ErrRequestFailed, err)
	}
}
