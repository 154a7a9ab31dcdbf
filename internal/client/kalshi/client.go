// Package kalshi is a thin read-only client for a Kalshi-style markets API.
package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://api.elections.kalshi.com/trade-api/v2"
	}
	host = strings.TrimRight(host, "/")
	return &Client{host: host, httpClient: httpClient}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// GetMarkets fetches markets for one series, following cursors until the
// exchange runs out or maxPages is hit.
func (c *Client) GetMarkets(ctx context.Context, seriesTicker string, limit int) ([]Market, error) {
	if seriesTicker == "" {
		return nil, fmt.Errorf("series ticker is required")
	}
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	const maxPages = 20
	var (
		markets []Market
		cursor  string
	)
	for page := 0; page < maxPages; page++ {
		query := url.Values{}
		query.Set("series_ticker", seriesTicker)
		query.Set("limit", strconv.Itoa(limit))
		if cursor != "" {
			query.Set("cursor", cursor)
		}
		body, err := c.doRequest(ctx, "/markets", query)
		if err != nil {
			return nil, err
		}
		batch, next, err := parseMarkets(body, seriesTicker)
		if err != nil {
			return nil, err
		}
		markets = append(markets, batch...)
		if next == "" || len(batch) == 0 {
			break
		}
		cursor = next
	}
	return markets, nil
}

func parseMarkets(body []byte, seriesTicker string) ([]Market, string, error) {
	var resp marketsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("decode markets: %w", err)
	}
	markets := make([]Market, 0, len(resp.Markets))
	for _, rec := range resp.Markets {
		markets = append(markets, Market{
			Ticker:       rec.Ticker,
			EventTicker:  rec.EventTicker,
			SeriesTicker: seriesTicker,
			Title:        rec.Title,
			Status:       rec.Status,
			YesBid:       centsToPrice(rec.YesBid),
			YesAsk:       centsToPrice(rec.YesAsk),
			LastPrice:    centsToPrice(rec.LastPrice),
			Volume:       rec.Volume,
			OpenInterest: rec.OpenInterest,
		})
	}
	return markets, resp.Cursor, nil
}

// centsToPrice converts integer cents to an exact decimal probability.
func centsToPrice(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
