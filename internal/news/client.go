// Package news fetches the news feed and pages it for display.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/carbon-footprint/internal/common"
	"github.com/Veraticus/carbon-footprint/internal/model"
)

// NewsPath is the news API endpoint.
const NewsPath = "/api/news"

// Fetcher returns the full list of news items.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]model.NewsItem, error)
}

// FeedResponse is the news API payload.
type FeedResponse struct {
	Items []model.NewsItem `json:"items"`
}

// Client fetches the news list from a remote API.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		url:        strings.TrimRight(baseURL, "/") + NewsPath,
		httpClient: httpClient,
	}
}

// NewURLClient creates a client that reads the feed from an exact URL.
func NewURLClient(feedURL string, httpClient *http.Client) *Client {
	c := NewClient("", httpClient)
	c.url = feedURL
	return c
}

// FetchAll fetches every item. Transport failures and non-2xx statuses wrap
// ErrFetch; a 2xx with an unexpected body wraps ErrBadResponse.
func (c *Client) FetchAll(ctx context.Context) ([]model.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", common.ErrFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: news API returned status %d", common.ErrFetch, resp.StatusCode)
	}

	return decodeFeed(body)
}

func decodeFeed(body []byte) ([]model.NewsItem, error) {
	var payload struct {
		Items *[]model.NewsItem `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrBadResponse, err)
	}
	if payload.Items == nil {
		return nil, fmt.Errorf("%w: missing items field", common.ErrBadResponse)
	}
	return *payload.Items, nil
}
