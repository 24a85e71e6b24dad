package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/galzzz/drops-exporter/internal/api"
)

// Client is the HTTP client for the exporter's local API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Whitelist gets the current whitelist snapshot
func (c *Client) Whitelist(ctx context.Context) (*api.WhitelistResponse, error) {
	var resp api.WhitelistResponse
	if err := c.do(ctx, http.MethodGet, "/api/whitelist", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh reloads the whitelist and waits for the outcome
func (c *Client) Refresh(ctx context.Context) (*api.RefreshResponse, error) {
	var resp api.RefreshResponse
	if err := c.do(ctx, http.MethodPost, "/api/whitelist/refresh", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecentDrops gets the newest matched drops
func (c *Client) RecentDrops(ctx context.Context, limit int) ([]api.DropResponse, error) {
	path := "/api/drops"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var result struct {
		Drops []api.DropResponse `json:"drops"`
	}
	if err := c.do(ctx, http.MethodGet, path, &result); err != nil {
		return nil, err
	}
	return result.Drops, nil
}

func (c *Client) do(ctx context.Context, method, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
