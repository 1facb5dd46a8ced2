// Package client is a Go client for the registry HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketfactory/internal/registry/models"
	"marketfactory/pkg/platform/httputil"
)

// Client calls the registry view endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("registry api: %d %s: %s", e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("registry api: %d %s", e.Status, e.Code)
}

// New creates a client for baseURL. A nil httpClient gets a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// ListAll calls get_markets_list.
func (c *Client) ListAll(ctx context.Context) ([]models.MarketID, error) {
	var ids []models.MarketID
	err := c.view(ctx, "get_markets_list", nil, &ids)
	return ids, err
}

// Count calls get_markets_count.
func (c *Client) Count(ctx context.Context) (models.U64, error) {
	var n models.U64
	err := c.view(ctx, "get_markets_count", nil, &n)
	return n, err
}

// ListPage calls get_markets with from_index and limit.
func (c *Client) ListPage(ctx context.Context, from, limit uint64) ([]models.MarketID, error) {
	args := map[string]models.U64{
		"from_index": models.U64(from),
		"limit":      models.U64(limit),
	}
	var ids []models.MarketID
	err := c.view(ctx, "get_markets", args, &ids)
	return ids, err
}

func (c *Client) view(ctx context.Context, method string, args any, out any) error {
	var body bytes.Buffer
	if args != nil {
		if err := json.NewEncoder(&body).Encode(args); err != nil {
			return fmt.Errorf("encode %s args: %w", method, err)
		}
	}

	endpoint := c.baseURL + "/view/" + url.PathEscape(method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope httputil.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil {
			apiErr.Code = envelope.Error
			apiErr.Description = envelope.ErrorDescription
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}
