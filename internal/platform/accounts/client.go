// Package accounts is an HTTP client for the remote account-lookup service.
// The service is a black box to this job; only the two lookup calls the
// wallet resolver needs are implemented.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openexch/tradelogd/internal/domain"
)

// Client talks to the account service over HTTP JSON.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an account-service client.
//
// baseURL is the service root, e.g. "https://accounts.internal:8080". The
// HTTP client carries no timeout of its own; the caller bounds each call via
// context.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{},
	}
}

// WalletByClient fetches the wallet registered for the given client id.
// A 404 means no such wallet and returns (nil, nil).
func (c *Client) WalletByClient(ctx context.Context, clientID string) (*domain.AccountWallet, error) {
	path := "/api/wallets/" + url.PathEscape(clientID)

	body, found, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("accounts: wallet by client %s: %w", clientID, err)
	}
	if !found {
		return nil, nil
	}

	var wallet domain.AccountWallet
	if err := json.Unmarshal(body, &wallet); err != nil {
		return nil, fmt.Errorf("accounts: decode wallet %s: %w", clientID, err)
	}
	return &wallet, nil
}

// WalletsByType lists the client's wallets of the given type. An empty list
// is a valid answer.
func (c *Client) WalletsByType(ctx context.Context, clientID, walletType string) ([]domain.AccountWallet, error) {
	path := "/api/clients/" + url.PathEscape(clientID) + "/wallets?type=" + url.QueryEscape(walletType)

	body, found, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("accounts: wallets by type for %s: %w", clientID, err)
	}
	if !found {
		return nil, nil
	}

	var wallets []domain.AccountWallet
	if err := json.Unmarshal(body, &wallets); err != nil {
		return nil, fmt.Errorf("accounts: decode wallets for %s: %w", clientID, err)
	}
	return wallets, nil
}

// get executes a GET and returns the response body. found is false for 404.
func (c *Client) get(ctx context.Context, path string) (body []byte, found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, true, nil
	case http.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
}

// WithTimeout is available for deployments without per-call context
// deadlines; it sets a transport-level timeout on the underlying client.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.httpClient.Timeout = d
	return c
}

var _ domain.AccountDirectory = (*Client)(nil)
