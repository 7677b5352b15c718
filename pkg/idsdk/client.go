package idsdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Credentials is a tenant API key. The id/secret pair authenticates every
// REST call (HTTP Basic) and the secret doubles as the HMAC key for access
// tokens and ID Site messages.
type Credentials struct {
	ID     string
	Secret string
}

// IsZero reports whether no credentials were configured.
func (c Credentials) IsZero() bool { return c.ID == "" && c.Secret == "" }

// Client talks to the identity service REST API. Resources returned from it
// keep a reference to the client so follow-up calls (lazy expansion, actions)
// reuse the same transport and credentials.
type Client struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials Credentials
	Logger      *slog.Logger
}

// Option customises a Client built with NewClient.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.Logger = l }
}

// NewClient creates a new client for the service at baseURL.
func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Credentials: creds,
		Logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetApplication fetches the application at href.
func (c *Client) GetApplication(ctx context.Context, href string) (*Application, error) {
	var app Application
	if err := c.getJSON(ctx, href, nil, &app); err != nil {
		return nil, err
	}
	app.bind(c)
	return &app, nil
}

// GetAccount fetches the account at href.
func (c *Client) GetAccount(ctx context.Context, href string) (*Account, error) {
	var acct Account
	if err := c.getJSON(ctx, href, nil, &acct); err != nil {
		return nil, err
	}
	acct.bind(c)
	return &acct, nil
}

// GetDirectory fetches the directory (account store) at href.
func (c *Client) GetDirectory(ctx context.Context, href string) (*Directory, error) {
	var dir Directory
	if err := c.getJSON(ctx, href, nil, &dir); err != nil {
		return nil, err
	}
	return &dir, nil
}

// GetAPIKeyByHref fetches a single API key by its href.
func (c *Client) GetAPIKeyByHref(ctx context.Context, href string, opts ...APIKeyOption) (*APIKey, error) {
	var key APIKey
	if err := c.getJSON(ctx, href, apiKeyQuery("", opts), &key); err != nil {
		return nil, err
	}
	key.bind(c)
	return &key, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.getJSON(ctx, "/livez", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
