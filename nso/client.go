// Package nso provides a small synchronous client for the Cisco NSO
// RESTCONF API. Each call issues one HTTP request and returns the parsed
// response document; retry policy, if any, belongs to the caller.
package nso

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// Config holds the NSO connection parameters.
type Config struct {
	Scheme   string
	Address  string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// ConfigFromEnv builds a Config from NSO_* environment variables, falling
// back to the defaults of a local NSO development instance
// (http://localhost:8080, admin/admin, 10 second timeout).
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Scheme:   envOr("NSO_SCHEME", "http"),
		Address:  envOr("NSO_ADDRESS", "localhost"),
		Port:     8080,
		Username: envOr("NSO_USERNAME", "admin"),
		Password: envOr("NSO_PASSWORD", "admin"),
		Timeout:  10 * time.Second,
	}

	if v := os.Getenv("NSO_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NSO_PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("NSO_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid NSO_TIMEOUT_SECONDS %q: %w", v, err)
		}
		cfg.Timeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// BaseURL returns the root URL the client will issue requests against.
func (c Config) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Scheme, c.Address, c.Port)
}

// Client is a synchronous NSO RESTCONF client. It is safe for concurrent
// use; the zero-retry, bounded-timeout behavior is deliberate.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient creates a RESTCONF client from the given configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:  cfg.BaseURL(),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Get issues a GET request against the given RESTCONF path and returns the
// parsed JSON document. Transport failures map to ErrUnavailable, non-2xx
// responses to *RequestError, and unparseable bodies to ErrInvalidResponse.
func (c *Client) Get(ctx context.Context, path string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("error creating request: %w", err)
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/yang-data+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: reading body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: body is not valid JSON", ErrInvalidResponse)
	}

	return gjson.ParseBytes(body), nil
}
