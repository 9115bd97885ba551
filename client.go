// Package nsobridge bridges a chat model to Cisco NSO network-automation
// tools. It provides an OpenAI-compatible chat client with streaming
// support, MCP tool discovery over stdio or HTTP, and a session loop that
// turns model tool-call requests into MCP invocations and folds the results
// back into the conversation.
package nsobridge

import (
	"net/http"
	"time"
)

// Client is an OpenAI-compatible chat completion client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    map[string]string
}

// NewClient creates a chat client for the given API base URL
// (e.g. "https://api.openai.com/v1").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		headers: make(map[string]string),
	}
}

// SetAPIKey sets the bearer token used to authenticate against the
// provider.
func (c *Client) SetAPIKey(k string) {
	c.SetHeader("Authorization", "Bearer "+k)
}

// SetHeader sets a custom HTTP header for all requests made by this client.
func (c *Client) SetHeader(k, v string) {
	c.headers[k] = v
}
