package nsobridge

import (
	"context"
	"encoding/json"
	"fmt"
)

// ListModels retrieves the list of available models from the /models
// endpoint.
func (c *Client) ListModels(ctx context.Context) ([]ModelDesc, error) {
	resp, err := c.prepareGet(ctx, "/models")
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	var out listModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// ChatCompletion sends a non-streaming chat completion request to the
// /chat/completions endpoint. For streaming use ChatCompletionStream.
func (c *Client) ChatCompletion(ctx context.Context, opts RequestOptions) (*ChatResponse, error) {
	if opts.Stream {
		return nil, fmt.Errorf("streaming requested, use ChatCompletionStream")
	}

	resp, err := c.prepareRequest(ctx, opts, "/chat/completions")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	return &response, nil
}
