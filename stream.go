package nsobridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ChatCompletionStream opens a streaming chat completion. The returned
// stream is a lazy, finite sequence of chunks; call Recv until it returns
// io.EOF and Close when done.
func (c *Client) ChatCompletionStream(ctx context.Context, opts RequestOptions) (*ChatStream, error) {
	opts.Stream = true

	resp, err := c.prepareRequest(ctx, opts, "/chat/completions")
	if err != nil {
		return nil, err
	}

	return &ChatStream{
		body:   resp.Body,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

// ChatStream reads server-sent events from a streaming chat completion
// response. It is not restartable and not safe for concurrent use.
type ChatStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

// Recv returns the next chunk of the stream. It returns io.EOF once the
// provider signals completion with the [DONE] marker or closes the
// connection.
func (s *ChatStream) Recv() (*ChatStreamChunk, error) {
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("error reading stream: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return nil, io.EOF
		}
		if data == "" {
			continue
		}

		var chunk ChatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, fmt.Errorf("error decoding stream chunk: %w", err)
		}
		return &chunk, nil
	}
}

// Close releases the underlying response body.
func (s *ChatStream) Close() error {
	return s.body.Close()
}

// Accumulator reconstructs one complete model turn from stream chunks:
// visible text plus zero or more tool calls whose arguments may arrive as
// multiple fragments keyed by call index.
type Accumulator struct {
	text  strings.Builder
	calls []ToolCall
	slot  map[int]int
}

// Add folds one chunk into the accumulator and returns the visible text
// delta it carried, if any.
func (a *Accumulator) Add(chunk *ChatStreamChunk) string {
	if chunk == nil || len(chunk.Choices) == 0 {
		return ""
	}

	delta := chunk.Choices[0].Delta
	if delta.Content != "" {
		a.text.WriteString(delta.Content)
	}

	for _, tc := range delta.ToolCalls {
		a.addToolCallDelta(tc)
	}

	return delta.Content
}

func (a *Accumulator) addToolCallDelta(tc ToolCallDelta) {
	if a.slot == nil {
		a.slot = make(map[int]int)
	}

	pos, ok := a.slot[tc.Index]
	if !ok {
		pos = len(a.calls)
		a.slot[tc.Index] = pos
		a.calls = append(a.calls, ToolCall{Type: "function"})
	}

	call := &a.calls[pos]
	if tc.ID != "" {
		call.ID = tc.ID
	}
	if tc.Type != "" {
		call.Type = tc.Type
	}
	if tc.Function.Name != "" {
		call.Function.Name += tc.Function.Name
	}
	call.Function.Arguments += tc.Function.Arguments
}

// Text returns the accumulated visible text of the turn.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// ToolCalls returns the accumulated tool calls in the order the model
// emitted them.
func (a *Accumulator) ToolCalls() []ToolCall {
	return a.calls
}
