package nsobridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// maxToolRounds bounds how many tool-call rounds a single query may
// trigger before the session gives up on the model converging.
const maxToolRounds = 8

// Session drives one conversation against the chat provider. It owns the
// conversation state, advertises the discovered tools on every request, and
// resolves tool calls emitted by the model until a turn arrives with none.
// A Session is not safe for concurrent use.
type Session struct {
	client   *Client
	model    string
	tools    map[string]*Tool
	defs     []ToolParam
	messages []Message
}

// NewSession creates a session over the given client, model, and tool set.
func NewSession(client *Client, model string, tools []*Tool) *Session {
	s := &Session{
		client: client,
		model:  model,
		tools:  make(map[string]*Tool, len(tools)),
	}
	for _, t := range tools {
		s.tools[t.Name] = t
		s.defs = append(s.defs, t.ApiDef())
	}
	return s
}

// SetSystemPrompt sets or replaces the system turn at the head of the
// conversation.
func (s *Session) SetSystemPrompt(prompt string) {
	msg := Message{Role: "system", Content: prompt}
	if len(s.messages) > 0 && s.messages[0].Role == "system" {
		s.messages[0] = msg
		return
	}
	s.messages = append([]Message{msg}, s.messages...)
}

// Messages returns a copy of the conversation so far.
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Ask submits one user query and runs the orchestration loop to
// completion: stream the model's turn, forward visible text to onText as it
// arrives, dispatch any tool calls, fold the results back in, and resubmit
// until the model produces a turn without tool calls. The final text of the
// whole round-trip is returned.
//
// If ctx is canceled mid-stream, the round is abandoned: text already
// forwarded stands, but no tool results from the round are appended.
func (s *Session) Ask(ctx context.Context, query string, onText func(string)) (string, error) {
	s.messages = append(s.messages, Message{Role: "user", Content: query})

	var final strings.Builder
	for range maxToolRounds {
		acc := &Accumulator{}
		if err := s.streamTurn(ctx, acc, onText); err != nil {
			return final.String(), err
		}

		text := acc.Text()
		calls := acc.ToolCalls()

		if len(calls) == 0 {
			s.messages = append(s.messages, Message{Role: "assistant", Content: text})
			final.WriteString(text)
			return final.String(), nil
		}

		if text != "" {
			final.WriteString(text)
		}
		s.messages = append(s.messages, Message{Role: "assistant", Content: text, ToolCalls: calls})

		results := s.dispatch(ctx, calls)
		if ctx.Err() != nil {
			return final.String(), ctx.Err()
		}
		s.messages = append(s.messages, results...)
	}

	return final.String(), fmt.Errorf("model did not produce a final answer after %d tool rounds", maxToolRounds)
}

// streamTurn consumes one streamed model response into the accumulator.
func (s *Session) streamTurn(ctx context.Context, acc *Accumulator, onText func(string)) error {
	stream, err := s.client.ChatCompletionStream(ctx, RequestOptions{
		Model:    s.model,
		Messages: s.messages,
		Tools:    s.defs,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if delta := acc.Add(chunk); delta != "" && onText != nil {
			onText(delta)
		}
	}
}

// dispatch invokes every tool call of a turn concurrently but returns the
// result turns in the order the model emitted the calls, regardless of
// which backend call finishes first.
func (s *Session) dispatch(ctx context.Context, calls []ToolCall) []Message {
	results := make([]Message, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCall) {
			defer wg.Done()
			results[i] = Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    s.invoke(ctx, call),
			}
		}(i, call)
	}
	wg.Wait()

	return results
}

// invoke resolves and runs a single tool call; every failure becomes
// result text for the model rather than an error that ends the session.
func (s *Session) invoke(ctx context.Context, call ToolCall) string {
	tool, ok := s.tools[call.Function.Name]
	if !ok {
		return fmt.Sprintf("unknown tool: %s", call.Function.Name)
	}

	args, err := decodeArguments(call.Function.Arguments)
	if err != nil {
		return fmt.Sprintf("invalid tool arguments: %v", err)
	}

	out, err := tool.Call(ctx, args)
	if err != nil {
		return fmt.Sprintf("tool %s failed: %v", call.Function.Name, err)
	}
	return out
}

// decodeArguments parses the provider-supplied argument payload. An empty
// payload means no arguments.
func decodeArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
