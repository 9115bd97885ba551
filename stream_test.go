package nsobridge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func sseHandler(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "data: %s\n\n", line)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func collect(t *testing.T, stream *ChatStream) (*Accumulator, []string) {
	t.Helper()

	acc := &Accumulator{}
	var deltas []string
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			return acc, deltas
		}
		require.NoError(t, err)
		if delta := acc.Add(chunk); delta != "" {
			deltas = append(deltas, delta)
		}
	}
}

func TestChatCompletionStreamText(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`{"choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"}}]}`,
		`{"choices":[{"index":0,"delta":{"content":"lo"}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
	))
	defer srv.Close()

	client := NewClient(srv.URL)
	stream, err := client.ChatCompletionStream(context.Background(), RequestOptions{Model: "gpt-4o"})
	require.NoError(t, err)
	defer stream.Close()

	acc, deltas := collect(t, stream)
	require.Equal(t, "Hello", acc.Text())
	require.Equal(t, []string{"Hel", "lo"}, deltas)
	require.Empty(t, acc.ToolCalls())
}

func TestChatCompletionStreamAccumulatesToolCallFragments(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`{"choices":[{"index":0,"delta":{"role":"assistant","tool_calls":[{"index":0,"id":"call_a","type":"function","function":{"name":"get_device_platform","arguments":""}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"device"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"_name\":\"ios-0\"}"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_b","type":"function","function":{"name":"get_device_ned_ids","arguments":"{}"}}]}}]}`,
		`{"choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	))
	defer srv.Close()

	client := NewClient(srv.URL)
	stream, err := client.ChatCompletionStream(context.Background(), RequestOptions{Model: "gpt-4o"})
	require.NoError(t, err)
	defer stream.Close()

	acc, _ := collect(t, stream)
	calls := acc.ToolCalls()
	require.Len(t, calls, 2)

	require.Equal(t, "call_a", calls[0].ID)
	require.Equal(t, "get_device_platform", calls[0].Function.Name)
	require.JSONEq(t, `{"device_name":"ios-0"}`, calls[0].Function.Arguments)

	require.Equal(t, "call_b", calls[1].ID)
	require.Equal(t, "get_device_ned_ids", calls[1].Function.Name)
	require.JSONEq(t, `{}`, calls[1].Function.Arguments)
}

func TestChatStreamSkipsKeepAliveNoise(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "event: message\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"ok\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	stream, err := client.ChatCompletionStream(context.Background(), RequestOptions{Model: "gpt-4o"})
	require.NoError(t, err)
	defer stream.Close()

	acc, _ := collect(t, stream)
	require.Equal(t, "ok", acc.Text())
}

func TestChatStreamEOFWithoutDoneMarker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"partial\"}}]}\n\n")
		// connection closes with no [DONE]
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	stream, err := client.ChatCompletionStream(context.Background(), RequestOptions{Model: "gpt-4o"})
	require.NoError(t, err)
	defer stream.Close()

	acc, _ := collect(t, stream)
	require.Equal(t, "partial", acc.Text())
}

func TestChatCompletionStreamNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_api_key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.ChatCompletionStream(context.Background(), RequestOptions{Model: "gpt-4o"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
