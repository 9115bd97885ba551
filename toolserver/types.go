// Package toolserver implements the server side of the NSO tool bridge: a
// registry of schema-described tools, an asynchronous dispatcher that runs
// tool handlers against the NSO backend, and the MCP stdio server exposing
// both to a chat client.
package toolserver

import (
	"context"
	"time"
)

// Result statuses. Every invocation resolves to exactly one of these; tool
// failures are reported inside the envelope, never as transport faults.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Property describes a single tool parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Schema is the JSON-schema-shaped parameter description of a tool.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Descriptor advertises one callable tool. Immutable after registration.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Params      Schema `json:"parameters"`
}

// Handler executes a tool call against the backend and returns the payload
// to embed in a success Result.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Result is the envelope every invocation resolves to.
type Result struct {
	Status       string         `json:"status"`
	Data         any            `json:"data,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

func errorResult(message string) Result {
	return Result{Status: StatusError, ErrorMessage: message}
}

func successResult(data any, args map[string]any) Result {
	return Result{
		Status: StatusSuccess,
		Data:   data,
		Metadata: map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
			"arguments": args,
		},
	}
}
