package toolserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// Server exposes a Registry over the Model Context Protocol on standard
// input/output. Discovery and invocation requests are correlated by the
// JSON-RPC ids of the underlying transport; invocation outcomes travel as
// the JSON-encoded Result envelope inside the tool response text.
type Server struct {
	mcp *mcpserver.MCPServer
	log logrus.FieldLogger
}

// NewServer builds an MCP server advertising every tool in the registry and
// dispatching calls through the given dispatcher.
func NewServer(registry *Registry, dispatcher *Dispatcher, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := mcpserver.NewMCPServer(
		"nso-mcp",
		"0.1.0",
		mcpserver.WithToolCapabilities(false),
	)

	for _, desc := range registry.List() {
		s.AddTool(mcpTool(desc), callHandler(dispatcher, desc.Name))
	}

	return &Server{mcp: s, log: log}
}

// ServeStdio serves the MCP protocol on stdin/stdout until the peer
// disconnects or the transport fails.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcp)
}

// mcpTool converts a registry descriptor into an MCP tool definition.
func mcpTool(desc Descriptor) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(desc.Description)}

	for name, prop := range desc.Params.Properties {
		var propOpts []mcp.PropertyOption
		if prop.Description != "" {
			propOpts = append(propOpts, mcp.Description(prop.Description))
		}
		if slices.Contains(desc.Params.Required, name) {
			propOpts = append(propOpts, mcp.Required())
		}

		switch prop.Type {
		case "number", "integer":
			opts = append(opts, mcp.WithNumber(name, propOpts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(name, propOpts...))
		}
	}

	return mcp.NewTool(desc.Name, opts...)
}

// callHandler adapts Dispatcher.Invoke to the MCP tool handler contract.
// The Result envelope always travels as text content; a protocol-level
// error would abort the session, which one failing tool must never do.
func callHandler(dispatcher *Dispatcher, name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := dispatcher.Invoke(ctx, name, request.GetArguments())

		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encoding tool result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
