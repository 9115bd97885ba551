package nsobridge

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	mcpgo "github.com/metoro-io/mcp-golang"
	mcphttp "github.com/metoro-io/mcp-golang/transport/http"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

// Tool is a named, schema-described operation the model may request.
// Call invokes it and returns the textual result for the conversation.
type Tool struct {
	Name        string
	Description string
	Params      any

	Call func(context.Context, any) (string, error)
}

// ApiDef converts the tool into the wire shape expected by the chat
// provider's tools array.
func (t *Tool) ApiDef() ToolParam {
	return ToolParam{
		Type: "function",
		Function: &ToolFunction{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Params,
		},
	}
}

func mcpCall(t *Tool, client *mcpgo.Client) func(ctx context.Context, param any) (string, error) {
	return func(ctx context.Context, param any) (string, error) {
		resp, err := client.CallTool(ctx, t.Name, param)
		if err != nil {
			return "", err
		}

		var sb strings.Builder
		for _, c := range resp.Content {
			if c.TextContent != nil {
				sb.WriteString(c.TextContent.Text)
			}
		}

		return sb.String(), nil
	}
}

// ToolsFromMCP discovers the tools advertised by an MCP server reachable
// over HTTP.
func ToolsFromMCP(ctx context.Context, host string) ([]*Tool, error) {
	tpt := mcphttp.NewHTTPClientTransport(host)
	client := mcpgo.NewClient(tpt)

	if _, err := client.Initialize(ctx); err != nil {
		return nil, err
	}

	return toolsFromClient(ctx, client)
}

// StdioServer is a tool server subprocess spoken to over its
// stdin/stdout. Close kills the process and reaps it.
type StdioServer struct {
	cmd *exec.Cmd
}

// Close terminates the server subprocess.
func (s *StdioServer) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return s.cmd.Wait()
}

// ToolsFromStdio launches the given command as an MCP server subprocess and
// discovers the tools it advertises. The subprocess's stderr passes through
// so server logs stay visible.
func ToolsFromStdio(ctx context.Context, command string, args ...string) ([]*Tool, *StdioServer, error) {
	cmd := exec.Command(command, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("error creating stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("error creating stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("error starting tool server: %w", err)
	}

	srv := &StdioServer{cmd: cmd}

	tpt := stdio.NewStdioServerTransportWithIO(stdout, stdin)
	client := mcpgo.NewClient(tpt)

	if _, err := client.Initialize(ctx); err != nil {
		srv.Close()
		return nil, nil, fmt.Errorf("error initializing tool server: %w", err)
	}

	tools, err := toolsFromClient(ctx, client)
	if err != nil {
		srv.Close()
		return nil, nil, err
	}

	return tools, srv, nil
}

func toolsFromClient(ctx context.Context, client *mcpgo.Client) ([]*Tool, error) {
	tools, err := client.ListTools(ctx, nil)
	if err != nil {
		return nil, err
	}

	var out []*Tool
	for _, t := range tools.Tools {
		desc := ""
		if t.Description != nil {
			desc = *t.Description
		}

		tool := &Tool{
			Name:        t.Name,
			Description: desc,
			Params:      t.InputSchema,
		}
		tool.Call = mcpCall(tool, client)
		out = append(out, tool)
	}

	return out, nil
}
