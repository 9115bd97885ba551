// Command nso-chat is an interactive network chat assistant. It spawns (or
// connects to) the NSO MCP tool server, advertises its tools to an
// OpenAI-compatible model, and streams answers while resolving the model's
// tool calls against NSO.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bonolab/nsobridge"
)

const systemPrompt = `You are a network automation assistant specializing in network infrastructure management.
You have access to tools that can interact directly with network devices and Cisco NSO (Network Services Orchestrator).

GUIDELINES FOR TOOL USAGE:
- When a user asks about NED IDs, use the get_device_ned_ids tool.
- When a user asks about a specific device's platform, extract the device name from their query and use get_device_platform with the device_name parameter.

Provide clear, accurate, and technical responses about network configurations, device status, and automation capabilities.`

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	envFile    string
	baseURL    string
	model      string
	serverCmd  string
	serverArgs []string
	mcpURL     string
}

func newCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "nso-chat",
		Short:        "Chat with an AI assistant that can query Cisco NSO",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", "secrets.env", "environment file with the provider API key")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&opts.model, "model", "gpt-4o", "model to chat with")
	cmd.Flags().StringVar(&opts.serverCmd, "server", "nso-mcp-server", "tool server command to spawn over stdio")
	cmd.Flags().StringArrayVar(&opts.serverArgs, "server-arg", nil, "argument passed to the tool server command (repeatable)")
	cmd.Flags().StringVar(&opts.mcpURL, "mcp-url", "", "connect to an MCP server over HTTP instead of spawning one")

	return cmd
}

func run(ctx context.Context, opts options) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if _, err := os.Stat(opts.envFile); err == nil {
		if err := godotenv.Load(opts.envFile); err != nil {
			return fmt.Errorf("loading %s: %w", opts.envFile, err)
		}
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	client := nsobridge.NewClient(opts.baseURL)
	client.SetAPIKey(apiKey)

	var tools []*nsobridge.Tool
	var err error
	if opts.mcpURL != "" {
		tools, err = nsobridge.ToolsFromMCP(ctx, opts.mcpURL)
	} else {
		var srv *nsobridge.StdioServer
		tools, srv, err = nsobridge.ToolsFromStdio(ctx, opts.serverCmd, opts.serverArgs...)
		if srv != nil {
			defer srv.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("connecting to tool server: %w", err)
	}

	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	fmt.Printf("Connected to tool server with tools: %s\n", strings.Join(names, ", "))
	fmt.Println("Type your queries, 'models' to list available models, or 'quit' to exit.")

	session := nsobridge.NewSession(client, opts.model, tools)
	session.SetSystemPrompt(systemPrompt)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nQuery: ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") {
			return nil
		}
		if strings.EqualFold(query, "models") {
			models, err := client.ListModels(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error listing models: %v\n", err)
				continue
			}
			for _, m := range models {
				fmt.Println(m.ID)
			}
			continue
		}

		_, err := session.Ask(ctx, query, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
}
