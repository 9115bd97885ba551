// Command nso-mcp-server exposes Cisco NSO network-automation tools as an
// MCP server speaking on standard input/output.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bonolab/nsobridge/nso"
	"github.com/bonolab/nsobridge/toolserver"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "nso-mcp-server",
		Short:         "MCP server exposing Cisco NSO network-automation tools over stdio",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "secrets.env", "environment file with NSO connection settings")
	return cmd
}

func run(envFile string) error {
	// stdout carries the MCP transport; all logging goes to stderr.
	log := logrus.New()
	log.SetOutput(os.Stderr)

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg, err := nso.ConfigFromEnv()
	if err != nil {
		return err
	}

	client := nso.NewClient(cfg)
	devices := nso.NewDevices(client)
	log.WithField("base_url", cfg.BaseURL()).Info("NSO RESTCONF client initialized")

	registry := toolserver.NewRegistry()
	if err := toolserver.RegisterDeviceTools(registry, devices); err != nil {
		return err
	}

	dispatcher := toolserver.NewDispatcher(registry, log)
	srv := toolserver.NewServer(registry, dispatcher, log)

	log.WithField("tools", len(registry.List())).Info("starting NSO MCP server on stdio")
	if err := srv.ServeStdio(); err != nil {
		log.WithError(err).Error("MCP server terminated")
		return err
	}
	return nil
}
