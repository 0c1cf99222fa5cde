package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/helixml/compset"
	"github.com/helixml/compset/internal/log"
	"github.com/helixml/compset/internal/mcp"
	"github.com/spf13/cobra"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:     "mcp",
		Aliases: []string{"stdio"},
		Short:   "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

Exposes the latest index, index trend and ranked competitors of a property
as MCP tools. Logs go to stderr since stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	logger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel())
	logger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
	)

	opts := append(clientOptions(cfg, logger), compset.WithoutBackground())
	client, err := compset.New(opts...)
	if err != nil {
		return fmt.Errorf("create compset client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close compset client", slog.Any("error", err))
		}
	}()

	return mcp.NewServer(client.Index, client.Graph, version, logger).ServeStdio()
}
