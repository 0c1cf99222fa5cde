package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helixml/compset"
	"github.com/helixml/compset/infrastructure/api"
	"github.com/helixml/compset/internal/config"
	"github.com/helixml/compset/internal/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server with the background worker and scheduler.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                          Server host to bind to (default: 0.0.0.0)
  PORT                          Server port to listen on (default: 8080)
  DATA_DIR                      Data directory (default: ~/.compset)
  DB_URL                        Database URL (default: sqlite:///{data_dir}/compset.db)
  LOG_LEVEL                     Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                    Log format: pretty, json, text (default: pretty)
  API_KEYS                      Comma-separated keys required for mutating endpoints
  ENFORCE_OWNERSHIP             Require X-User-ID to own the property (default: true)
  AMENITY_DICTIONARY            YAML amenity dictionary (default: built in)
  REDIS_URL                     Cache competitor prices in Redis

  GRAPH_*                       Similarity graph defaults
    MAX_DISTANCE_KM             Search radius (default: 10)
    MAX_COMPETITORS             Relationships per property (default: 50)
    WEIGHT_GEO / WEIGHT_AMENITY / WEIGHT_REVIEW

  SCHEDULER_*                   Batch jobs
    ENABLED                     Run the daily jobs (default: true)
    INTERVAL                    Run interval in seconds (default: 86400)
    JOB_TIMEOUT                 Job timeout in seconds (default: 1800)

  PRICING_*                     Competitor price source
    ENDPOINT                    Remote pricing service (default: observed rates)
    TIMEOUT                     Lookup timeout in seconds (default: 2)
    CACHE_TTL                   Redis cache TTL in seconds (default: 900)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.Configure(cfg)
	logger.Info("starting compset", append([]any{slog.String("version", version)}, cfg.LogAttrs()...)...)

	client, err := compset.New(clientOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("create compset client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close compset client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client, version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.ListenAndServe(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
