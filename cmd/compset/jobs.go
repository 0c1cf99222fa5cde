package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/helixml/compset"
	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/task"
	"github.com/helixml/compset/internal/log"
	"github.com/spf13/cobra"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run batch jobs",
	}
	cmd.AddCommand(jobsRunCmd())
	return cmd
}

func jobsRunCmd() *cobra.Command {
	var (
		envFile string
		day     string
	)

	cmd := &cobra.Command{
		Use:       "run [index|graph]",
		Short:     "Run a batch job once in the foreground",
		Long:      `Run the daily index job or the graph fill-in job once, without the HTTP server or scheduler.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"index", "graph"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), envFile, args[0], day)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&day, "date", "", "Index date, YYYY-MM-DD (default: today UTC)")

	return cmd
}

func runJob(ctx context.Context, envFile, name, day string) error {
	op, ok := task.ParseJob(name)
	if !ok {
		return fmt.Errorf("%w: %q", compset.ErrUnknownJob, name)
	}

	date := calendar.Day(time.Now())
	if day != "" {
		parsed, err := calendar.Parse(day)
		if err != nil {
			return err
		}
		date = parsed
	}

	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	logger := log.Configure(cfg)

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

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	status, err := client.RunJob(ctx, op, date)
	if err != nil {
		return fmt.Errorf("%s job: %w", strings.ToLower(name), err)
	}

	fmt.Printf("%s job %s: %d total, %d succeeded, %d failed\n",
		strings.ToLower(name), status.State(), status.Total(), status.Succeeded(), status.Failed())
	return nil
}
