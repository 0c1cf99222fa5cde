package compset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/helixml/compset/application/handler"
	"github.com/helixml/compset/domain/hotel"
	domainpricing "github.com/helixml/compset/domain/pricing"
	"github.com/helixml/compset/domain/task"
	"github.com/helixml/compset/infrastructure/pricing"
)

// registerHandlers registers every task handler with the worker registry.
func (c *Client) registerHandlers(cfg *clientConfig) {
	c.handlers = handler.Handlers{
		IndexJob: handler.NewIndexJob(c.Properties, c.Index, c.JobStatuses, c.logger).
			WithClock(cfg.clock),
		GraphJob: handler.NewGraphJob(
			c.Properties, c.Graph, c.buildOptions, cfg.scheduler.GraphBatchSize(), c.JobStatuses, c.logger,
		).WithClock(cfg.clock),
		BuildGraph:   handler.NewBuildGraph(c.Properties, c.Graph, c.buildOptions, c.logger),
		ComputeIndex: handler.NewComputeIndex(c.Index, c.logger),
	}
	c.handlers.Register(c.registry)

	c.logger.Debug("registered task handlers", slog.Int("count", len(task.All())))
}

// validateHandlers checks that every queued operation has a registered handler.
func (c *Client) validateHandlers() error {
	var missing []string
	for _, op := range task.All() {
		if !c.registry.HasHandler(op) {
			missing = append(missing, op.String())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing handlers for operations: [%s]", strings.Join(missing, ", "))
}

// buildPricingSource picks the competitor price source: an explicit
// override, the remote endpoint when configured, otherwise observed rates
// from the database. A Redis cache wraps whichever was picked when
// REDIS_URL is set.
func buildPricingSource(
	ctx context.Context,
	cfg *clientConfig,
	rates hotel.RateStore,
	logger *slog.Logger,
) (domainpricing.Source, []io.Closer, error) {
	var source domainpricing.Source
	switch {
	case cfg.pricingSource != nil:
		source = cfg.pricingSource
	case cfg.pricing.Endpoint() != "":
		source = pricing.NewHTTPSource(cfg.pricing.Endpoint(),
			pricing.WithTimeout(cfg.pricing.Timeout()),
			pricing.WithMaxConcurrency(cfg.pricing.MaxConcurrency()),
			pricing.WithLogger(logger),
		)
		logger.Info("using remote pricing source", slog.String("endpoint", cfg.pricing.Endpoint()))
	default:
		source = pricing.NewStoreSource(rates)
	}

	if cfg.pricing.RedisURL() == "" {
		return source, nil, nil
	}

	client, err := pricing.NewRedisClient(ctx, cfg.pricing.RedisURL())
	if err != nil {
		return nil, nil, fmt.Errorf("pricing cache: %w", err)
	}
	logger.Info("pricing cache enabled", slog.Duration("ttl", cfg.pricing.CacheTTL()))
	return pricing.NewCachedSource(source, client, cfg.pricing.CacheTTL(), logger), []io.Closer{client}, nil
}
