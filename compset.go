// Package compset provides the competitive-intelligence engine of a
// hospitality pricing product.
//
// It ranks nearby competitor hotels against a subject property into a
// weighted similarity graph, and derives a daily neighborhood index from
// that graph plus pricing context.
//
// Basic usage:
//
//	client, err := compset.New(
//	    compset.WithSQLite(".compset/compset.db"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Rank competitors around a property
//	count, err := client.Graph.Build(ctx, propertyID, location, attrs, client.BuildOptions())
//
//	// Compute today's index
//	snapshot, err := client.Index.Compute(ctx, service.ComputeRequest{
//	    PropertyID: propertyID,
//	    Date:       time.Now(),
//	})
package compset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/helixml/compset/application/handler"
	"github.com/helixml/compset/application/service"
	"github.com/helixml/compset/domain/graph"
	"github.com/helixml/compset/domain/hotel"
	"github.com/helixml/compset/domain/property"
	"github.com/helixml/compset/domain/task"
	"github.com/helixml/compset/infrastructure/persistence"
	"github.com/helixml/compset/infrastructure/vectorizer"
	"github.com/helixml/compset/internal/config"
	"github.com/helixml/compset/internal/database"
)

// Client errors.
var (
	// ErrClientClosed is returned when using a closed client.
	ErrClientClosed = errors.New("compset: client is closed")

	// ErrUnknownJob is returned by RunJob for operations that are not batch jobs.
	ErrUnknownJob = errors.New("compset: unknown job")
)

// Client is the main entry point for the compset library.
// The background worker and scheduler start automatically on creation
// unless WithoutBackground is given.
//
// Access resources via struct fields:
//
//	client.Hotels.FindNearby(ctx, center, 5)
//	client.Graph.Competitors(ctx, propertyID, 10)
//	client.Index.Latest(ctx, propertyID)
type Client struct {
	Hotels      *service.Hotels
	Graph       *service.GraphBuilder
	Index       *service.IndexCalculator
	Tasks       *service.Queue
	Properties  property.Store
	JobStatuses task.StatusStore

	db           database.Database
	registry     *service.Registry
	worker       *service.Worker
	scheduler    *service.Scheduler
	handlers     handler.Handlers
	retry        service.RetryPolicy
	buildOptions graph.BuildOptions
	vectorizer   hotel.Vectorizer

	closers          []io.Closer
	logger           *slog.Logger
	apiKeys          []string
	enforceOwnership bool
	background       bool
	closed           atomic.Bool
	mu               sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	buildOptions := service.BuildOptionsFromConfig(cfg.graph)
	if err := buildOptions.Validate(); err != nil {
		return nil, fmt.Errorf("graph config: %w", err)
	}

	vec, err := newVectorizer(cfg.amenityDictionary)
	if err != nil {
		return nil, err
	}

	dbURL := cfg.dbURL
	if dbURL == "" {
		dataDir, err := config.PrepareDataDir(cfg.dataDir)
		if err != nil {
			return nil, err
		}
		dbURL = "sqlite:///" + filepath.ToSlash(filepath.Join(dataDir, "compset.db"))
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	// Create stores
	hotelStore := persistence.NewHotelStore(db)
	rateStore := persistence.NewRateStore(db)
	propertyStore := persistence.NewPropertyStore(db)
	relationshipStore := persistence.NewRelationshipStore(db)
	snapshotStore := persistence.NewSnapshotStore(db)
	taskStore := persistence.NewTaskStore(db)
	statusStore := persistence.NewJobStatusStore(db)

	prices, closers, err := buildPricingSource(ctx, cfg, rateStore, logger)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(err, errClose)
	}
	closers = append(cfg.closers, closers...)

	// Create application services
	hotels := service.NewHotels(hotelStore, rateStore, vec, logger).WithClock(cfg.clock)
	builder := service.NewGraphBuilder(hotels, relationshipStore, vec, logger)
	calculator := service.NewIndexCalculator(relationshipStore, snapshotStore, propertyStore, prices, logger).
		WithPricingTimeout(cfg.pricing.Timeout()).
		WithClock(cfg.clock)
	queue := service.NewQueue(taskStore, logger)
	registry := service.NewRegistry()
	retry := service.RetryPolicyFromConfig(cfg.scheduler)

	worker := service.NewWorker(taskStore, registry, logger).
		WithPollPeriod(cfg.workerPollPeriod).
		WithRetry(retry).
		WithJobTimeout(cfg.scheduler.JobTimeout())
	scheduler := service.NewScheduler(cfg.scheduler, queue, logger).WithClock(cfg.clock)

	client := &Client{
		Hotels:           hotels,
		Graph:            builder,
		Index:            calculator,
		Tasks:            queue,
		Properties:       propertyStore,
		JobStatuses:      statusStore,
		db:               db,
		registry:         registry,
		worker:           worker,
		scheduler:        scheduler,
		retry:            retry,
		buildOptions:     buildOptions,
		vectorizer:       vec,
		closers:          closers,
		logger:           logger,
		apiKeys:          cfg.apiKeys,
		enforceOwnership: cfg.enforceOwnership,
		background:       cfg.background,
	}

	client.registerHandlers(cfg)
	if err := client.validateHandlers(); err != nil {
		return nil, errors.Join(err, client.closeResources())
	}

	if client.background {
		worker.Start(ctx)
		scheduler.Start(ctx)
	}

	return client, nil
}

// Close stops the background worker and scheduler and releases resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.background {
		c.scheduler.Stop()
		c.worker.Stop()
	}

	if err := c.closeResources(); err != nil {
		return err
	}

	c.logger.Info("compset client closed")
	return nil
}

func (c *Client) closeResources() error {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// Ping verifies the database answers.
func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.db.Ping(ctx)
}

// RunJob runs a batch job synchronously with the configured retry policy
// and returns its final status.
func (c *Client) RunJob(ctx context.Context, op task.Operation, date time.Time) (task.Status, error) {
	if c.closed.Load() {
		return task.Status{}, ErrClientClosed
	}

	var run func(ctx context.Context) (task.Status, error)
	switch op {
	case task.OperationRunIndexJob:
		run = func(ctx context.Context) (task.Status, error) { return c.handlers.IndexJob.Run(ctx, date) }
	case task.OperationRunGraphJob:
		run = c.handlers.GraphJob.Run
	default:
		return task.Status{}, fmt.Errorf("%w: %s", ErrUnknownJob, op)
	}

	var status task.Status
	err := service.Retry(ctx, c.retry, c.logger, func(ctx context.Context) error {
		var err error
		status, err = run(ctx)
		return err
	})
	return status, err
}

// BuildOptions returns the configured default graph build options.
func (c *Client) BuildOptions() graph.BuildOptions {
	return c.buildOptions
}

// Vectorizer returns the amenity vectorizer in use.
func (c *Client) Vectorizer() hotel.Vectorizer {
	return c.vectorizer
}

// APIKeys returns the keys guarding mutating HTTP routes.
func (c *Client) APIKeys() []string {
	return c.apiKeys
}

// EnforceOwnership reports whether HTTP callers must own the property they
// address.
func (c *Client) EnforceOwnership() bool {
	return c.enforceOwnership
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func newVectorizer(path string) (vectorizer.Weighted, error) {
	if path == "" {
		return vectorizer.NewDefault(), nil
	}
	dict, err := vectorizer.LoadDictionary(path)
	if err != nil {
		return vectorizer.Weighted{}, fmt.Errorf("amenity dictionary: %w", err)
	}
	return vectorizer.NewWeighted(dict), nil
}
