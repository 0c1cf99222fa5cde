package compset

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/helixml/compset/domain/pricing"
	"github.com/helixml/compset/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL             string
	dataDir           string
	logger            *slog.Logger
	apiKeys           []string
	enforceOwnership  bool
	workerPollPeriod  time.Duration
	amenityDictionary string
	graph             config.GraphConfig
	scheduler         config.SchedulerConfig
	pricing           config.PricingConfig
	pricingSource     pricing.Source
	clock             func() time.Time
	background        bool
	closers           []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	defaults := config.NewAppConfig()
	return &clientConfig{
		dataDir:          defaults.DataDir(),
		enforceOwnership: defaults.EnforceOwnership(),
		workerPollPeriod: defaults.WorkerPollPeriod(),
		graph:            defaults.Graph(),
		scheduler:        defaults.Scheduler(),
		pricing:          defaults.Pricing(),
		clock:            time.Now,
		background:       true,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig applies every setting of an AppConfig.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.dbURL = cfg.DBURL()
		c.dataDir = cfg.DataDir()
		c.apiKeys = cfg.APIKeys()
		c.enforceOwnership = cfg.EnforceOwnership()
		c.workerPollPeriod = cfg.WorkerPollPeriod()
		c.amenityDictionary = cfg.AmenityDictionary()
		c.graph = cfg.Graph()
		c.scheduler = cfg.Scheduler()
		c.pricing = cfg.Pricing()
	}
}

// WithSQLite stores data in the SQLite file at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + filepath.ToSlash(path)
	}
}

// WithPostgres stores data in the PostgreSQL database at dsn.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL sets the database URL (sqlite:///path or postgres://...).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAPIKeys sets the API keys that guard mutating HTTP routes.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = keys
	}
}

// WithOwnershipEnforced toggles per-property ownership checks on the HTTP API.
func WithOwnershipEnforced(enforce bool) Option {
	return func(c *clientConfig) {
		c.enforceOwnership = enforce
	}
}

// WithWorkerPollPeriod sets how often the background worker checks for new
// tasks. Lower values speed up task processing, which is useful in tests.
func WithWorkerPollPeriod(d time.Duration) Option {
	return func(c *clientConfig) {
		c.workerPollPeriod = d
	}
}

// WithAmenityDictionary loads the vectorizer dictionary from a YAML file.
func WithAmenityDictionary(path string) Option {
	return func(c *clientConfig) {
		c.amenityDictionary = path
	}
}

// WithGraphConfig sets the default graph build options.
func WithGraphConfig(g config.GraphConfig) Option {
	return func(c *clientConfig) {
		c.graph = g
	}
}

// WithSchedulerConfig sets the recurring job configuration.
func WithSchedulerConfig(s config.SchedulerConfig) Option {
	return func(c *clientConfig) {
		c.scheduler = s
	}
}

// WithPricingConfig sets the pricing-context source configuration.
func WithPricingConfig(p config.PricingConfig) Option {
	return func(c *clientConfig) {
		c.pricing = p
	}
}

// WithPricingSource replaces the configured pricing-context source.
func WithPricingSource(s pricing.Source) Option {
	return func(c *clientConfig) {
		c.pricingSource = s
	}
}

// WithClock overrides the time source used to date jobs and snapshots.
func WithClock(clock func() time.Time) Option {
	return func(c *clientConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithoutBackground disables the queue worker and the scheduler. Queued
// tasks stay pending; batch jobs can still be run with RunJob.
func WithoutBackground() Option {
	return func(c *clientConfig) {
		c.background = false
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}
