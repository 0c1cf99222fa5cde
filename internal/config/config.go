// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                  = "0.0.0.0"
	DefaultPort                  = 8080
	DefaultLogLevel              = "INFO"
	DefaultMaxDistanceKm         = 10.0
	DefaultMaxCompetitors        = 50
	DefaultWeightGeo             = 0.4
	DefaultWeightAmenity         = 0.3
	DefaultWeightReview          = 0.3
	DefaultSchedulerInterval     = 24 * time.Hour
	DefaultGraphBatchSize        = 100
	DefaultRetryAttempts         = 3
	DefaultRetryInitialDelay     = 2 * time.Second
	DefaultRetryBackoffFactor    = 2.0
	DefaultJobTimeout            = 30 * time.Minute
	DefaultWorkerPollPeriod      = time.Second
	DefaultPricingTimeout        = 2 * time.Second
	DefaultPricingCacheTTL       = 15 * time.Minute
	DefaultPricingMaxConcurrency = 8
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatText   LogFormat = "text"
	LogFormatJSON   LogFormat = "json"
)

// GraphConfig holds the defaults applied to similarity graph builds.
type GraphConfig struct {
	maxDistanceKm  float64
	maxCompetitors int
	weightGeo      float64
	weightAmenity  float64
	weightReview   float64
}

// NewGraphConfig creates a GraphConfig with defaults.
func NewGraphConfig() GraphConfig {
	return GraphConfig{
		maxDistanceKm:  DefaultMaxDistanceKm,
		maxCompetitors: DefaultMaxCompetitors,
		weightGeo:      DefaultWeightGeo,
		weightAmenity:  DefaultWeightAmenity,
		weightReview:   DefaultWeightReview,
	}
}

// MaxDistanceKm returns the search radius in kilometres.
func (g GraphConfig) MaxDistanceKm() float64 { return g.maxDistanceKm }

// MaxCompetitors returns the cap on relationships per property.
func (g GraphConfig) MaxCompetitors() int { return g.maxCompetitors }

// Weights returns the geo, amenity and review weights.
func (g GraphConfig) Weights() (geo, amenity, review float64) {
	return g.weightGeo, g.weightAmenity, g.weightReview
}

// WithMaxDistanceKm returns a copy with the radius set.
func (g GraphConfig) WithMaxDistanceKm(km float64) GraphConfig {
	g.maxDistanceKm = km
	return g
}

// WithMaxCompetitors returns a copy with the competitor cap set.
func (g GraphConfig) WithMaxCompetitors(n int) GraphConfig {
	g.maxCompetitors = n
	return g
}

// WithWeights returns a copy with the similarity weights set.
func (g GraphConfig) WithWeights(geo, amenity, review float64) GraphConfig {
	g.weightGeo, g.weightAmenity, g.weightReview = geo, amenity, review
	return g
}

// SchedulerConfig configures the recurring batch jobs.
type SchedulerConfig struct {
	enabled            bool
	interval           time.Duration
	graphBatchSize     int
	retryAttempts      int
	retryInitialDelay  time.Duration
	retryBackoffFactor float64
	jobTimeout         time.Duration
}

// NewSchedulerConfig creates a SchedulerConfig with defaults.
func NewSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		enabled:            true,
		interval:           DefaultSchedulerInterval,
		graphBatchSize:     DefaultGraphBatchSize,
		retryAttempts:      DefaultRetryAttempts,
		retryInitialDelay:  DefaultRetryInitialDelay,
		retryBackoffFactor: DefaultRetryBackoffFactor,
		jobTimeout:         DefaultJobTimeout,
	}
}

// Enabled returns whether the scheduler runs.
func (s SchedulerConfig) Enabled() bool { return s.enabled }

// Interval returns the time between job runs.
func (s SchedulerConfig) Interval() time.Duration { return s.interval }

// GraphBatchSize returns how many properties one graph job may build.
func (s SchedulerConfig) GraphBatchSize() int { return s.graphBatchSize }

// RetryAttempts returns how often a failed job is retried.
func (s SchedulerConfig) RetryAttempts() int { return s.retryAttempts }

// RetryInitialDelay returns the delay before the first retry.
func (s SchedulerConfig) RetryInitialDelay() time.Duration { return s.retryInitialDelay }

// RetryBackoffFactor returns the retry delay multiplier.
func (s SchedulerConfig) RetryBackoffFactor() float64 { return s.retryBackoffFactor }

// JobTimeout returns the deadline applied to one job run.
func (s SchedulerConfig) JobTimeout() time.Duration { return s.jobTimeout }

// WithEnabled returns a new config with enabled set.
func (s SchedulerConfig) WithEnabled(enabled bool) SchedulerConfig {
	s.enabled = enabled
	return s
}

// WithInterval returns a new config with the interval set.
func (s SchedulerConfig) WithInterval(d time.Duration) SchedulerConfig {
	s.interval = d
	return s
}

// WithGraphBatchSize returns a new config with the batch size set.
func (s SchedulerConfig) WithGraphBatchSize(n int) SchedulerConfig {
	s.graphBatchSize = n
	return s
}

// WithRetry returns a new config with the retry policy set.
func (s SchedulerConfig) WithRetry(attempts int, initialDelay time.Duration, factor float64) SchedulerConfig {
	s.retryAttempts = attempts
	s.retryInitialDelay = initialDelay
	s.retryBackoffFactor = factor
	return s
}

// WithJobTimeout returns a new config with the job timeout set.
func (s SchedulerConfig) WithJobTimeout(d time.Duration) SchedulerConfig {
	s.jobTimeout = d
	return s
}

// PricingConfig configures where pricing context is read from.
type PricingConfig struct {
	endpoint       string
	timeout        time.Duration
	redisURL       string
	cacheTTL       time.Duration
	maxConcurrency int
}

// NewPricingConfig creates a PricingConfig with defaults.
func NewPricingConfig() PricingConfig {
	return PricingConfig{
		timeout:        DefaultPricingTimeout,
		cacheTTL:       DefaultPricingCacheTTL,
		maxConcurrency: DefaultPricingMaxConcurrency,
	}
}

// Endpoint returns the remote pricing service URL, empty when unset.
func (p PricingConfig) Endpoint() string { return p.endpoint }

// Timeout returns the per-call timeout.
func (p PricingConfig) Timeout() time.Duration { return p.timeout }

// RedisURL returns the cache location, empty when caching is off.
func (p PricingConfig) RedisURL() string { return p.redisURL }

// CacheTTL returns how long cached prices are kept.
func (p PricingConfig) CacheTTL() time.Duration { return p.cacheTTL }

// MaxConcurrency returns the number of concurrent remote price lookups.
func (p PricingConfig) MaxConcurrency() int { return p.maxConcurrency }

// WithEndpoint returns a new config with the remote endpoint set.
func (p PricingConfig) WithEndpoint(url string) PricingConfig {
	p.endpoint = url
	return p
}

// WithTimeout returns a new config with the timeout set.
func (p PricingConfig) WithTimeout(d time.Duration) PricingConfig {
	p.timeout = d
	return p
}

// WithCache returns a new config with the Redis cache set.
func (p PricingConfig) WithCache(redisURL string, ttl time.Duration) PricingConfig {
	p.redisURL = redisURL
	p.cacheTTL = ttl
	return p
}

// WithMaxConcurrency returns a new config with the lookup concurrency set.
func (p PricingConfig) WithMaxConcurrency(n int) PricingConfig {
	p.maxConcurrency = n
	return p
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host              string
	port              int
	dataDir           string
	dbURL             string
	logLevel          string
	logFormat         LogFormat
	apiKeys           []string
	enforceOwnership  bool
	workerPollPeriod  time.Duration
	amenityDictionary string
	graph             GraphConfig
	scheduler         SchedulerConfig
	pricing           PricingConfig
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".compset"
	}
	return filepath.Join(home, ".compset")
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:             DefaultHost,
		port:             DefaultPort,
		dataDir:          dataDir,
		dbURL:            "sqlite:///" + filepath.Join(dataDir, "compset.db"),
		logLevel:         DefaultLogLevel,
		logFormat:        LogFormatPretty,
		apiKeys:          []string{},
		enforceOwnership: true,
		workerPollPeriod: DefaultWorkerPollPeriod,
		graph:            NewGraphConfig(),
		scheduler:        NewSchedulerConfig(),
		pricing:          NewPricingConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns the keys accepted on mutating routes.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// EnforceOwnership reports whether per-property ownership is checked.
func (c AppConfig) EnforceOwnership() bool { return c.enforceOwnership }

// WorkerPollPeriod returns how often the worker polls the queue.
func (c AppConfig) WorkerPollPeriod() time.Duration { return c.workerPollPeriod }

// AmenityDictionary returns the YAML dictionary path, empty for the built-in one.
func (c AppConfig) AmenityDictionary() string { return c.amenityDictionary }

// Graph returns the graph build defaults.
func (c AppConfig) Graph() GraphConfig { return c.graph }

// Scheduler returns the scheduler configuration.
func (c AppConfig) Scheduler() SchedulerConfig { return c.scheduler }

// Pricing returns the pricing-context configuration.
func (c AppConfig) Pricing() PricingConfig { return c.pricing }

// LogAttrs returns the configuration as slog attributes, omitting secrets.
func (c AppConfig) LogAttrs() []any {
	geo, amenity, review := c.graph.Weights()
	return []any{
		"addr", c.Addr(),
		"db", redactURL(c.dbURL),
		"log_level", c.logLevel,
		"api_keys", len(c.apiKeys),
		"enforce_ownership", c.enforceOwnership,
		"graph_radius_km", c.graph.maxDistanceKm,
		"graph_max_competitors", c.graph.maxCompetitors,
		"graph_weights", fmt.Sprintf("%.2f/%.2f/%.2f", geo, amenity, review),
		"scheduler_enabled", c.scheduler.enabled,
		"scheduler_interval", c.scheduler.interval,
		"pricing_endpoint", c.pricing.endpoint != "",
		"pricing_cache", c.pricing.redisURL != "",
	}
}

func redactURL(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		c.dbURL = "sqlite:///" + filepath.Join(dir, "compset.db")
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) { c.apiKeys = keys }
}

// WithEnforceOwnership toggles the per-property ownership check.
func WithEnforceOwnership(enforce bool) AppConfigOption {
	return func(c *AppConfig) { c.enforceOwnership = enforce }
}

// WithWorkerPollPeriod sets the queue polling period.
func WithWorkerPollPeriod(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.workerPollPeriod = d }
}

// WithAmenityDictionary sets the YAML dictionary path.
func WithAmenityDictionary(path string) AppConfigOption {
	return func(c *AppConfig) { c.amenityDictionary = path }
}

// WithGraphConfig sets the graph build defaults.
func WithGraphConfig(g GraphConfig) AppConfigOption {
	return func(c *AppConfig) { c.graph = g }
}

// WithSchedulerConfig sets the scheduler configuration.
func WithSchedulerConfig(s SchedulerConfig) AppConfigOption {
	return func(c *AppConfig) { c.scheduler = s }
}

// WithPricingConfig sets the pricing configuration.
func WithPricingConfig(p PricingConfig) AppConfigOption {
	return func(c *AppConfig) { c.pricing = p }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	cfg := NewAppConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Apply returns a copy of the config with opts applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ParseAPIKeys parses a comma-separated string of API keys.
func ParseAPIKeys(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
