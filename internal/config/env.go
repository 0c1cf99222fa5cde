package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use an underscore delimiter (e.g. GRAPH_MAX_DISTANCE_KM).
type EnvConfig struct {
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir defaults to ~/.compset.
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL defaults to sqlite:///{data_dir}/compset.db.
	DBURL string `envconfig:"DB_URL"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of keys allowed to call mutating routes.
	APIKeys string `envconfig:"API_KEYS"`

	EnforceOwnership bool `envconfig:"ENFORCE_OWNERSHIP" default:"true"`

	// WorkerPollPeriodSeconds is how often the worker checks the queue.
	WorkerPollPeriodSeconds float64 `envconfig:"WORKER_POLL_PERIOD" default:"1"`

	// AmenityDictionary is an optional YAML file replacing the built-in dictionary.
	AmenityDictionary string `envconfig:"AMENITY_DICTIONARY"`

	Graph     GraphEnv     `envconfig:"GRAPH"`
	Scheduler SchedulerEnv `envconfig:"SCHEDULER"`
	Pricing   PricingEnv   `envconfig:"PRICING"`

	// RedisURL enables the pricing cache, e.g. redis://localhost:6379/0.
	RedisURL string `envconfig:"REDIS_URL"`
}

// GraphEnv holds graph build defaults.
type GraphEnv struct {
	MaxDistanceKm  float64 `envconfig:"MAX_DISTANCE_KM" default:"10"`
	MaxCompetitors int     `envconfig:"MAX_COMPETITORS" default:"50"`
	WeightGeo      float64 `envconfig:"WEIGHT_GEO" default:"0.4"`
	WeightAmenity  float64 `envconfig:"WEIGHT_AMENITY" default:"0.3"`
	WeightReview   float64 `envconfig:"WEIGHT_REVIEW" default:"0.3"`
}

// SchedulerEnv holds batch job scheduling. Durations are in seconds.
type SchedulerEnv struct {
	Enabled            bool    `envconfig:"ENABLED" default:"true"`
	IntervalSeconds    float64 `envconfig:"INTERVAL" default:"86400"`
	GraphBatchSize     int     `envconfig:"GRAPH_BATCH_SIZE" default:"100"`
	RetryAttempts      int     `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryInitialDelay  float64 `envconfig:"RETRY_INITIAL_DELAY" default:"2"`
	RetryBackoffFactor float64 `envconfig:"RETRY_BACKOFF_FACTOR" default:"2"`
	JobTimeoutSeconds  float64 `envconfig:"JOB_TIMEOUT" default:"1800"`
}

// PricingEnv holds the pricing-context source settings.
type PricingEnv struct {
	Endpoint        string  `envconfig:"ENDPOINT"`
	TimeoutSeconds  float64 `envconfig:"TIMEOUT" default:"2"`
	CacheTTLSeconds float64 `envconfig:"CACHE_TTL" default:"900"`
	MaxConcurrency  int     `envconfig:"MAX_CONCURRENCY" default:"8"`
}

// LoadFromEnv loads configuration from environment variables without a prefix.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix("")
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "COMPSET" would require COMPSET_DB_URL instead of DB_URL.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	opts := []AppConfigOption{
		WithLogFormat(parseLogFormat(e.LogFormat)),
		WithEnforceOwnership(e.EnforceOwnership),
		WithGraphConfig(e.Graph.ToGraphConfig()),
		WithSchedulerConfig(e.Scheduler.ToSchedulerConfig()),
		WithPricingConfig(e.Pricing.ToPricingConfig(e.RedisURL)),
	}
	if e.Host != "" {
		opts = append(opts, WithHost(e.Host))
	}
	if e.Port != 0 {
		opts = append(opts, WithPort(e.Port))
	}
	if e.DataDir != "" {
		opts = append(opts, WithDataDir(e.DataDir))
	}
	// DB_URL wins over the DATA_DIR derived default.
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		opts = append(opts, WithLogLevel(e.LogLevel))
	}
	if e.APIKeys != "" {
		opts = append(opts, WithAPIKeys(ParseAPIKeys(e.APIKeys)))
	}
	if e.WorkerPollPeriodSeconds > 0 {
		opts = append(opts, WithWorkerPollPeriod(seconds(e.WorkerPollPeriodSeconds)))
	}
	if e.AmenityDictionary != "" {
		opts = append(opts, WithAmenityDictionary(e.AmenityDictionary))
	}
	return NewAppConfigWithOptions(opts...)
}

// ToGraphConfig converts GraphEnv to GraphConfig.
func (g GraphEnv) ToGraphConfig() GraphConfig {
	return NewGraphConfig().
		WithMaxDistanceKm(g.MaxDistanceKm).
		WithMaxCompetitors(g.MaxCompetitors).
		WithWeights(g.WeightGeo, g.WeightAmenity, g.WeightReview)
}

// ToSchedulerConfig converts SchedulerEnv to SchedulerConfig.
func (s SchedulerEnv) ToSchedulerConfig() SchedulerConfig {
	return NewSchedulerConfig().
		WithEnabled(s.Enabled).
		WithInterval(seconds(s.IntervalSeconds)).
		WithGraphBatchSize(s.GraphBatchSize).
		WithRetry(s.RetryAttempts, seconds(s.RetryInitialDelay), s.RetryBackoffFactor).
		WithJobTimeout(seconds(s.JobTimeoutSeconds))
}

// ToPricingConfig converts PricingEnv to PricingConfig.
func (p PricingEnv) ToPricingConfig(redisURL string) PricingConfig {
	cfg := NewPricingConfig().
		WithTimeout(seconds(p.TimeoutSeconds)).
		WithCache(redisURL, seconds(p.CacheTTLSeconds))
	if p.MaxConcurrency > 0 {
		cfg = cfg.WithMaxConcurrency(p.MaxConcurrency)
	}
	if p.Endpoint != "" {
		cfg = cfg.WithEndpoint(p.Endpoint)
	}
	return cfg
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	case "text":
		return LogFormatText
	default:
		return LogFormatPretty
	}
}
