package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HOST", "PORT", "DATA_DIR", "DB_URL", "LOG_LEVEL", "LOG_FORMAT", "API_KEYS",
	"ENFORCE_OWNERSHIP", "WORKER_POLL_PERIOD", "AMENITY_DICTIONARY", "REDIS_URL",
	"GRAPH_MAX_DISTANCE_KM", "GRAPH_MAX_COMPETITORS", "GRAPH_WEIGHT_GEO",
	"GRAPH_WEIGHT_AMENITY", "GRAPH_WEIGHT_REVIEW",
	"SCHEDULER_ENABLED", "SCHEDULER_INTERVAL", "SCHEDULER_GRAPH_BATCH_SIZE",
	"SCHEDULER_RETRY_ATTEMPTS", "SCHEDULER_RETRY_INITIAL_DELAY",
	"SCHEDULER_RETRY_BACKOFF_FACTOR", "SCHEDULER_JOB_TIMEOUT",
	"PRICING_ENDPOINT", "PRICING_TIMEOUT", "PRICING_CACHE_TTL", "PRICING_MAX_CONCURRENCY",
}

// clearEnvVars unsets every variable read by EnvConfig for the duration of the test.
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		if prev, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { _ = os.Setenv(key, prev) })
		}
	}
}

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() { _ = os.Unsetenv(key) })
}

func TestLoadFromEnv_DefaultsMatchConstants(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	app := cfg.ToAppConfig()
	assert.Equal(t, DefaultHost, app.Host())
	assert.Equal(t, DefaultPort, app.Port())
	assert.Equal(t, DefaultLogLevel, app.LogLevel())
	assert.Equal(t, LogFormatPretty, app.LogFormat())
	assert.True(t, app.EnforceOwnership())
	assert.Empty(t, app.APIKeys())
	assert.Equal(t, DefaultWorkerPollPeriod, app.WorkerPollPeriod())

	assert.Equal(t, DefaultMaxDistanceKm, app.Graph().MaxDistanceKm())
	assert.Equal(t, DefaultMaxCompetitors, app.Graph().MaxCompetitors())
	geo, amenity, review := app.Graph().Weights()
	assert.Equal(t, DefaultWeightGeo, geo)
	assert.Equal(t, DefaultWeightAmenity, amenity)
	assert.Equal(t, DefaultWeightReview, review)

	s := app.Scheduler()
	assert.True(t, s.Enabled())
	assert.Equal(t, DefaultSchedulerInterval, s.Interval())
	assert.Equal(t, DefaultGraphBatchSize, s.GraphBatchSize())
	assert.Equal(t, DefaultRetryAttempts, s.RetryAttempts())
	assert.Equal(t, DefaultRetryInitialDelay, s.RetryInitialDelay())
	assert.Equal(t, DefaultRetryBackoffFactor, s.RetryBackoffFactor())
	assert.Equal(t, DefaultJobTimeout, s.JobTimeout())

	p := app.Pricing()
	assert.Equal(t, DefaultPricingTimeout, p.Timeout())
	assert.Equal(t, DefaultPricingCacheTTL, p.CacheTTL())
	assert.Equal(t, DefaultPricingMaxConcurrency, p.MaxConcurrency())
	assert.Empty(t, p.Endpoint())
	assert.Empty(t, p.RedisURL())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnvVars(t)
	setEnv(t, "PORT", "9090")
	setEnv(t, "DB_URL", "postgres://u:p@db:5432/compset")
	setEnv(t, "LOG_FORMAT", "json")
	setEnv(t, "API_KEYS", "a, b,,c")
	setEnv(t, "ENFORCE_OWNERSHIP", "false")
	setEnv(t, "GRAPH_MAX_DISTANCE_KM", "5")
	setEnv(t, "GRAPH_WEIGHT_GEO", "0.5")
	setEnv(t, "GRAPH_WEIGHT_AMENITY", "0.25")
	setEnv(t, "GRAPH_WEIGHT_REVIEW", "0.25")
	setEnv(t, "SCHEDULER_INTERVAL", "60")
	setEnv(t, "SCHEDULER_ENABLED", "false")
	setEnv(t, "PRICING_ENDPOINT", "http://pricing.local")
	setEnv(t, "PRICING_TIMEOUT", "0.5")
	setEnv(t, "REDIS_URL", "redis://localhost:6379/0")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	app := cfg.ToAppConfig()

	assert.Equal(t, 9090, app.Port())
	assert.Equal(t, "postgres://u:p@db:5432/compset", app.DBURL())
	assert.Equal(t, LogFormatJSON, app.LogFormat())
	assert.Equal(t, []string{"a", "b", "c"}, app.APIKeys())
	assert.False(t, app.EnforceOwnership())
	assert.Equal(t, 5.0, app.Graph().MaxDistanceKm())
	geo, _, _ := app.Graph().Weights()
	assert.Equal(t, 0.5, geo)
	assert.Equal(t, time.Minute, app.Scheduler().Interval())
	assert.False(t, app.Scheduler().Enabled())
	assert.Equal(t, "http://pricing.local", app.Pricing().Endpoint())
	assert.Equal(t, 500*time.Millisecond, app.Pricing().Timeout())
	assert.Equal(t, "redis://localhost:6379/0", app.Pricing().RedisURL())
}

func TestLoadFromEnv_DataDirDerivesDBURL(t *testing.T) {
	clearEnvVars(t)
	dir := t.TempDir()
	setEnv(t, "DATA_DIR", dir)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite:///"+filepath.Join(dir, "compset.db"), cfg.ToAppConfig().DBURL())
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	clearEnvVars(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7070\nLOG_LEVEL=DEBUG\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("PORT")
		_ = os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
