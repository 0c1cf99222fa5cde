package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helixml/compset/domain/pricing"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	values  map[string]string
	readErr error
	ttls    map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCache) MGet(_ context.Context, keys ...string) *redis.SliceCmd {
	if f.readErr != nil {
		return redis.NewSliceResult(nil, f.readErr)
	}
	out := make([]any, len(keys))
	for i, k := range keys {
		if v, ok := f.values[k]; ok {
			out[i] = v
		}
	}
	return redis.NewSliceResult(out, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type countingSource struct {
	prices map[int64]float64
	err    error
	asked  [][]int64
}

func (c *countingSource) CompetitorPrices(_ context.Context, ids []int64, _ time.Time) (map[int64]float64, error) {
	c.asked = append(c.asked, append([]int64(nil), ids...))
	if c.err != nil {
		return nil, c.err
	}
	out := map[int64]float64{}
	for _, id := range ids {
		if p, ok := c.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

var _ pricing.Source = (*countingSource)(nil)

func TestCachedSource_ServesHitsAndFillsMisses(t *testing.T) {
	cache := newFakeCache()
	cache.values[cacheKey(1, day)] = "80"
	next := &countingSource{prices: map[int64]float64{2: 110.5}}
	src := newCachedSource(next, cache, time.Minute, nil)

	prices, err := src.CompetitorPrices(context.Background(), []int64{1, 2, 3}, day)
	require.NoError(t, err)

	assert.Equal(t, map[int64]float64{1: 80, 2: 110.5}, prices)
	assert.Equal(t, [][]int64{{2, 3}}, next.asked)
	assert.Equal(t, "110.5", cache.values[cacheKey(2, day)])
	assert.Equal(t, time.Minute, cache.ttls[cacheKey(2, day)])

	_, err = src.CompetitorPrices(context.Background(), []int64{1, 2}, day)
	require.NoError(t, err)
	assert.Len(t, next.asked, 1)
}

func TestCachedSource_CacheDownFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.readErr = errors.New("connection refused")
	next := &countingSource{prices: map[int64]float64{1: 90}}
	src := newCachedSource(next, cache, 0, nil)

	prices, err := src.CompetitorPrices(context.Background(), []int64{1}, day)
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{1: 90}, prices)
	assert.Equal(t, DefaultCacheTTL, cache.ttls[cacheKey(1, day)])
}

func TestCachedSource_SourceErrorWithPartialHits(t *testing.T) {
	cache := newFakeCache()
	cache.values[cacheKey(1, day)] = "80"
	next := &countingSource{err: errors.New("down")}
	src := newCachedSource(next, cache, time.Minute, nil)

	prices, err := src.CompetitorPrices(context.Background(), []int64{1, 2}, day)
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{1: 80}, prices)

	_, err = src.CompetitorPrices(context.Background(), []int64{2}, day)
	assert.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "compset:price:7:2026-10-14", cacheKey(7, day))
}
