package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/helixml/compset/domain/calendar"
	"github.com/helixml/compset/domain/pricing"
	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a cached competitor price is served.
const DefaultCacheTTL = 15 * time.Minute

const cacheKeyPrefix = "compset:price"

// cacheClient is the subset of redis.Cmdable the cache uses.
type cacheClient interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedSource serves competitor prices from Redis and asks the wrapped
// source only for misses. Redis failures fall through to the wrapped source.
type CachedSource struct {
	next   pricing.Source
	client cacheClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ pricing.Source = CachedSource{}

// NewCachedSource wraps next with a Redis cache.
func NewCachedSource(next pricing.Source, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) CachedSource {
	return newCachedSource(next, client, ttl, logger)
}

func newCachedSource(next pricing.Source, client cacheClient, ttl time.Duration, logger *slog.Logger) CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return CachedSource{next: next, client: client, ttl: ttl, logger: logger}
}

// NewRedisClient connects to the Redis server at url (redis://host:port/db)
// and verifies it answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func cacheKey(hotelID int64, date time.Time) string {
	return fmt.Sprintf("%s:%d:%s", cacheKeyPrefix, hotelID, calendar.Format(date))
}

// CompetitorPrices implements pricing.Source.
func (c CachedSource) CompetitorPrices(ctx context.Context, hotelIDs []int64, date time.Time) (map[int64]float64, error) {
	prices := make(map[int64]float64, len(hotelIDs))
	if len(hotelIDs) == 0 {
		return prices, nil
	}

	keys := make([]string, len(hotelIDs))
	for i, id := range hotelIDs {
		keys[i] = cacheKey(id, date)
	}

	misses := hotelIDs
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("price cache read failed", slog.String("error", err.Error()))
	} else {
		misses = misses[:0:0]
		for i, v := range values {
			if price, ok := parseCached(v); ok {
				prices[hotelIDs[i]] = price
				continue
			}
			misses = append(misses, hotelIDs[i])
		}
	}
	if len(misses) == 0 {
		return prices, nil
	}

	fetched, err := c.next.CompetitorPrices(ctx, misses, date)
	if err != nil {
		if len(prices) > 0 {
			c.logger.Warn("price source failed, serving cached prices only", slog.String("error", err.Error()))
			return prices, nil
		}
		return nil, err
	}
	for id, price := range fetched {
		prices[id] = price
		if err := c.client.Set(ctx, cacheKey(id, date), strconv.FormatFloat(price, 'f', -1, 64), c.ttl).Err(); err != nil {
			c.logger.Warn("price cache write failed", slog.Int64("hotel_id", id), slog.String("error", err.Error()))
		}
	}
	return prices, nil
}

func parseCached(v any) (float64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	price, err := strconv.ParseFloat(s, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
