// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"btc_dashboard/internal/feature/market/domain/entity"
	"btc_dashboard/internal/feature/market/usecase"
)

// CachingMarketRepository decorates a MarketRepository with Redis caching.
// It implements the decorator pattern, transparently adding time-boxed
// memoization without modifying the underlying repository. Entries expire
// purely by age; an explicit refresh bypasses the read path and overwrites
// the stored entry.
type CachingMarketRepository struct {
	inner     usecase.MarketRepository
	rdb       *redis.Client
	chartTTL  time.Duration
	statsTTL  time.Duration
	namespace string
}

// Compile-time check that the decorator still satisfies MarketRepository.
var _ usecase.MarketRepository = (*CachingMarketRepository)(nil)

// NewCachingMarketRepository decorates a MarketRepository with Redis caching.
// If chartTTL is 0 it defaults to 5 minutes, statsTTL to 1 hour. If namespace
// is empty it uses "market".
func NewCachingMarketRepository(rdb *redis.Client, chartTTL, statsTTL time.Duration, inner usecase.MarketRepository, namespace string) *CachingMarketRepository {
	if chartTTL <= 0 {
		chartTTL = 5 * time.Minute
	}
	if statsTTL <= 0 {
		statsTTL = time.Hour
	}
	if namespace == "" {
		namespace = "market"
	}
	return &CachingMarketRepository{
		inner:     inner,
		rdb:       rdb,
		chartTTL:  chartTTL,
		statsTTL:  statsTTL,
		namespace: namespace,
	}
}

// GetMarketChart retrieves the chart series, checking the cache first unless
// bypassCache is set, then falling back to the live repository.
func (c *CachingMarketRepository) GetMarketChart(ctx context.Context, days int, bypassCache bool) (entity.Series, error) {
	// Bypass cache entirely if Redis is not configured
	if c.rdb == nil {
		return c.inner.GetMarketChart(ctx, days, bypassCache)
	}

	key := c.chartKey(days)

	// 1) Check cache unless the caller forced a refresh
	if !bypassCache {
		if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var out entity.Series
			if err := json.Unmarshal(b, &out); err == nil {
				return out, nil
			}
			// Delete corrupted cache entry
			_ = c.rdb.Del(ctx, key).Err()
		}
	}

	// 2) Fall through to the live repository
	out, err := c.inner.GetMarketChart(ctx, days, bypassCache)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.chartTTL).Err()
	}

	return out, nil
}

// GetCoinStats retrieves the live snapshot with the same read-through policy
// as GetMarketChart, under its own TTL.
func (c *CachingMarketRepository) GetCoinStats(ctx context.Context, bypassCache bool) (entity.CoinStats, error) {
	if c.rdb == nil {
		return c.inner.GetCoinStats(ctx, bypassCache)
	}

	key := c.statsKey()

	if !bypassCache {
		if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var out entity.CoinStats
			if err := json.Unmarshal(b, &out); err == nil {
				return out, nil
			}
			_ = c.rdb.Del(ctx, key).Err()
		}
	}

	out, err := c.inner.GetCoinStats(ctx, bypassCache)
	if err != nil {
		return entity.CoinStats{}, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.statsTTL).Err()
	}

	return out, nil
}

// chartKey generates the cache key for a chart window.
func (c *CachingMarketRepository) chartKey(days int) string {
	return fmt.Sprintf("%s:chart:%d", c.namespace, days)
}

// statsKey generates the cache key for the live snapshot.
func (c *CachingMarketRepository) statsKey() string {
	return fmt.Sprintf("%s:stats", c.namespace)
}
