package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"time-tracker-backend/internal/metrics"
	"time-tracker-backend/internal/period"
)

const (
	cachePeriodDaily  = "daily"
	cachePeriodWeekly = "weekly"
)

// newRedisClient connects to Redis. The URL may be a full redis:// URL or a
// bare host:port.
func newRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{
			Addr: strings.TrimPrefix(redisURL, "redis://"),
		}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// totalsCache stores computed totals responses in Redis. A nil cache or a
// nil client turns every operation into a no-op, and Redis failures only
// degrade to a miss.
type totalsCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func newTotalsCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *totalsCache {
	return &totalsCache{client: client, ttl: ttl, log: log}
}

func dailyCacheKey(day period.Range) string {
	return "totals:daily:" + period.FormatDate(day.Start)
}

func weeklyCacheKey(week period.Range) string {
	return "totals:weekly:" + period.FormatDate(week.Start)
}

func (c *totalsCache) enabled() bool {
	return c != nil && c.client != nil
}

// get decodes the cached value at key into dst and reports whether it was found.
func (c *totalsCache) get(ctx context.Context, cachePeriod, key string, dst any) bool {
	if !c.enabled() {
		return false
	}

	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Redis get failed", "key", key, "error", err)
		}
		metrics.RecordCacheLookup(cachePeriod, false)
		return false
	}
	if err := json.Unmarshal([]byte(cached), dst); err != nil {
		c.log.Warn("Discarding undecodable cache entry", "key", key, "error", err)
		metrics.RecordCacheLookup(cachePeriod, false)
		return false
	}

	metrics.RecordCacheLookup(cachePeriod, true)
	return true
}

func (c *totalsCache) set(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("Failed to encode cache entry", "key", key, "error", err)
		return
	}
	if err := c.client.SetEx(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("Redis set failed", "key", key, "error", err)
	}
}

// invalidate drops the daily and weekly totals that include date.
func (c *totalsCache) invalidate(ctx context.Context, date time.Time) {
	if !c.enabled() {
		return
	}

	keys := []string{dailyCacheKey(period.DayOf(date)), weeklyCacheKey(period.WeekOf(date))}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("Redis invalidation failed", "keys", keys, "error", err)
	}
}
