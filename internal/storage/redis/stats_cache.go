package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/report"
)

const statsCacheKey = "license-admin:system-statistics"

// StatsCache keeps the system statistics snapshot for a short TTL so
// dashboard refreshes don't hammer the aggregation view. Cache misses and
// failures just fall through to the database.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewStatsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("StatsCache"),
	}
}

func (c *StatsCache) Get(ctx context.Context) (*report.SystemStatistics, bool) {
	payload, err := c.client.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Statistics cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var stats report.SystemStatistics
	if err := json.Unmarshal(payload, &stats); err != nil {
		c.logger.Warn("Statistics cache payload corrupt, ignoring", zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, stats *report.SystemStatistics) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsCacheKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Statistics cache write failed", zap.Error(err))
	}
}
