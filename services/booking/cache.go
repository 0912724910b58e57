package booking

import (
	"context"
	"encoding/json"
	"time"

	"courtside/models"
	"courtside/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AvailabilityCache stores rendered availability responses for a short time.
// Cache failures are logged and never fail a request.
type AvailabilityCache interface {
	Get(ctx context.Context, courtID, date string) (*models.AvailabilityResponse, bool)
	Set(ctx context.Context, resp *models.AvailabilityResponse)
	Invalidate(ctx context.Context, courtID, date string)
	InvalidateCourt(ctx context.Context, courtID string)
}

type redisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisAvailabilityCache returns a cache backed by client.
func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) AvailabilityCache {
	return &redisAvailabilityCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(courtID, date string) string {
	return utils.AvailabilityCachePrefix + courtID + ":" + date
}

func (c *redisAvailabilityCache) Get(ctx context.Context, courtID, date string) (*models.AvailabilityResponse, bool) {
	raw, err := c.client.Get(ctx, cacheKey(courtID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Availability cache read failed", zap.String("courtID", courtID), zap.Error(err))
		}
		return nil, false
	}
	var resp models.AvailabilityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Warn("Discarding corrupt availability cache entry", zap.String("courtID", courtID), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (c *redisAvailabilityCache) Set(ctx context.Context, resp *models.AvailabilityResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("Failed to encode availability for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, cacheKey(resp.CourtID, resp.Date), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Availability cache write failed", zap.String("courtID", resp.CourtID), zap.Error(err))
	}
}

func (c *redisAvailabilityCache) Invalidate(ctx context.Context, courtID, date string) {
	if err := c.client.Del(ctx, cacheKey(courtID, date)).Err(); err != nil {
		c.logger.Warn("Availability cache invalidation failed", zap.String("courtID", courtID), zap.Error(err))
	}
}

func (c *redisAvailabilityCache) InvalidateCourt(ctx context.Context, courtID string) {
	iter := c.client.Scan(ctx, 0, cacheKey(courtID, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Availability cache scan failed", zap.String("courtID", courtID), zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Availability cache invalidation failed", zap.String("courtID", courtID), zap.Error(err))
	}
}

type noopCache struct{}

// NoopCache disables availability caching.
func NoopCache() AvailabilityCache { return noopCache{} }

func (noopCache) Get(context.Context, string, string) (*models.AvailabilityResponse, bool) {
	return nil, false
}
func (noopCache) Set(context.Context, *models.AvailabilityResponse) {}
func (noopCache) Invalidate(context.Context, string, string)        {}
func (noopCache) InvalidateCourt(context.Context, string)           {}
