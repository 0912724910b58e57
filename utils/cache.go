// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"courtside/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the Redis client used for availability caching.
var CacheClient *redis.Client

// InitCache initializes the Redis cache client (using REDIS_CACHE_DB).
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the cache client, connecting on first use.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}
