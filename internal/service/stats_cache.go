package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	statsCacheKeyPrefix = "stats:user:"
	StatsCacheTTL       = 5 * time.Minute
)

// StatsCache holds per-user analysis statistics between writes.
type StatsCache interface {
	// Get decodes the cached value into dest and reports whether one existed.
	Get(ctx context.Context, userID uuid.UUID, dest interface{}) (bool, error)
	Set(ctx context.Context, userID uuid.UUID, value interface{}) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type redisStatsCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRedisStatsCache(redisClient *redis.Client) StatsCache {
	return &redisStatsCache{redisClient: redisClient, ttl: StatsCacheTTL}
}

func statsCacheKey(userID uuid.UUID) string {
	return statsCacheKeyPrefix + userID.String()
}

func (c *redisStatsCache) Get(ctx context.Context, userID uuid.UUID, dest interface{}) (bool, error) {
	raw, err := c.redisClient.Get(ctx, statsCacheKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisStatsCache) Set(ctx context.Context, userID uuid.UUID, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.redisClient.Set(ctx, statsCacheKey(userID), raw, c.ttl).Err()
}

func (c *redisStatsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.redisClient.Del(ctx, statsCacheKey(userID)).Err()
}
