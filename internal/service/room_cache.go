package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"telehealth-portal/internal/infrastructure/video"

	"github.com/redis/go-redis/v9"
)

const roomCacheKeyPrefix = "video:room:"

type redisRoomCache struct {
	redisClient *redis.Client
}

func NewRedisRoomCache(redisClient *redis.Client) RoomCache {
	return &redisRoomCache{redisClient: redisClient}
}

func roomCacheKey(provider, slug string) string {
	return fmt.Sprintf("%s%s:%s", roomCacheKeyPrefix, provider, slug)
}

func (c *redisRoomCache) Get(ctx context.Context, provider, slug string) (*video.Room, error) {
	raw, err := c.redisClient.Get(ctx, roomCacheKey(provider, slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var room video.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// SetIfAbsent uses SETNX so that of two concurrent writers the first one's
// room is kept and returned to both.
func (c *redisRoomCache) SetIfAbsent(ctx context.Context, room *video.Room, ttl time.Duration) (*video.Room, error) {
	raw, err := json.Marshal(room)
	if err != nil {
		return nil, err
	}

	key := roomCacheKey(room.Provider, room.Name)
	ok, err := c.redisClient.SetNX(ctx, key, raw, ttl).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		return room, nil
	}

	existing, err := c.Get(ctx, room.Provider, room.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return room, nil
	}
	return existing, nil
}
