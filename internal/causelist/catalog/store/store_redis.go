package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"causelist/internal/causelist/models"
	"causelist/pkg/platform/sentinel"
)

const redisKeyPrefix = "causelist:options:"

// RedisCache shares option lists between server replicas. Values are msgpack
// encoded and expire after the configured TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Find(ctx context.Context, level models.Level, path []string) (models.OptionList, error) {
	data, err := c.client.Get(ctx, redisKeyPrefix+Key(level, path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.OptionList{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.OptionList{}, fmt.Errorf("redis get options: %w", err)
	}
	var list models.OptionList
	if err := msgpack.Unmarshal(data, &list); err != nil {
		return models.OptionList{}, fmt.Errorf("decode cached options: %w", err)
	}
	if list.Level != level {
		return models.OptionList{}, sentinel.ErrNotFound
	}
	return list, nil
}

func (c *RedisCache) Save(ctx context.Context, path []string, list models.OptionList) error {
	data, err := msgpack.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+Key(list.Level, path), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set options: %w", err)
	}
	return nil
}
