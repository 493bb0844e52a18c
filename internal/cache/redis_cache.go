package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "fuelsales:session:"

type RedisSessionCache struct {
	client *redis.Client
	prefix string
}

func NewRedisSessionCache(addr string, password string, db int) *RedisSessionCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSessionCache{client: client, prefix: DefaultKeyPrefix}
}

// WithPrefix namespaces keys, mainly so tests can share a server.
func (c *RedisSessionCache) WithPrefix(prefix string) *RedisSessionCache {
	return &RedisSessionCache{client: c.client, prefix: prefix}
}

func (c *RedisSessionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}

func (c *RedisSessionCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisSessionCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.prefix + key
	}
	return c.client.Del(ctx, prefixed...).Err()
}
