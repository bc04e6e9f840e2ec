package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"invoicer/internal/config"
	"invoicer/internal/port"
)

const keyPrefix = "invoicer:url:"

type urlCache struct {
	client *redis.Client
}

// NewURLCache creates a Redis-backed URLCache. A failed ping is logged and
// not fatal; cache errors degrade to misses at the call site.
func NewURLCache(ctx context.Context, cfg *config.RedisConfig) port.URLCache {
	addr := strings.TrimPrefix(strings.TrimPrefix(cfg.Addr, "redis://"), "rediss://")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis ping failed")
	}
	return NewURLCacheFromClient(client)
}

// NewURLCacheFromClient wraps an existing client.
func NewURLCacheFromClient(client *redis.Client) port.URLCache {
	return &urlCache{client: client}
}

func (c *urlCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (c *urlCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *urlCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
