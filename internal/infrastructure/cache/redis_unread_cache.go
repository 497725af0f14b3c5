package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	appnotification "github.com/labstock/backend/internal/application/notification"
	"github.com/labstock/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const unreadKeyPrefix = "notification:unread:"

// RedisUnreadCountCache caches per-user unread counters in Redis.
// Suitable for deployments with multiple instances sharing one counter state.
type RedisUnreadCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUnreadCountCache connects to Redis and returns a counter cache
func NewRedisUnreadCountCache(cfg config.RedisConfig, ttl time.Duration) (*RedisUnreadCountCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisUnreadCountCacheWithClient(client, ttl), nil
}

// NewRedisUnreadCountCacheWithClient wraps an existing Redis client
func NewRedisUnreadCountCacheWithClient(client *redis.Client, ttl time.Duration) *RedisUnreadCountCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisUnreadCountCache{client: client, ttl: ttl}
}

// Get returns the cached count and whether it was present
func (c *RedisUnreadCountCache) Get(ctx context.Context, userID uuid.UUID) (int64, bool, error) {
	value, err := c.client.Get(ctx, unreadKeyPrefix+userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read unread counter: %w", err)
	}

	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt unread counter value %q: %w", value, err)
	}
	return count, true, nil
}

// Set stores the count for a user with the configured TTL
func (c *RedisUnreadCountCache) Set(ctx context.Context, userID uuid.UUID, count int64) error {
	return c.client.Set(ctx, unreadKeyPrefix+userID.String(), count, c.ttl).Err()
}

// Invalidate drops the cached count for a user
func (c *RedisUnreadCountCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, unreadKeyPrefix+userID.String()).Err()
}

// InvalidateAll drops every cached counter. Role-based targeting means any
// user's counter may be stale after a broadcast, so this scans the prefix.
func (c *RedisUnreadCountCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, unreadKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the Redis client
func (c *RedisUnreadCountCache) Close() error {
	return c.client.Close()
}

var _ appnotification.UnreadCountCache = (*RedisUnreadCountCache)(nil)
