package cache

import (
	appnotification "github.com/labstock/backend/internal/application/notification"
	"github.com/labstock/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewUnreadCountCache creates the unread counter cache from configuration.
// With Redis enabled it tries Redis first and falls back to the in-process
// cache when the connection fails; a disabled Redis goes straight in-memory.
func NewUnreadCountCache(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, logger *zap.Logger) appnotification.UnreadCountCache {
	if redisCfg.Enabled {
		redisCache, err := NewRedisUnreadCountCache(redisCfg, cacheCfg.UnreadCountTTL)
		if err == nil {
			logger.Info("using Redis unread counter cache")
			return redisCache
		}
		logger.Warn("Redis unavailable, falling back to in-memory unread counter cache",
			zap.Error(err),
		)
	}
	return NewInMemoryUnreadCountCache(cacheCfg.UnreadCountTTL)
}
