package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	appnotification "github.com/labstock/backend/internal/application/notification"
)

type unreadEntry struct {
	count     int64
	expiresAt time.Time
}

// InMemoryUnreadCountCache caches per-user unread counters in process memory.
// Counters are not shared across instances; use the Redis cache for that.
type InMemoryUnreadCountCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]unreadEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryUnreadCountCache creates a new in-memory counter cache
func NewInMemoryUnreadCountCache(ttl time.Duration) *InMemoryUnreadCountCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &InMemoryUnreadCountCache{
		entries: make(map[uuid.UUID]unreadEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the time source, for tests
func (c *InMemoryUnreadCountCache) SetClock(now func() time.Time) {
	c.now = now
}

// Get returns the cached count and whether it was present and unexpired
func (c *InMemoryUnreadCountCache) Get(_ context.Context, userID uuid.UUID) (int64, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return 0, false, nil
	}
	return entry.count, true, nil
}

// Set stores the count for a user with the configured TTL
func (c *InMemoryUnreadCountCache) Set(_ context.Context, userID uuid.UUID, count int64) error {
	c.mu.Lock()
	c.entries[userID] = unreadEntry{count: count, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached count for a user
func (c *InMemoryUnreadCountCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
	return nil
}

// InvalidateAll drops every cached counter
func (c *InMemoryUnreadCountCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]unreadEntry)
	c.mu.Unlock()
	return nil
}

var _ appnotification.UnreadCountCache = (*InMemoryUnreadCountCache)(nil)
