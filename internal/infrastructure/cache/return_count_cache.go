package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	tradeapp "github.com/erp/returns/internal/application/trade"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const returnCountPrefix = "returns:portal:count:"

func returnCountKey(tenantID, partnerID uuid.UUID) string {
	return returnCountPrefix + tenantID.String() + ":" + partnerID.String()
}

// RedisReturnCountCache caches each partner's portal return count in Redis
type RedisReturnCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReturnCountCache creates a cache whose entries live for ttl
func NewRedisReturnCountCache(client *redis.Client, ttl time.Duration) *RedisReturnCountCache {
	return &RedisReturnCountCache{client: client, ttl: ttl}
}

// Get returns the cached count; the bool is false on a miss
func (c *RedisReturnCountCache) Get(ctx context.Context, tenantID, partnerID uuid.UUID) (int64, bool, error) {
	raw, err := c.client.Get(ctx, returnCountKey(tenantID, partnerID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read return count: %w", err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt return count %q: %w", raw, err)
	}
	return n, true, nil
}

// Set stores count with the configured TTL
func (c *RedisReturnCountCache) Set(ctx context.Context, tenantID, partnerID uuid.UUID, count int64) error {
	if err := c.client.Set(ctx, returnCountKey(tenantID, partnerID), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache return count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count
func (c *RedisReturnCountCache) Invalidate(ctx context.Context, tenantID, partnerID uuid.UUID) error {
	if err := c.client.Del(ctx, returnCountKey(tenantID, partnerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate return count: %w", err)
	}
	return nil
}

type countEntry struct {
	value     int64
	expiresAt time.Time
}

// InMemoryReturnCountCache is the single-instance counterpart of RedisReturnCountCache
type InMemoryReturnCountCache struct {
	mu      sync.RWMutex
	entries map[string]countEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryReturnCountCache creates an empty cache whose entries live for ttl
func NewInMemoryReturnCountCache(ttl time.Duration) *InMemoryReturnCountCache {
	return &InMemoryReturnCountCache{
		entries: make(map[string]countEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached count; the bool is false on a miss or expiry
func (c *InMemoryReturnCountCache) Get(ctx context.Context, tenantID, partnerID uuid.UUID) (int64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[returnCountKey(tenantID, partnerID)]
	if !ok || !c.now().Before(e.expiresAt) {
		return 0, false, nil
	}
	return e.value, true, nil
}

// Set stores count with the configured TTL
func (c *InMemoryReturnCountCache) Set(ctx context.Context, tenantID, partnerID uuid.UUID, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[returnCountKey(tenantID, partnerID)] = countEntry{value: count, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Invalidate drops the cached count
func (c *InMemoryReturnCountCache) Invalidate(ctx context.Context, tenantID, partnerID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, returnCountKey(tenantID, partnerID))
	return nil
}

var (
	_ tradeapp.ReturnCountCache = (*RedisReturnCountCache)(nil)
	_ tradeapp.ReturnCountCache = (*InMemoryReturnCountCache)(nil)
)
