package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ItemCacheTTL is the time-to-live for cached items.
	ItemCacheTTL = time.Hour

	itemCacheKeyPrefix = "inventory:item"
)

// CachedItem is the read model for GET /api/items/{id}, stored as a Redis hash.
type CachedItem struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Quantity  int
	CreatedAt time.Time
}

// ItemCache provides structured read/write operations for item cache entries.
// Keys are scoped by tenant so one tenant can never read another's entry.
// Key format: "inventory:item:{tenantID}:{itemID}"
type ItemCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewItemCache creates a new ItemCache backed by the given RedisClient.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r.Client(), ttl: ItemCacheTTL}
}

// IsMiss reports whether err means the entry is absent.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Get retrieves a cached item by tenant + item ID.
// Returns redis.Nil when the key does not exist or has expired.
func (c *ItemCache) Get(ctx context.Context, tenantID, itemID uuid.UUID) (*CachedItem, error) {
	vals, err := c.client.HGetAll(ctx, c.key(tenantID, itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	tid, err := uuid.Parse(vals["tenant_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse tenant_id: %w", err)
	}
	if tid != tenantID {
		return nil, redis.Nil
	}
	qty, err := strconv.Atoi(vals["quantity"])
	if err != nil {
		return nil, fmt.Errorf("cache parse quantity: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}

	return &CachedItem{
		ID:        id,
		TenantID:  tid,
		Name:      vals["name"],
		Quantity:  qty,
		CreatedAt: createdAt,
	}, nil
}

// fillScript writes the entry only while the key's version still equals
// ARGV[1], so a fill that read the row before an invalidation is dropped.
var fillScript = redis.NewScript(`
local v = redis.call('GET', KEYS[2]) or '0'
if v ~= ARGV[1] then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'id', ARGV[2], 'tenant_id', ARGV[3], 'name', ARGV[4], 'quantity', ARGV[5], 'created_at', ARGV[6])
redis.call('PEXPIRE', KEYS[1], ARGV[7])
return 1
`)

// Version returns the invalidation counter of an item; 0 when it was never
// invalidated. Read it before loading the row that will be passed to Fill.
func (c *ItemCache) Version(ctx context.Context, tenantID, itemID uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(tenantID, itemID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache version: %w", err)
	}
	return v, nil
}

// Fill stores item if no invalidation happened since version was read.
// It reports whether the entry was written.
func (c *ItemCache) Fill(ctx context.Context, item *CachedItem, version int64) (bool, error) {
	n, err := fillScript.Run(ctx, c.client,
		[]string{c.key(item.TenantID, item.ID), c.versionKey(item.TenantID, item.ID)},
		strconv.FormatInt(version, 10),
		item.ID.String(),
		item.TenantID.String(),
		item.Name,
		strconv.Itoa(item.Quantity),
		item.CreatedAt.UTC().Format(time.RFC3339Nano),
		c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("cache fill: %w", err)
	}
	return n == 1, nil
}

// Invalidate drops the entry and bumps its version so fills that started
// earlier are discarded. The version outlives the entry TTL.
func (c *ItemCache) Invalidate(ctx context.Context, tenantID, itemID uuid.UUID) error {
	vkey := c.versionKey(tenantID, itemID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, c.key(tenantID, itemID))
	pipe.Incr(ctx, vkey)
	pipe.Expire(ctx, vkey, 2*c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func (c *ItemCache) key(tenantID, itemID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", itemCacheKeyPrefix, tenantID, itemID)
}

func (c *ItemCache) versionKey(tenantID, itemID uuid.UUID) string {
	return c.key(tenantID, itemID) + ":version"
}
