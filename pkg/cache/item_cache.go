package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ItemCacheTTL bounds how long an entry lives. Item metadata is immutable,
	// so the TTL only limits memory use.
	ItemCacheTTL = 24 * time.Hour

	itemCacheKeyPrefix = "item"
)

// ErrCacheMiss is returned by ItemCache.Get when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// CachedItem is the item metadata stored as a Redis hash. Quantities are never
// cached; they are always derived from the transaction history.
type CachedItem struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

// ItemCache reads and writes item metadata. Key format: "item:{uuid}".
type ItemCache struct {
	client redis.Cmdable
}

// NewItemCache returns an ItemCache backed by r.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r.Client()}
}

// Get returns ErrCacheMiss when the key does not exist or has expired.
func (c *ItemCache) Get(ctx context.Context, id uuid.UUID) (*CachedItem, error) {
	vals, err := c.client.HGetAll(ctx, ItemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, ErrCacheMiss
	}
	return decodeItem(vals)
}

// Set writes item as a hash and sets the TTL in one pipeline.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	key := ItemKey(item.ID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, encodeItem(item))
	pipe.Expire(ctx, key, ItemCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// ItemKey builds the Redis key for an item.
func ItemKey(id uuid.UUID) string {
	return itemCacheKeyPrefix + ":" + id.String()
}

func encodeItem(item *CachedItem) map[string]any {
	return map[string]any{
		"id":          item.ID.String(),
		"name":        item.Name,
		"description": item.Description,
		"created_at":  item.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decodeItem(vals map[string]string) (*CachedItem, error) {
	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	return &CachedItem{
		ID:          id,
		Name:        vals["name"],
		Description: vals["description"],
		CreatedAt:   createdAt,
	}, nil
}
