package price

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edibez/cryptodash/internal/logger"
	"github.com/redis/go-redis/v9"
)

const (
	coinKeyPrefix    = "cryptodash:coin:"    // coin id -> Coin JSON
	historyKeyPrefix = "cryptodash:history:" // coin id:days -> []PricePoint JSON
)

// Cache is a Redis read-through cache in front of a Source.
// Redis failures fall through to the source.
type Cache struct {
	src    Source
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewCache creates a cache over src
func NewCache(src Source, redisClient *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		src:    src,
		redis:  redisClient,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "price_cache"}),
	}
}

// Coin returns cached coin data, fetching from the source on a miss
func (c *Cache) Coin(ctx context.Context, id string) (*Coin, error) {
	key := coinKeyPrefix + id

	var coin Coin
	if c.load(ctx, key, &coin) {
		return &coin, nil
	}

	fresh, err := c.src.Coin(ctx, id)
	if err != nil || fresh == nil {
		return fresh, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

// PriceHistory returns a cached series, fetching from the source on a miss
func (c *Cache) PriceHistory(ctx context.Context, id string, days int) ([]PricePoint, error) {
	key := fmt.Sprintf("%s%s:%d", historyKeyPrefix, id, days)

	var points []PricePoint
	if c.load(ctx, key, &points) {
		return points, nil
	}

	fresh, err := c.src.PriceHistory(ctx, id, days)
	if err != nil {
		return nil, err
	}
	if len(fresh) > 0 {
		c.store(ctx, key, fresh)
	}
	return fresh, nil
}

// CoinWithHistory fetches current data and price history concurrently
func (c *Cache) CoinWithHistory(ctx context.Context, id string, days int) (*Coin, []PricePoint, error) {
	return fetchBoth(ctx, c, id, days)
}

// Invalidate drops cached coin data so the next read hits the source
func (c *Cache) Invalidate(ctx context.Context, id string) error {
	return c.redis.Del(ctx, coinKeyPrefix+id).Err()
}

func (c *Cache) load(ctx context.Context, key string, out interface{}) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("cache entry corrupt", map[string]interface{}{"key": key, "error": err.Error()})
		return false
	}
	return true
}

func (c *Cache) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
