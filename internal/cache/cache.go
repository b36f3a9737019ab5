package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/oceanharvest/storefront-api/internal/models"
)

// ProductCache is a read-through cache in front of the catalogue. The
// catalogue is read-mostly and shared across every customer, so cached
// lookups by pcode take most of the read load off the database.
//
// A nil *ProductCache is valid and disables caching, so callers never
// need to branch on whether Redis is configured.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to Redis at addr. Returns nil (cache disabled) when
// addr is empty or the server is unreachable.
func New(addr string, ttl time.Duration) *ProductCache {
	if addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis unreachable, catalogue cache disabled")
		return nil
	}

	log.Info().Str("addr", addr).Msg("catalogue cache enabled")
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func key(pcode string) string {
	return "product:" + pcode
}

// Get returns the cached product for pcode, or ok=false on miss.
// Cache errors are treated as misses.
func (c *ProductCache) Get(ctx context.Context, pcode string) (*models.Product, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key(pcode)).Bytes()
	if err != nil {
		return nil, false
	}
	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Set stores the product under its pcode. Failures are logged, never
// surfaced; the cache is best-effort.
func (c *ProductCache) Set(ctx context.Context, p *models.Product) {
	if c == nil || p == nil {
		return
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(p.Pcode), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("pcode", p.Pcode).Msg("failed to cache product")
	}
}

// Invalidate drops the cached entry for pcode after a catalogue write.
func (c *ProductCache) Invalidate(ctx context.Context, pcode string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, key(pcode)).Err(); err != nil {
		log.Warn().Err(err).Str("pcode", pcode).Msg("failed to invalidate cached product")
	}
}

// Close releases the Redis connection.
func (c *ProductCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
