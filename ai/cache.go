package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tasktrack/domain"
)

type enhancer interface {
	Enhance(ctx context.Context, title, description string) (domain.Suggestion, error)
	Insights(ctx context.Context) (domain.ProductivityInsights, error)
}

// Cache wraps an enhancement client with Redis-backed caching so
// repeated enhancement of the same draft text skips the remote tiers.
// A nil Redis client disables caching entirely.
type Cache struct {
	base  enhancer
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client
// and TTL.
func NewCache(base enhancer, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("ai.NewCache: base enhancer is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

// Enhance serves cached suggestions when the same draft text was
// enhanced recently. Validation failures never touch the cache.
func (c *Cache) Enhance(ctx context.Context, title, description string) (domain.Suggestion, error) {
	if strings.TrimSpace(title) == "" {
		return c.base.Enhance(ctx, title, description)
	}

	key := enhanceCacheKey(title, description)
	if s, ok := c.loadSuggestion(ctx, key); ok {
		return s, nil
	}

	s, err := c.base.Enhance(ctx, title, description)
	if err != nil {
		return domain.Suggestion{}, err
	}
	c.storeSuggestion(ctx, key, s)
	return s, nil
}

// Insights caches the dashboard aggregate under a single key.
func (c *Cache) Insights(ctx context.Context) (domain.ProductivityInsights, error) {
	if ins, ok := c.loadInsights(ctx); ok {
		return ins, nil
	}

	ins, err := c.base.Insights(ctx)
	if err != nil {
		return domain.ProductivityInsights{}, err
	}
	c.storeInsights(ctx, ins)
	return ins, nil
}

func (c *Cache) loadSuggestion(ctx context.Context, key string) (domain.Suggestion, bool) {
	if c.redis == nil {
		return domain.Suggestion{}, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the tiers without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return domain.Suggestion{}, false
	}
	var s domain.Suggestion
	if err := json.Unmarshal(data, &s); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return domain.Suggestion{}, false
	}
	return s, true
}

func (c *Cache) storeSuggestion(ctx context.Context, key string, s domain.Suggestion) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) loadInsights(ctx context.Context) (domain.ProductivityInsights, bool) {
	if c.redis == nil {
		return domain.ProductivityInsights{}, false
	}
	data, err := c.redis.Get(ctx, insightsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			_ = c.redis.Del(ctx, insightsCacheKey).Err()
		}
		return domain.ProductivityInsights{}, false
	}
	var ins domain.ProductivityInsights
	if err := json.Unmarshal(data, &ins); err != nil {
		_ = c.redis.Del(ctx, insightsCacheKey).Err()
		return domain.ProductivityInsights{}, false
	}
	return ins, true
}

func (c *Cache) storeInsights(ctx context.Context, ins domain.ProductivityInsights) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(ins)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, insightsCacheKey, data, c.ttl).Err()
}

const insightsCacheKey = "ai:insights"

func enhanceCacheKey(title, description string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(title) + "\n" + strings.TrimSpace(description)))
	return "ai:enhance:" + hex.EncodeToString(sum[:])
}
