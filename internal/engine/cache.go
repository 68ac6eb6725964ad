package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long a translation stays cached.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Cache stores finished translations in Redis so a re-run after a failed
// upload does not pay for the LLM call again. A nil *Cache is a valid no-op.
type Cache struct {
	rdb     *redis.Client
	ttl     time.Duration
	metrics *Metrics
}

// NewCache connects to redisURL. An empty URL, a bad URL or an unreachable
// server all yield a nil cache (disabled) with a warning.
func NewCache(ctx context.Context, redisURL string, ttl time.Duration, m *Metrics) *Cache {
	if redisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("cache: invalid redis URL, cache disabled", slog.Any("error", err))
		return nil
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("cache: redis unreachable, cache disabled", slog.Any("error", err))
		rdb.Close()
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if m == nil {
		m = &Metrics{}
	}
	slog.Info("cache: redis connected", slog.String("addr", opts.Addr), slog.Duration("ttl", ttl))
	return &Cache{rdb: rdb, ttl: ttl, metrics: m}
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("yt2n:%x", hash[:12])
}

// GetTranslation returns a cached translation, if any.
func (c *Cache) GetTranslation(ctx context.Context, model, videoID string) (string, bool) {
	if c == nil {
		return "", false
	}
	key := CacheKey("translation", model, videoID)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Debug("cache: get failed", slog.Any("error", err))
		}
		c.metrics.CacheMisses.Add(1)
		return "", false
	}
	if val == "" {
		c.metrics.CacheMisses.Add(1)
		return "", false
	}
	c.metrics.CacheHits.Add(1)
	return val, true
}

// SetTranslation caches a non-empty translation.
func (c *Cache) SetTranslation(ctx context.Context, model, videoID, text string) {
	if c == nil || text == "" {
		return
	}
	key := CacheKey("translation", model, videoID)
	if err := c.rdb.Set(ctx, key, text, c.ttl).Err(); err != nil {
		slog.Debug("cache: set failed", slog.Any("error", err))
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
