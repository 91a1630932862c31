package cache

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through JSON cache over Redis. When REDIS_URL is unset or
// Redis is unreachable every operation degrades to a no-op, so callers never
// need to branch on availability.
type Cache struct {
	client *redis.Client
}

func New() *Cache {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		log.Println("REDIS_URL not set, caching disabled")
		return &Cache{}
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("Invalid REDIS_URL, caching disabled: %v", err)
		return &Cache{}
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, caching disabled: %v", err)
		return &Cache{}
	}

	log.Println("Redis cache connected")
	return &Cache{client: client}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON loads key into dest, reporting whether a cached value was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Cache get %s failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("Cache decode %s failed: %v", key, err)
		return false
	}
	return true
}

// SetJSON stores value under key for ttl. Failures are logged only.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("Cache encode %s failed: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("Cache set %s failed: %v", key, err)
	}
}

// Invalidate deletes every key matching the glob pattern.
func (c *Cache) Invalidate(ctx context.Context, pattern string) {
	if !c.Enabled() {
		return
	}
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("Cache scan %s failed: %v", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Cache invalidate %s failed: %v", pattern, err)
	}
}

// TTLFromEnv reads a TTL in seconds from the environment, falling back to
// def when unset or invalid.
func TTLFromEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		log.Printf("Invalid %s=%q, using default %s", key, raw, def)
		return def
	}
	return time.Duration(secs) * time.Second
}
