package rdx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect returns a Redis client for locks and short-lived caches.
func Connect(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// SetNX acquires a best-effort lock key with a TTL.
func SetNX(ctx context.Context, c *redis.Client, key string, ttl time.Duration) (bool, error) {
	return c.SetNX(ctx, key, "1", ttl).Result()
}

// Del releases a lock key.
func Del(ctx context.Context, c *redis.Client, key string) error {
	return c.Del(ctx, key).Err()
}

// GetCached fetches a cached JSON blob; returns "" on miss.
func GetCached(ctx context.Context, c *redis.Client, key string) string {
	val, err := c.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

// SetCached stores a JSON blob with a TTL; failures are ignored, the cache
// is an optimization only.
func SetCached(ctx context.Context, c *redis.Client, key, val string, ttl time.Duration) {
	_ = c.Set(ctx, key, val, ttl).Err()
}
