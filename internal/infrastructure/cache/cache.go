// internal/infrastructure/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Cache is a redis read-through cache. Concurrent misses for the same key
// share one load. A nil *Cache is valid and always calls the loader.
type Cache struct {
	rdb    *redis.Client
	prefix string
	sf     singleflight.Group
	log    logrus.FieldLogger
}

// New creates a cache whose keys are namespaced with prefix
func New(rdb *redis.Client, prefix string, log logrus.FieldLogger) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, log: log}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// GetOrLoad returns the cached bytes for key or loads, stores and returns
// them. Redis failures degrade to calling load directly.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil || c.rdb == nil {
		return load(ctx)
	}

	fullKey := c.key(key)
	b, err := c.rdb.Get(ctx, fullKey).Bytes()
	if err == nil {
		return b, nil
	}
	if err != redis.Nil {
		c.log.WithError(err).WithField("key", fullKey).Warn("cache read failed")
	}

	// the load is shared by every waiter on fullKey and outlives any one caller
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.sf.Do(fullKey, func() (interface{}, error) {
		b, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := c.rdb.Set(loadCtx, fullKey, b, ttl).Err(); err != nil {
			c.log.WithError(err).WithField("key", fullKey).Warn("cache write failed")
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Delete removes keys; errors are logged and returned
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		c.log.WithError(err).WithField("keys", full).Warn("cache delete failed")
		return err
	}
	return nil
}

// GetOrLoadJSON is GetOrLoad for JSON-encoded values
func GetOrLoadJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (*T, error)) (*T, error) {
	if c == nil || c.rdb == nil {
		return load(ctx)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		// a stale or foreign entry; reload from source
		_ = c.Delete(ctx, key)
		return load(ctx)
	}
	return &out, nil
}
