package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/shopfront/internal/pkg/logger"
	"github.com/your-org/shopfront/internal/testutil"
)

type item struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Cache
	calls := 0

	got, err := GetOrLoadJSON(context.Background(), c, "product:1", time.Minute, func(ctx context.Context) (*item, error) {
		calls++
		return &item{ID: 1, Name: "Widget"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 1, calls)
	assert.NoError(t, c.Delete(context.Background(), "product:1"))
}

func TestUnreachableRedisDegradesToLoader(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	c := New(rdb, "test:", logger.Discard())

	got, err := GetOrLoadJSON(context.Background(), c, "product:1", time.Minute, func(ctx context.Context) (*item, error) {
		return &item{ID: 1, Name: "Widget"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)

	loadErr := errors.New("db down")
	_, err = c.GetOrLoad(context.Background(), "product:2", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, loadErr
	})
	assert.ErrorIs(t, err, loadErr)
}

func newRedisCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	rdb, mr := testutil.NewRedis(t)
	return New(rdb, "test:", logger.Discard()), mr
}

func countingLoader(calls *int, name string) func(context.Context) (*item, error) {
	return func(ctx context.Context) (*item, error) {
		*calls++
		return &item{ID: 1, Name: name}, nil
	}
}

func TestHitSkipsLoader(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()
	calls := 0

	for i := 0; i < 3; i++ {
		got, err := GetOrLoadJSON(ctx, c, "product:1", time.Minute, countingLoader(&calls, "Widget"))
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
	}
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("test:product:1"))
}

func TestEntryIsWrittenWithTTL(t *testing.T) {
	c, mr := newRedisCache(t)
	calls := 0

	_, err := GetOrLoadJSON(context.Background(), c, "product:1", 5*time.Minute, countingLoader(&calls, "Widget"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, mr.TTL("test:product:1"))

	mr.FastForward(5 * time.Minute)
	assert.False(t, mr.Exists("test:product:1"))

	_, err = GetOrLoadJSON(context.Background(), c, "product:1", 5*time.Minute, countingLoader(&calls, "Widget"))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDeleteForcesReload(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()
	calls := 0

	_, err := GetOrLoadJSON(ctx, c, "product:1", time.Minute, countingLoader(&calls, "Widget"))
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "product:1", "product:2"))
	assert.False(t, mr.Exists("test:product:1"))

	got, err := GetOrLoadJSON(ctx, c, "product:1", time.Minute, countingLoader(&calls, "Gadget"))
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)
	assert.Equal(t, 2, calls)
}

func TestCorruptEntryFallsBackToLoader(t *testing.T) {
	c, mr := newRedisCache(t)
	require.NoError(t, mr.Set("test:product:1", "not json"))
	calls := 0

	got, err := GetOrLoadJSON(context.Background(), c, "product:1", time.Minute, countingLoader(&calls, "Widget"))
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, 1, calls)
	assert.False(t, mr.Exists("test:product:1"))
}

func TestLoadErrorIsNotCached(t *testing.T) {
	c, mr := newRedisCache(t)
	loadErr := errors.New("db down")

	_, err := c.GetOrLoad(context.Background(), "product:1", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, loadErr
	})
	assert.ErrorIs(t, err, loadErr)
	assert.False(t, mr.Exists("test:product:1"))
}

func TestLoadIgnoresCallerCancellation(t *testing.T) {
	c, mr := newRedisCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	b, err := c.GetOrLoad(ctx, "product:1", time.Minute, func(loadCtx context.Context) ([]byte, error) {
		cancel()
		if err := loadCtx.Err(); err != nil {
			return nil, err
		}
		return []byte(`{"id":1}`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(b))

	cached, err := mr.Get("test:product:1")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, cached)
}
